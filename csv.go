package filetext

import (
	"context"
	"encoding/csv"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// sepSampleLen bounds the prefix inspected for separator sniffing.
const sepSampleLen = 4096

// extractCSV parses delimited text and renders it as an aligned table. The
// separator is sniffed from a bounded sample: tab wins, then semicolon, else
// comma. Bytes that are not UTF-8 are retried as GB18030, then ISO-8859-1, in
// that fixed order.
func (e *Engine) extractCSV(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := decodeDelimited(data, e.cfg.EncodingHint)
	if err != nil {
		return "", wrapf(FailDecode, err, "decode %s", path)
	}
	text = stripBOM(text)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffSeparator(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return "", wrapf(FailMalformed, err, "parse delimited text %s", path)
	}
	if len(records) == 0 {
		return "", nil
	}
	return renderTable(records), nil
}

func decodeDelimited(data []byte, hint string) (string, error) {
	if hint != "" {
		if enc, ok := encodingByName(hint); ok && enc != nil {
			if out, err := tryDecode(data, enc); err == nil {
				return out, nil
			}
		}
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	if out, err := tryDecode(data, simplifiedchinese.GB18030); err == nil {
		return out, nil
	}
	out, err := tryDecode(data, charmap.ISO8859_1)
	if err != nil {
		return "", &DecodeError{Attempted: []string{"utf-8", "gb18030", "iso-8859-1"}, Last: err}
	}
	return out, nil
}

func sniffSeparator(text string) rune {
	sample := text
	if len(sample) > sepSampleLen {
		sample = sample[:sepSampleLen]
	}
	switch {
	case strings.ContainsRune(sample, '\t'):
		return '\t'
	case strings.ContainsRune(sample, ';'):
		return ';'
	default:
		return ','
	}
}
