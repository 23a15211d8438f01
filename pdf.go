package filetext

import (
	"bytes"
	"context"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// minPrintableRatio is the quality gate below which the primary pass is
// considered garbage and the fallback reader gets a turn.
const minPrintableRatio = 0.85

// extractPDF pulls text out of a PDF by streaming layout analysis of its
// content streams. The primary pass decodes operators from pdfcpu-optimized
// page streams; when it yields nothing usable (encrypted fonts, exotic
// encodings), a second pure-Go reader pass runs. An image-only PDF yielding
// empty text is a valid outcome, not an error; there is no OCR here.
func (e *Engine) extractPDF(ctx context.Context, path string) (string, error) {
	text, perr := pdfContentStreamText(ctx, path)
	if perr == nil && text != "" && printableRatio(text) >= minPrintableRatio {
		return text, nil
	}

	if fbText, ferr := pdfReaderText(ctx, path); ferr == nil {
		if fbText != "" || perr != nil {
			e.logger.Debug("pdf fallback reader used", "path", path)
			return fbText, nil
		}
	}

	if perr != nil {
		return "", wrapf(FailMalformed, perr, "parse pdf %s", path)
	}
	return text, nil
}

func pdfContentStreamText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return "", err
	}

	var pages []string
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if text := pdfPageText(pctx, pageNr); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

func pdfPageText(pctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return pdfStreamText(data)
}

// pdfStringRe matches PDF string literals in parentheses.
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// pdfStreamText walks content stream lines and decodes the text-showing
// operators (Tj, TJ, ') plus the positioning operators that imply whitespace
// (Td, TD, T*).
func pdfStreamText(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if s := decodePDFString(m[1]); s != "" {
					sb.WriteByte('\n')
					sb.WriteString(s)
				}
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}
	return flattenPDFText(sb.String())
}

// decodePDFString resolves PDF escape sequences, including octal escapes.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

func flattenPDFText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

// pdfReaderText is the pure-Go fallback pass: per-page plain text with a
// shared font cache.
func pdfReaderText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return "", err
	}
	r, err := lpdf.NewReader(f, fi.Size())
	if err != nil {
		return "", err
	}

	var pages []string
	fonts := make(map[string]*lpdf.Font)
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				fnt := p.Font(name)
				fonts[name] = &fnt
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return strings.Join(pages, "\n\n"), nil
}

// printableRatio is the share of printable runes in text; PUA runes, the
// replacement character and non-whitespace controls count against it.
func printableRatio(text string) float64 {
	if text == "" {
		return 1.0
	}
	total, printable := 0, 0
	for _, r := range text {
		total++
		if r >= 0xE000 && r <= 0xF8FF || r == 0xFFFD || (r < 0x20 && r != '\n' && r != '\r' && r != '\t') {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	return float64(printable) / float64(total)
}
