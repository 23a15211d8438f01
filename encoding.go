package filetext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	// detectSampleLen bounds the bytes fed to statistical detection.
	detectSampleLen = 10000
	// detectMinConfidence gates the detector's vote (0-100 scale).
	detectMinConfidence = 70
)

// DecodeError means every decoding candidate was exhausted. This is the only
// way text extraction fails outright for a structurally valid file.
type DecodeError struct {
	Attempted []string
	Last      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable after trying %s: %v", strings.Join(e.Attempted, ", "), e.Last)
}

func (e *DecodeError) Unwrap() error { return e.Last }

type encCandidate struct {
	name string
	enc  encoding.Encoding // nil means validate as UTF-8
}

// decodeText converts raw bytes to a string by trying an ordered candidate
// list: the caller hint, a confidence-gated statistical detection, then a
// fixed fallback chain (UTF-8, GB18030, ISO-8859-1, Windows-1252). A candidate
// is accepted only when it decodes the whole input without introducing
// replacement characters.
//
// withDetection toggles the statistical step so a deployment without the
// charset capability still decodes the fallback chain.
func decodeText(data []byte, hint string, withDetection bool) (string, error) {
	var candidates []encCandidate
	if hint != "" {
		if enc, ok := encodingByName(hint); ok {
			candidates = append(candidates, encCandidate{name: hint, enc: enc})
		}
	}
	if withDetection && len(data) > 0 {
		sample := data
		if len(sample) > detectSampleLen {
			sample = sample[:detectSampleLen]
		}
		if res, err := chardet.NewTextDetector().DetectBest(sample); err == nil && res.Confidence >= detectMinConfidence {
			if enc, ok := encodingByName(res.Charset); ok {
				candidates = append(candidates, encCandidate{name: res.Charset, enc: enc})
			}
		}
	}
	candidates = append(candidates,
		encCandidate{name: "utf-8", enc: nil},
		encCandidate{name: "gb18030", enc: simplifiedchinese.GB18030},
		encCandidate{name: "iso-8859-1", enc: charmap.ISO8859_1},
		encCandidate{name: "windows-1252", enc: charmap.Windows1252},
	)

	var attempted []string
	var last error
	seen := make(map[string]bool)
	for _, c := range candidates {
		key := strings.ToLower(c.name)
		if seen[key] {
			continue
		}
		seen[key] = true
		attempted = append(attempted, c.name)

		text, err := tryDecode(data, c.enc)
		if err == nil {
			return text, nil
		}
		last = err
	}
	return "", &DecodeError{Attempted: attempted, Last: last}
}

func tryDecode(data []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	// x/text decoders substitute U+FFFD for bytes outside the encoding rather
	// than erroring; treat any substitution as a failed candidate.
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", fmt.Errorf("replacement characters in decoded output")
	}
	return string(out), nil
}

// encodingByName resolves a charset label (IANA or WHATWG flavored, as emitted
// by detectors and callers) to an x/text encoding. UTF-8 resolves to nil so
// the validating fast path is used.
func encodingByName(name string) (encoding.Encoding, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf-8", "utf8", "ascii", "us-ascii":
		return nil, true
	// Detector labels that the indexes do not know under these spellings.
	case "gb-18030", "gb18030", "gbk", "gb2312":
		return simplifiedchinese.GB18030, true
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, true
	}
	if enc, err := htmlindex.Get(n); err == nil && enc != nil {
		return enc, true
	}
	return nil, false
}

// stripBOM drops a leading UTF-8 byte-order mark left over after decoding.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
