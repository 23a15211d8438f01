package filetext

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// sniffLen bounds how much of a file the classifier reads. Classification
// never inspects more than this prefix.
const sniffLen = 1024

var (
	sigPDF = []byte("%PDF")
	sigZIP = []byte("PK\x03\x04")
	sigRTF = []byte("{\\rtf")
)

// classify resolves a file's category using three fallback strategies, first
// success wins: content-signature sniff, MIME probe, extension lookup.
//
// The ZIP signature is deliberately ambiguous (docx, xlsx, pptx and the ODF
// family all share it), so it falls through to the later strategies instead of
// guessing from archive internals.
func (e *Engine) classify(path string, mtime int64, size int64) (Classification, *Error) {
	if cls, ok := e.cache.get(path, mtime, size); ok {
		return cls, nil
	}

	sample := sniffPrefix(path)

	var cls Classification
	switch {
	case bytes.HasPrefix(sample, sigPDF):
		cls = Classification{Category: CategoryDocument, Method: MethodSignature, desc: e.reg.LookupExtension("pdf")}
	case bytes.HasPrefix(sample, sigRTF):
		cls = Classification{Category: CategoryDocument, Method: MethodSignature, desc: e.reg.LookupExtension("rtf")}
	}

	var sniffedMIME string
	if cls.desc == nil && e.caps[CapMIME] && len(sample) > 0 && !bytes.HasPrefix(sample, sigZIP) {
		sniffedMIME = http.DetectContentType(sample)
		if d := e.reg.LookupMIME(sniffedMIME); d != nil {
			cls = Classification{Category: d.Category, Method: MethodMIME, desc: d}
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if cls.desc == nil {
		if d := e.reg.LookupExtension(ext); d != nil {
			cls = Classification{Category: d.Category, Method: MethodExtension, desc: d}
		}
	}

	if cls.desc == nil {
		return Classification{Category: CategoryUnknown},
			failf(FailUnsupported, "no category for extension %q (sniffed mime %q)", ext, sniffedMIME)
	}

	e.cache.put(path, mtime, size, cls)
	return cls, nil
}

// sniffPrefix reads at most sniffLen bytes; any read problem just yields an
// empty sample and lets the extension fallback decide.
func sniffPrefix(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil
	}
	return buf[:n]
}
