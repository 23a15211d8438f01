package filetext

import (
	"context"
	"os"
)

// extractPlainText reads a whole text file and runs it through the encoding
// resolver. Line structure is preserved as-is: source code and logs lose their
// meaning when whitespace is flattened.
func (e *Engine) extractPlainText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := decodeText(data, e.cfg.EncodingHint, e.caps[CapCharset])
	if err != nil {
		return "", wrapf(FailDecode, err, "decode %s", path)
	}
	return stripBOM(text), nil
}
