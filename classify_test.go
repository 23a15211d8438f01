package filetext

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyAllExtensions(t *testing.T) {
	// WHAT: every registered extension classifies to its registered category.
	// WHY: the extension fallback is the contract for content without a
	// recognizable signature.
	eng := newTestEngine(t, Config{})
	dir := t.TempDir()
	body := []byte{0x00, 0x01, 0x02, 0x03, 0x04}

	for _, ext := range eng.Extensions() {
		path := filepath.Join(dir, "sample."+ext)
		if err := os.WriteFile(path, body, 0644); err != nil {
			t.Fatal(err)
		}
		cls, err := eng.Classify(path)
		if err != nil {
			t.Errorf("Classify(.%s): %v", ext, err)
			continue
		}
		want := defaultRegistry.LookupExtension(ext).Category
		if cls.Category != want {
			t.Errorf("Classify(.%s) = %s, want %s", ext, cls.Category, want)
		}
		if cls.Method != MethodExtension {
			t.Errorf("Classify(.%s) method = %s, want %s", ext, cls.Method, MethodExtension)
		}
	}
}

func TestClassifySignatureBeatsExtension(t *testing.T) {
	eng := newTestEngine(t, Config{})
	dir := t.TempDir()

	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("%PDF-1.4\nnot really text"), 0644); err != nil {
		t.Fatal(err)
	}
	cls, err := eng.Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if cls.Category != CategoryDocument || cls.Method != MethodSignature {
		t.Errorf("got %s/%s, want document/signature", cls.Category, cls.Method)
	}
}

func TestClassifyRTFSignature(t *testing.T) {
	eng := newTestEngine(t, Config{})
	path := filepath.Join(t.TempDir(), "export.bin")
	if err := os.WriteFile(path, []byte(`{\rtf1\ansi Hello}`), 0644); err != nil {
		t.Fatal(err)
	}
	cls, err := eng.Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if cls.Category != CategoryDocument || cls.Method != MethodSignature {
		t.Errorf("got %s/%s, want document/signature", cls.Category, cls.Method)
	}
}

func TestClassifyZIPSignatureFallsThrough(t *testing.T) {
	// The ZIP magic is shared by every office container, so it must never
	// classify on its own; the extension decides.
	eng := newTestEngine(t, Config{})
	dir := t.TempDir()

	path := filepath.Join(dir, "report.xlsx")
	if err := os.WriteFile(path, []byte("PK\x03\x04fakezipbody"), 0644); err != nil {
		t.Fatal(err)
	}
	cls, err := eng.Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if cls.Category != CategorySpreadsheet || cls.Method != MethodExtension {
		t.Errorf("got %s/%s, want spreadsheet/extension", cls.Category, cls.Method)
	}

	path = filepath.Join(dir, "archive.zip")
	if err := os.WriteFile(path, []byte("PK\x03\x04fakezipbody"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Classify(path); !isKind(err, FailUnsupported) {
		t.Errorf("Classify(.zip) = %v, want unsupported", err)
	}
}

func TestClassifyMIMEProbe(t *testing.T) {
	// Unknown extension, HTML content: the MIME probe carries it.
	eng := newTestEngine(t, Config{})
	path := filepath.Join(t.TempDir(), "page.bin")
	if err := os.WriteFile(path, []byte("<html><body><p>hi</p></body></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	cls, err := eng.Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if cls.Category != CategoryText || cls.Method != MethodMIME {
		t.Errorf("got %s/%s, want text/mime", cls.Category, cls.Method)
	}
}

func TestClassifyExtensionless(t *testing.T) {
	eng := newTestEngine(t, Config{})
	path := filepath.Join(t.TempDir(), "README")
	if err := os.WriteFile(path, []byte("just plain prose\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cls, err := eng.Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if cls.Category != CategoryText {
		t.Errorf("got %s, want text", cls.Category)
	}
}

func TestClassifyZeroByteUnknown(t *testing.T) {
	// Nothing to sniff, nothing to probe, extension unknown.
	eng := newTestEngine(t, Config{})
	path := filepath.Join(t.TempDir(), "empty.xyz")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Classify(path); !isKind(err, FailUnsupported) {
		t.Errorf("got %v, want unsupported", err)
	}
}

func TestClassifyRewrittenFileNotStale(t *testing.T) {
	// The cache keys on (path, mtime, size); replacing a file's content must
	// yield a fresh classification.
	eng := newTestEngine(t, Config{})
	path := filepath.Join(t.TempDir(), "note.txt")

	if err := os.WriteFile(path, []byte("plain text content"), 0644); err != nil {
		t.Fatal(err)
	}
	cls, err := eng.Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if cls.Category != CategoryText {
		t.Fatalf("first pass: got %s, want text", cls.Category)
	}

	if err := os.WriteFile(path, []byte("%PDF-1.7\nsomething much longer than before"), 0644); err != nil {
		t.Fatal(err)
	}
	cls, err = eng.Classify(path)
	if err != nil {
		t.Fatal(err)
	}
	if cls.Category != CategoryDocument || cls.Method != MethodSignature {
		t.Errorf("second pass: got %s/%s, want document/signature", cls.Category, cls.Method)
	}
}

func isKind(err error, kind FailureKind) bool {
	var ferr *Error
	return errors.As(err, &ferr) && ferr.Kind == kind
}
