package filetext

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDecodeTextUTF8(t *testing.T) {
	// Long enough that the detector recognizes valid multibyte UTF-8 outright.
	in := "héllo wörld, наш tëst input with enough multibyte content ✓✓✓ to be unambiguous"
	out, err := decodeText([]byte(in), "", true)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %q, want %q", out, in)
	}
}

func TestDecodeTextGB18030Fallback(t *testing.T) {
	// WHAT: GB-encoded Chinese decodes via the fixed fallback chain.
	// WHY: legacy East-Asian exports are the main non-UTF-8 input in practice.
	want := "季度报告：收入增长了百分之十五，成本保持稳定。"
	data, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(want))
	if err != nil {
		t.Fatal(err)
	}
	out, err := decodeText(data, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestDecodeTextHintFirst(t *testing.T) {
	want := "配置提示优先"
	data, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte(want))
	if err != nil {
		t.Fatal(err)
	}
	out, err := decodeText(data, "gbk", false)
	if err != nil {
		t.Fatal(err)
	}
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestDecodeTextLatin1Fallback(t *testing.T) {
	// 0xE9 is a GB18030 lead byte with an invalid trail here, so GB18030 is
	// rejected and ISO-8859-1 wins.
	out, err := decodeText([]byte("caf\xe9 au lait"), "", false)
	if err != nil {
		t.Fatal(err)
	}
	if out != "café au lait" {
		t.Errorf("got %q", out)
	}
}

func TestDecodeTextIdempotentOnASCII(t *testing.T) {
	in := "plain ascii, nothing to do"
	out, err := decodeText([]byte(in), "", true)
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("got %q, want %q", out, in)
	}
}

func TestEncodingByName(t *testing.T) {
	tests := []struct {
		name    string
		wantNil bool
		ok      bool
	}{
		{"utf-8", true, true},
		{"UTF-8", true, true},
		{"us-ascii", true, true},
		{"GB-18030", false, true}, // detector spelling
		{"gbk", false, true},
		{"windows-1252", false, true},
		{"ISO-8859-1", false, true},
		{"shift_jis", false, true},
		{"no-such-charset", false, false},
	}
	for _, tt := range tests {
		enc, ok := encodingByName(tt.name)
		if ok != tt.ok {
			t.Errorf("encodingByName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && (enc == nil) != tt.wantNil {
			t.Errorf("encodingByName(%q) nil = %v, want %v", tt.name, enc == nil, tt.wantNil)
		}
	}
}

func TestStripBOM(t *testing.T) {
	if got := stripBOM("\ufeffhello"); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := stripBOM("hello"); got != "hello" {
		t.Errorf("got %q", got)
	}
	// Only a leading BOM is stripped.
	if got := stripBOM("a\ufeffb"); got != "a\ufeffb" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	err := &DecodeError{Attempted: []string{"utf-8", "gb18030"}}
	if !strings.Contains(err.Error(), "utf-8, gb18030") {
		t.Errorf("got %q", err.Error())
	}
}
