package filetext

// Capability names an optional decoding facility. All capabilities ship
// compiled in, but a deployment may switch some off (Config.Disabled), and the
// engine then refuses the matching categories with a typed failure instead of
// a parse error deep inside an extractor.
type Capability string

const (
	// CapPDF covers PDF content-stream extraction.
	CapPDF Capability = "pdf"
	// CapOOXML covers the Open-XML ZIP containers (docx, xlsx, pptx).
	CapOOXML Capability = "ooxml"
	// CapODF covers the OpenDocument ZIP containers (odt, ods, odp).
	CapODF Capability = "odf"
	// CapHTML covers HTML-to-text conversion.
	CapHTML Capability = "html"
	// CapCharset covers statistical charset detection for text decoding.
	CapCharset Capability = "charset"
	// CapMIME covers the classifier's content-based MIME probe. Disabling it
	// skips the probe without error; classification falls through to the
	// extension lookup.
	CapMIME Capability = "mime"
)

func builtinCapabilities() map[Capability]bool {
	return map[Capability]bool{
		CapPDF:     true,
		CapOOXML:   true,
		CapODF:     true,
		CapHTML:    true,
		CapCharset: true,
		CapMIME:    true,
	}
}
