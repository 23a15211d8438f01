// Package filetext extracts plain text from heterogeneous user-supplied files
// (documents, spreadsheets, presentations, source code, markup, logs) so the
// text can be injected into a downstream consumer such as an LLM prompt.
//
// The engine resolves what a file actually is (content signature first, MIME
// probe second, extension last), routes it to the matching format extractor,
// and wraps the result in a uniform envelope:
//
//	eng := filetext.New(filetext.Config{})
//	env := eng.Extract(ctx, "/path/to/report.xlsx")
//	if env.Outcome.Success {
//		fmt.Println(env.Outcome.Text)
//	}
//
// Extraction never returns layout or images: PDFs are reduced to their text
// streams, spreadsheets to aligned cell grids, presentations to slide text.
package filetext

import "time"

// Category is the logical file-type group driving extractor selection.
type Category string

const (
	CategoryDocument     Category = "document"
	CategorySpreadsheet  Category = "spreadsheet"
	CategoryPresentation Category = "presentation"
	CategoryText         Category = "text"
	CategoryUnknown      Category = "unknown"
)

// DetectMethod records which classifier step produced a classification.
type DetectMethod string

const (
	MethodSignature DetectMethod = "signature"
	MethodMIME      DetectMethod = "mime"
	MethodExtension DetectMethod = "extension"
)

// Classification is the resolved category of a file plus the method that
// produced it. The matched descriptor rides along so dispatch stays precise
// even when the category alone is ambiguous (e.g. csv vs txt).
type Classification struct {
	Category Category     `json:"category"`
	Method   DetectMethod `json:"method"`

	desc *Descriptor
}

// Outcome is the tagged result of one extraction call: either Success with
// text, or a failure with a kind from the closed taxonomy. It is produced
// exactly once per call and never partially populated.
type Outcome struct {
	Success      bool   `json:"success"`
	Text         string `json:"text,omitempty"`
	ByteLength   int    `json:"byte_length,omitempty"`
	Truncated    bool   `json:"truncated,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Envelope wraps an Outcome with provenance. The engine holds no reference to
// it after returning; the caller owns it outright.
type Envelope struct {
	FileName    string    `json:"file_name"`
	Category    Category  `json:"category"`
	SizeBytes   int64     `json:"size_bytes"`
	ExtractedAt time.Time `json:"extracted_at"`
	Outcome     Outcome   `json:"outcome"`
}
