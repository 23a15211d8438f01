package filetext

import (
	"fmt"
	"sort"
	"strings"
)

// extractorID selects the format extractor for a descriptor. Dispatch is a
// closed switch in dispatch(), so a descriptor pointing at a missing extractor
// is a compile-visible dead end rather than a silent runtime miss.
type extractorID int

const (
	extractorNone extractorID = iota
	extractorText
	extractorHTML
	extractorPDF
	extractorWord
	extractorODT
	extractorSheet
	extractorODS
	extractorSlides
	extractorODP
	extractorCSV
)

// Descriptor maps a set of file extensions (and optionally MIME types) to a
// category, an extractor, the capabilities it needs, and an optional size
// ceiling that applies on top of the global one.
type Descriptor struct {
	Extensions   []string
	Category     Category
	MIMEs        []string
	Extractor    extractorID
	Capabilities []Capability
	MaxSize      int64
}

// Registry is the immutable format table. It is built once at process start;
// no mutation API exists.
type Registry struct {
	byExt  map[string]*Descriptor
	byMIME map[string]*Descriptor
}

func newRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{
		byExt:  make(map[string]*Descriptor),
		byMIME: make(map[string]*Descriptor),
	}
	for _, d := range descs {
		for _, ext := range d.Extensions {
			ext = strings.ToLower(strings.TrimPrefix(ext, "."))
			if prev, ok := r.byExt[ext]; ok {
				return nil, fmt.Errorf("extension %q claimed by both %s and %s", ext, prev.Category, d.Category)
			}
			r.byExt[ext] = d
		}
		for _, m := range d.MIMEs {
			r.byMIME[strings.ToLower(m)] = d
		}
	}
	return r, nil
}

// LookupExtension returns the descriptor for an extension, or nil. Matching is
// case-insensitive and tolerates a leading dot. The empty string is itself a
// registered pseudo-extension (extensionless files read as text).
func (r *Registry) LookupExtension(ext string) *Descriptor {
	return r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

const ooxmlVendorToken = "vnd.openxmlformats-officedocument"

// LookupMIME returns the descriptor for a MIME type, or nil. Parameters after
// ";" are ignored. Vendor-prefixed Open-XML types are resolved to the specific
// sub-category by the token segment naming the document model.
func (r *Registry) LookupMIME(mime string) *Descriptor {
	m := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if m == "" {
		return nil
	}
	if d, ok := r.byMIME[m]; ok {
		return d
	}
	if strings.Contains(m, ooxmlVendorToken) {
		switch {
		case strings.Contains(m, ".wordprocessingml"):
			return r.byExt["docx"]
		case strings.Contains(m, ".spreadsheetml"):
			return r.byExt["xlsx"]
		case strings.Contains(m, ".presentationml"):
			return r.byExt["pptx"]
		}
	}
	return nil
}

// Extensions returns every registered extension, sorted. The empty
// pseudo-extension is omitted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

const (
	defaultTextMaxSize = 10 * 1024 * 1024
	defaultPDFMaxSize  = 20 * 1024 * 1024
)

// plainTextExtensions is everything read verbatim through the encoding
// resolver: source code, markup, config, logs, and the extensionless
// pseudo-entry.
var plainTextExtensions = []string{
	// source code
	"py", "java", "cpp", "c", "h", "hpp", "cs", "js", "ts", "php", "rb",
	"go", "rs", "swift", "kt", "scala", "sh", "bash", "ps1", "bat", "cmd", "vbs",
	// markup and data
	"xml", "json", "yaml", "yml", "md", "markdown",
	// config
	"ini", "cfg", "conf", "properties", "env",
	// misc text
	"sql", "txt", "log", "toml", "lock", "gitignore", "url", "webloc",
	// no extension
	"",
}

func defaultDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			Extensions:   []string{"pdf"},
			Category:     CategoryDocument,
			MIMEs:        []string{"application/pdf"},
			Extractor:    extractorPDF,
			Capabilities: []Capability{CapPDF},
			MaxSize:      defaultPDFMaxSize,
		},
		{
			Extensions:   []string{"docx"},
			Category:     CategoryDocument,
			Extractor:    extractorWord,
			Capabilities: []Capability{CapOOXML},
		},
		{
			Extensions:   []string{"doc"},
			Category:     CategoryDocument,
			MIMEs:        []string{"application/msword"},
			Extractor:    extractorWord,
			Capabilities: []Capability{CapOOXML},
		},
		{
			Extensions:   []string{"rtf"},
			Category:     CategoryDocument,
			MIMEs:        []string{"application/rtf", "text/rtf"},
			Extractor:    extractorText,
			Capabilities: []Capability{CapCharset},
			MaxSize:      defaultTextMaxSize,
		},
		{
			Extensions:   []string{"odt"},
			Category:     CategoryDocument,
			MIMEs:        []string{"application/vnd.oasis.opendocument.text"},
			Extractor:    extractorODT,
			Capabilities: []Capability{CapODF},
		},
		{
			Extensions:   []string{"xlsx", "xls"},
			Category:     CategorySpreadsheet,
			MIMEs:        []string{"application/vnd.ms-excel"},
			Extractor:    extractorSheet,
			Capabilities: []Capability{CapOOXML},
		},
		{
			Extensions:   []string{"ods"},
			Category:     CategorySpreadsheet,
			MIMEs:        []string{"application/vnd.oasis.opendocument.spreadsheet"},
			Extractor:    extractorODS,
			Capabilities: []Capability{CapODF},
		},
		{
			Extensions:   []string{"csv", "tsv"},
			Category:     CategorySpreadsheet,
			Extractor:    extractorCSV,
			Capabilities: []Capability{CapCharset},
			MaxSize:      defaultTextMaxSize,
		},
		{
			Extensions:   []string{"pptx", "ppt"},
			Category:     CategoryPresentation,
			MIMEs:        []string{"application/vnd.ms-powerpoint"},
			Extractor:    extractorSlides,
			Capabilities: []Capability{CapOOXML},
		},
		{
			Extensions:   []string{"odp"},
			Category:     CategoryPresentation,
			MIMEs:        []string{"application/vnd.oasis.opendocument.presentation"},
			Extractor:    extractorODP,
			Capabilities: []Capability{CapODF},
		},
		{
			Extensions:   []string{"html", "htm"},
			Category:     CategoryText,
			MIMEs:        []string{"text/html"},
			Extractor:    extractorHTML,
			Capabilities: []Capability{CapHTML},
			MaxSize:      defaultTextMaxSize,
		},
		{
			Extensions:   plainTextExtensions,
			Category:     CategoryText,
			Extractor:    extractorText,
			Capabilities: []Capability{CapCharset},
			MaxSize:      defaultTextMaxSize,
		},
	}
}

var defaultRegistry = mustRegistry(newRegistry(defaultDescriptors()...))

func mustRegistry(r *Registry, err error) *Registry {
	if err != nil {
		panic(err)
	}
	return r
}
