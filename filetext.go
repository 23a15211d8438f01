package filetext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Engine is the extraction orchestrator. It is stateless with respect to any
// single call and safe for concurrent use; the only shared state is the
// immutable format registry and the mutex-guarded classification cache.
type Engine struct {
	cfg    Config
	reg    *Registry
	caps   map[Capability]bool
	cache  *classCache
	logger *slog.Logger
	md     *converter.Converter
}

// New creates an Engine with the given configuration and sweeps conversion
// artifacts a previously interrupted process may have left behind.
func New(cfg Config) *Engine {
	cfg.defaults()

	caps := builtinCapabilities()
	for _, c := range cfg.Disabled {
		caps[c] = false
	}

	e := &Engine{
		cfg:    cfg,
		reg:    defaultRegistry,
		caps:   caps,
		cache:  newClassCache(cfg.CacheSize),
		logger: cfg.Logger,
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	sweepOrphanedArtifacts(cfg.TempDir, e.logger)
	return e
}

// Extract resolves, classifies and extracts one file, applying the configured
// output limit. It always returns an envelope; failures are typed in the
// outcome, never raw.
func (e *Engine) Extract(ctx context.Context, path string) *Envelope {
	return e.ExtractLimit(ctx, path, e.cfg.MaxOutputChars)
}

// ExtractLimit is Extract with a per-call output character limit. A limit of 0
// means unlimited.
func (e *Engine) ExtractLimit(ctx context.Context, path string, maxChars int) *Envelope {
	env := &Envelope{
		FileName:    filepath.Base(path),
		Category:    CategoryUnknown,
		ExtractedAt: time.Now().UTC(),
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return e.failure(env, wrapf(FailInternal, err, "resolve path %q", path))
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return e.failure(env, failf(FailNotFound, "file does not exist: %s", abs))
		}
		return e.failure(env, wrapf(FailInternal, err, "stat %s", abs))
	}
	if info.IsDir() || !info.Mode().IsRegular() {
		return e.failure(env, failf(FailNotAFile, "not a regular file: %s", abs))
	}
	env.SizeBytes = info.Size()

	// Global ceiling comes before classification: an oversized file is
	// TooLarge even when its category would be Unknown.
	if info.Size() > e.cfg.MaxFileSize {
		return e.failure(env, failf(FailTooLarge, "%d bytes exceeds global limit %d", info.Size(), e.cfg.MaxFileSize))
	}

	cls, cerr := e.classify(abs, info.ModTime().UnixNano(), info.Size())
	if cerr != nil {
		return e.failure(env, cerr)
	}
	env.Category = cls.Category

	if ceiling := e.categoryCeiling(cls.desc); ceiling > 0 && info.Size() > ceiling {
		return e.failure(env, failf(FailTooLarge, "%d bytes exceeds %s limit %d", info.Size(), cls.Category, ceiling))
	}

	for _, c := range cls.desc.Capabilities {
		if !e.caps[c] {
			return e.failure(env, failf(FailMissingCapability, "capability %q unavailable for category %s", c, cls.Category))
		}
	}

	e.logger.Debug("extracting file", "path", abs, "category", cls.Category, "method", cls.Method)

	text, xerr := e.dispatch(ctx, cls, abs)
	if xerr != nil {
		return e.failure(env, coerce(xerr))
	}

	byteLen := len(text)
	text, truncated := truncateText(text, maxChars)
	env.Outcome = Outcome{
		Success:    true,
		Text:       text,
		ByteLength: byteLen,
		Truncated:  truncated,
	}
	return env
}

// Classify resolves a file's category without extracting it.
func (e *Engine) Classify(path string) (Classification, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return Classification{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Classification{}, err
	}
	cls, cerr := e.classify(abs, info.ModTime().UnixNano(), info.Size())
	if cerr != nil {
		return Classification{}, cerr
	}
	return cls, nil
}

// Extensions returns every file extension the engine accepts.
func (e *Engine) Extensions() []string { return e.reg.Extensions() }

// dispatch is the closed category-to-extractor mapping. Panics inside an
// extractor are recovered here and surface as Internal failures; adversarial
// container files must never take the host down.
func (e *Engine) dispatch(ctx context.Context, cls Classification, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failf(FailInternal, "extractor panic on %s: %v", path, r)
		}
	}()

	switch cls.desc.Extractor {
	case extractorText:
		return e.extractPlainText(ctx, path)
	case extractorHTML:
		return e.extractHTML(ctx, path)
	case extractorPDF:
		return e.extractPDF(ctx, path)
	case extractorWord:
		return e.extractWord(ctx, path)
	case extractorODT:
		return e.extractODT(ctx, path)
	case extractorSheet:
		return e.extractSheet(ctx, path)
	case extractorODS:
		return e.extractODS(ctx, path)
	case extractorSlides:
		return e.extractSlides(ctx, path)
	case extractorODP:
		return e.extractODP(ctx, path)
	case extractorCSV:
		return e.extractCSV(ctx, path)
	default:
		return "", failf(FailInternal, "no extractor for category %s", cls.Category)
	}
}

func (e *Engine) categoryCeiling(d *Descriptor) int64 {
	if v, ok := e.cfg.CategoryMaxSize[d.Category]; ok {
		return v
	}
	return d.MaxSize
}

func (e *Engine) failure(env *Envelope, ferr *Error) *Envelope {
	env.Outcome = Outcome{
		Success:      false,
		ErrorKind:    string(ferr.Kind),
		ErrorMessage: ferr.Message,
	}
	e.logger.Debug("extraction failed", "file", env.FileName, "kind", ferr.Kind, "error", ferr)
	return env
}

// coerce maps any extractor error onto the closed taxonomy. Typed errors pass
// through; anything unanticipated becomes Internal with its diagnostic text
// preserved.
func coerce(err error) *Error {
	var ferr *Error
	if errors.As(err, &ferr) {
		return ferr
	}
	return wrapf(FailInternal, err, "unexpected extraction failure")
}

// truncateText cuts text to max characters and appends a marker stating the
// original length.
func truncateText(text string, max int) (string, bool) {
	if max <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	return string(runes[:max]) + fmt.Sprintf("\n[truncated; original length %d characters]", len(runes)), true
}
