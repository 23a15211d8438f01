package filetext

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slideEntryRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractSlides renders a pptx deck: slides in order, each text-bearing shape
// concatenated, empty shapes skipped. Slides without any text are omitted
// entirely. A corrupt slide degrades to an inline placeholder.
func (e *Engine) extractSlides(ctx context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", wrapf(FailMalformed, err, "open presentation container %s", path)
	}
	defer zr.Close()

	type slideFile struct {
		nr int
		f  *zip.File
	}
	var slides []slideFile
	for _, f := range zr.File {
		m := slideEntryRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		nr, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{nr: nr, f: f})
	}
	if len(slides) == 0 {
		return "", failf(FailMalformed, "no slides found in %s", path)
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].nr < slides[j].nr })

	var blocks []string
	for _, s := range slides {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, serr := slideText(s.f)
		if serr != nil {
			e.logger.Warn("slide unreadable", "path", path, "slide", s.nr, "error", serr)
			blocks = append(blocks, fmt.Sprintf("--- Slide %d ---\n(slide unreadable: %v)", s.nr, serr))
			continue
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("--- Slide %d ---\n%s", s.nr, text))
	}
	return strings.Join(blocks, "\n\n"), nil
}

// slideText concatenates the text of every text-bearing shape on one slide.
// A shape's text body groups paragraphs; runs inside a paragraph concatenate.
func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var shapes []string
	var shape strings.Builder
	var para strings.Builder
	inBody, inPara, inRunText := false, false, false

	flushPara := func() {
		if text := strings.TrimSpace(para.String()); text != "" {
			if shape.Len() > 0 {
				shape.WriteByte('\n')
			}
			shape.WriteString(text)
		}
		para.Reset()
	}

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "txBody":
				inBody = true
				shape.Reset()
			case "p":
				if inBody {
					inPara = true
					para.Reset()
				}
			case "t":
				inRunText = inPara
			case "br":
				if inPara {
					para.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inRunText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRunText = false
			case "p":
				if inPara {
					inPara = false
					flushPara()
				}
			case "txBody":
				if inBody {
					inBody = false
					if text := shape.String(); strings.TrimSpace(text) != "" {
						shapes = append(shapes, text)
					}
				}
			}
		}
	}
	return strings.Join(shapes, "\n"), nil
}

// extractODP renders an OpenDocument presentation: one block per draw page
// with text, labeled by the page's 1-based position in the deck.
func (e *Engine) extractODP(ctx context.Context, path string) (string, error) {
	rc, zr, err := openODFContent(path)
	if err != nil {
		return "", wrapf(FailMalformed, err, "parse odp %s", path)
	}
	defer zr.Close()
	defer rc.Close()

	var blocks []string
	var page strings.Builder
	var line strings.Builder
	pageNr := 0
	inPage, inPara := false, false

	dec := xml.NewDecoder(rc)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "page":
				inPage = true
				pageNr++
				page.Reset()
			case "p":
				if inPage {
					inPara = true
					line.Reset()
				}
			}
		case xml.CharData:
			if inPara {
				line.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					inPara = false
					if text := strings.TrimSpace(line.String()); text != "" {
						if page.Len() > 0 {
							page.WriteByte('\n')
						}
						page.WriteString(text)
					}
				}
			case "page":
				if inPage {
					inPage = false
					if text := page.String(); text != "" {
						blocks = append(blocks, fmt.Sprintf("--- Slide %d ---\n%s", pageNr, text))
					}
				}
			}
		}
	}
	if pageNr == 0 {
		return "", failf(FailMalformed, "no pages found in %s", path)
	}
	return strings.Join(blocks, "\n\n"), nil
}
