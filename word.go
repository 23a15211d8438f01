package filetext

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
)

// extractWord handles the Word family. Modern .docx is read directly from its
// Open-XML container. Legacy .doc goes through the conversion helper: the
// bytes are re-materialized as a scoped temporary .docx artifact and parsed as
// a container. That reinterpretation only works when the legacy file is a
// disguised modern container; true OLE binary .doc files fail with a
// Conversion error, which callers must treat as terminal for that file.
func (e *Engine) extractWord(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".doc") {
		artifact, cleanup, err := e.materializeArtifact(path, ".docx")
		if err != nil {
			return "", wrapf(FailConversion, err, "materialize legacy word artifact")
		}
		defer cleanup()

		text, err := docxText(ctx, artifact)
		if err != nil {
			return "", wrapf(FailConversion, err, "legacy word file is not an open-xml container")
		}
		return text, nil
	}

	text, err := docxText(ctx, path)
	if err != nil {
		return "", wrapf(FailMalformed, err, "parse docx %s", path)
	}
	return text, nil
}

// docxText streams word/document.xml and emits one line per paragraph.
func docxText(ctx context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var sb strings.Builder
	var para strings.Builder
	inParagraph := false
	inRunText := false

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
			case "p":
				inParagraph = true
				para.Reset()
			case "t":
				inRunText = inParagraph
			case "tab":
				if inParagraph {
					para.WriteByte('\t')
				}
			case "br":
				if inParagraph {
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
				if inParagraph {
					inParagraph = false
					if text := strings.TrimRight(para.String(), " \t"); strings.TrimSpace(text) != "" {
						if sb.Len() > 0 {
							sb.WriteByte('\n')
						}
						sb.WriteString(text)
					}
				}
			}
		}
	}
	return sb.String(), nil
}
