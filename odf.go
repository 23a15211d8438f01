package filetext

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// openODFContent opens the content.xml entry of an OpenDocument container.
// The caller closes both readers.
func openODFContent(path string) (io.ReadCloser, *zip.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.Name == "content.xml" {
			rc, err := f.Open()
			if err != nil {
				zr.Close()
				return nil, nil, fmt.Errorf("open content.xml: %w", err)
			}
			return rc, zr, nil
		}
	}
	zr.Close()
	return nil, nil, fmt.Errorf("content.xml not found in archive")
}

// extractODT streams an OpenDocument text file: headings and paragraphs each
// become a line.
func (e *Engine) extractODT(ctx context.Context, path string) (string, error) {
	rc, zr, err := openODFContent(path)
	if err != nil {
		return "", wrapf(FailMalformed, err, "parse odt %s", path)
	}
	defer zr.Close()
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var sb strings.Builder
	var line strings.Builder
	inBlock := false

	flush := func() {
		if text := strings.TrimSpace(line.String()); text != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(text)
		}
		line.Reset()
	}

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
			case "h", "p":
				inBlock = true
				line.Reset()
			case "tab":
				if inBlock {
					line.WriteByte('\t')
				}
			case "line-break":
				if inBlock {
					line.WriteByte(' ')
				}
			case "s":
				if inBlock {
					line.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inBlock {
				line.Write(t)
			}
		case xml.EndElement:
			if (t.Name.Local == "h" || t.Name.Local == "p") && inBlock {
				inBlock = false
				flush()
			}
		}
	}
	return sb.String(), nil
}
