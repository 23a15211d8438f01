package filetext

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// extractSheet renders an xlsx workbook as labeled, aligned text tables, one
// per sheet in workbook order. A corrupt sheet degrades to an inline
// placeholder line instead of failing the whole workbook.
func (e *Engine) extractSheet(ctx context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", wrapf(FailMalformed, err, "open spreadsheet container %s", path)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	sheets, err := workbookSheets(entries)
	if err != nil {
		return "", wrapf(FailMalformed, err, "read workbook %s", path)
	}
	shared, _ := sharedStrings(entries)

	var blocks []string
	for _, sh := range sheets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		block := "=== " + sh.name + " ===\n"
		rows, rerr := worksheetRows(ctx, entries, sh.target, shared)
		switch {
		case rerr != nil:
			e.logger.Warn("sheet unreadable", "path", path, "sheet", sh.name, "error", rerr)
			block += fmt.Sprintf("(sheet unreadable: %v)", rerr)
		case len(rows) == 0:
			block += "(empty sheet)"
		default:
			block += renderTable(rows)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

type sheetRef struct {
	name   string
	target string
}

// workbookSheets resolves sheet order and names from xl/workbook.xml and maps
// each sheet to its worksheet entry via the workbook relationships.
func workbookSheets(entries map[string]*zip.File) ([]sheetRef, error) {
	wb, ok := entries["xl/workbook.xml"]
	if !ok {
		return nil, fmt.Errorf("xl/workbook.xml not found in archive")
	}
	rels := workbookRels(entries)

	rc, err := wb.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var sheets []sheetRef
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var name, rid string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				name = a.Value
			case "id":
				rid = a.Value
			}
		}
		target := rels[rid]
		if target == "" {
			continue
		}
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = "xl/" + target
		}
		if name == "" {
			name = fmt.Sprintf("Sheet%d", len(sheets)+1)
		}
		sheets = append(sheets, sheetRef{name: name, target: target})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook declares no sheets")
	}
	return sheets, nil
}

func workbookRels(entries map[string]*zip.File) map[string]string {
	rels := make(map[string]string)
	f, ok := entries["xl/_rels/workbook.xml.rels"]
	if !ok {
		return rels
	}
	rc, err := f.Open()
	if err != nil {
		return rels
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" {
			rels[id] = target
		}
	}
	return rels
}

// sharedStrings loads xl/sharedStrings.xml; rich-text runs inside one string
// item are concatenated.
func sharedStrings(entries map[string]*zip.File) ([]string, error) {
	f, ok := entries["xl/sharedStrings.xml"]
	if !ok {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var strs []string
	var cur strings.Builder
	inSI, inT := false, false
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inSI = true
				cur.Reset()
			case "t":
				inT = inSI
			}
		case xml.CharData:
			if inT {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				if inSI {
					inSI = false
					strs = append(strs, cur.String())
				}
			}
		}
	}
	return strs, nil
}

func worksheetRows(ctx context.Context, entries map[string]*zip.File, target string, shared []string) ([][]string, error) {
	f, ok := entries[target]
	if !ok {
		return nil, fmt.Errorf("worksheet %s not found in archive", target)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseWorksheet(ctx, rc, shared)
}

func parseWorksheet(ctx context.Context, r io.Reader, shared []string) ([][]string, error) {
	var rows [][]string
	var row []string
	var val strings.Builder
	var cellType, cellRef string
	inRow, inCell, inVal := false, false, false

	dec := xml.NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				inRow = true
				row = nil
			case "c":
				if !inRow {
					continue
				}
				inCell = true
				cellType, cellRef = "", ""
				val.Reset()
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "t":
						cellType = a.Value
					case "r":
						cellRef = a.Value
					}
				}
			case "v", "t":
				inVal = inCell
			}
		case xml.CharData:
			if inVal {
				val.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				inVal = false
			case "c":
				if inCell {
					inCell = false
					row = placeCell(row, cellRef, cellValue(cellType, val.String(), shared))
				}
			case "row":
				if inRow {
					inRow = false
					rows = append(rows, trimTrailingEmpty(row))
				}
			}
		}
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func cellValue(cellType, raw string, shared []string) string {
	switch cellType {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "b":
		if strings.TrimSpace(raw) == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return raw
	}
}

// placeCell appends a value at the column position encoded in an A1-style
// reference, padding skipped columns. Without a reference it appends in order.
func placeCell(row []string, ref, value string) []string {
	col := -1
	if ref != "" {
		col = 0
		for i := 0; i < len(ref); i++ {
			ch := ref[i]
			if ch < 'A' || ch > 'Z' {
				break
			}
			col = col*26 + int(ch-'A'+1)
		}
		col--
	}
	if col < 0 {
		return append(row, value)
	}
	for len(row) < col {
		row = append(row, "")
	}
	if len(row) == col {
		return append(row, value)
	}
	row[col] = value
	return row
}

func trimTrailingEmpty(row []string) []string {
	for len(row) > 0 && strings.TrimSpace(row[len(row)-1]) == "" {
		row = row[:len(row)-1]
	}
	return row
}

// extractODS renders an OpenDocument spreadsheet, one labeled table per
// table:table element.
func (e *Engine) extractODS(ctx context.Context, path string) (string, error) {
	rc, zr, err := openODFContent(path)
	if err != nil {
		return "", wrapf(FailMalformed, err, "parse ods %s", path)
	}
	defer zr.Close()
	defer rc.Close()

	var blocks []string
	var rows [][]string
	var row []string
	var cell strings.Builder
	tableName := ""
	inTable, inCell := false, false
	cellRepeat := 1

	flushTable := func() {
		for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
			rows = rows[:len(rows)-1]
		}
		block := "=== " + tableName + " ===\n"
		if len(rows) == 0 {
			block += "(empty sheet)"
		} else {
			block += renderTable(rows)
		}
		blocks = append(blocks, block)
		rows = nil
	}

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
			case "table":
				inTable = true
				tableName = ""
				rows = nil
				for _, a := range t.Attr {
					if a.Name.Local == "name" {
						tableName = a.Value
					}
				}
				if tableName == "" {
					tableName = fmt.Sprintf("Sheet%d", len(blocks)+1)
				}
			case "table-row":
				row = nil
			case "table-cell":
				if !inTable {
					continue
				}
				inCell = true
				cell.Reset()
				cellRepeat = 1
				for _, a := range t.Attr {
					if a.Name.Local == "number-columns-repeated" {
						if n, err := strconv.Atoi(a.Value); err == nil && n > 1 {
							cellRepeat = n
						}
					}
				}
			}
		case xml.CharData:
			if inCell {
				cell.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "table-cell":
				if inCell {
					inCell = false
					text := strings.TrimSpace(cell.String())
					// Trailing repeated empties in ODS can span thousands of
					// columns; only expand repeats that carry content.
					n := cellRepeat
					if text == "" {
						n = 1
					} else if n > 256 {
						n = 256
					}
					for i := 0; i < n; i++ {
						row = append(row, text)
					}
				}
			case "table-row":
				if inTable {
					rows = append(rows, trimTrailingEmpty(row))
				}
			case "table":
				if inTable {
					inTable = false
					flushTable()
				}
			}
		}
	}
	if len(blocks) == 0 {
		return "", failf(FailMalformed, "no tables found in %s", path)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// renderTable aligns rows into padded columns, two spaces apart.
func renderTable(rows [][]string) string {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	widths := make([]int, cols)
	for _, r := range rows {
		for i, c := range r {
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	var sb strings.Builder
	for ri, r := range rows {
		if ri > 0 {
			sb.WriteByte('\n')
		}
		var line strings.Builder
		for i, c := range r {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(c)
			if i < len(r)-1 {
				for n := utf8.RuneCountInString(c); n < widths[i]; n++ {
					line.WriteByte(' ')
				}
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
	}
	return sb.String()
}
