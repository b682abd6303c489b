package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Format is a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// document is the on-disk catalog shape: {"plants": [...]}.
type document struct {
	Plants []Plant `json:"plants" yaml:"plants"`
}

// FormatFor guesses the encoding from a file name and, failing that, a
// Content-Type. It returns "" when neither is recognized.
func FormatFor(name, contentType string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xlsx":
		return FormatXLSX
	case ".html", ".htm":
		return FormatHTML
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "yaml"):
		return FormatYAML
	case strings.Contains(ct, "spreadsheetml"):
		return FormatXLSX
	case strings.Contains(ct, "html"):
		return FormatHTML
	}
	return ""
}

// Decode reads a catalog in the given format. The records are returned as
// found; callers normalize them.
func Decode(r io.Reader, format Format) ([]Plant, error) {
	switch format {
	case FormatJSON, "":
		return decodeJSON(r)
	case FormatYAML:
		return decodeYAML(r)
	case FormatXLSX:
		return decodeXLSX(r)
	case FormatHTML:
		return decodeHTML(r)
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedSource, format)
	}
}

func decodeJSON(r io.Reader) ([]Plant, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	data = bytes.TrimSpace(data)
	// A bare array is accepted as well as the {"plants": [...]} document.
	if len(data) > 0 && data[0] == '[' {
		var plants []Plant
		if err := json.Unmarshal(data, &plants); err != nil {
			return nil, fmt.Errorf("parse JSON catalog: %w", err)
		}
		return plants, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse JSON catalog: %w", err)
	}
	return doc.Plants, nil
}

func decodeYAML(r io.Reader) ([]Plant, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse YAML catalog: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var plants []Plant
		if err := node.Content[0].Decode(&plants); err != nil {
			return nil, fmt.Errorf("parse YAML catalog: %w", err)
		}
		return plants, nil
	}
	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse YAML catalog: %w", err)
	}
	return doc.Plants, nil
}

func decodeXLSX(r io.Reader) ([]Plant, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}

func decodeHTML(r io.Reader) ([]Plant, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML catalog: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("HTML catalog has no table")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return fromRows(rows)
}

var listSplitter = regexp.MustCompile(`[,;\n]+`)

// splitList turns "cold, cough; fever" into its trimmed, non-empty parts.
func splitList(s string) []string {
	out := []string{}
	for _, part := range listSplitter.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// headerKey folds "Latin Name", "latin_name" and "latinName" together.
func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// fromRows builds records from a header row followed by data rows, the
// shape shared by spreadsheets and HTML tables.
func fromRows(rows [][]string) ([]Plant, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("table has no rows")
	}

	headers := make(map[string]int)
	for i, h := range rows[0] {
		headers[headerKey(h)] = i
	}
	if _, ok := headers["name"]; !ok {
		return nil, fmt.Errorf("missing required column: name")
	}

	cell := func(row []string, key string) string {
		i, ok := headers[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	plants := make([]Plant, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, "name")
		if name == "" {
			continue
		}
		plants = append(plants, Plant{
			Name:        name,
			LatinName:   cell(row, "latinname"),
			Diseases:    splitList(cell(row, "diseases")),
			Systems:     splitList(cell(row, "systems")),
			PartsUsed:   cell(row, "partsused"),
			Preparation: cell(row, "preparation"),
			Dosage:      cell(row, "dosage"),
			Safety:      cell(row, "safety"),
			Image:       cell(row, "image"),
		})
	}
	return plants, nil
}
