package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/composable-commerce/storefront/internal/fields"
)

// Output formats accepted by --output
const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", formatTable:
		return formatTable, nil
	case formatYAML, "yml":
		return formatYAML, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, yaml or json)", s)
	}
}

// document is one inspected metaobject or entry
type document struct {
	Title  string       `json:"title" yaml:"title"`
	ID     string       `json:"id,omitempty" yaml:"id,omitempty"`
	Fields []fields.Row `json:"fields" yaml:"fields"`
}

func newDocument(title, id string, fs fields.FieldSet) document {
	rows := fields.Flatten(fs)
	if rows == nil {
		rows = []fields.Row{}
	}
	return document{Title: title, ID: id, Fields: rows}
}

func writeDocuments(w io.Writer, format string, docs []document) error {
	switch format {
	case formatYAML:
		return writeYAML(w, docs)
	case formatJSON:
		return writeJSON(w, docs)
	}

	for i, doc := range docs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if doc.ID != "" {
			fmt.Fprintf(w, "%s (%s)\n", doc.Title, doc.ID)
		} else {
			fmt.Fprintln(w, doc.Title)
		}
		rows := make([][]string, 0, len(doc.Fields))
		for _, r := range doc.Fields {
			rows = append(rows, []string{r.Path, r.Kind, r.Value})
		}
		writeTable(w, []string{"Path", "Kind", "Value"}, rows)
	}
	return nil
}

func writeTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
