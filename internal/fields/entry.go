package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeEntry converts a CMS entry document into a FieldSet. Object key order
// is kept, which a map based decode would lose.
func DecodeEntry(data []byte) (FieldSet, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("entry must be a JSON object")
	}

	fs, err := decodeObjectBody(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	return fs, nil
}

// decodeObjectBody reads key/value pairs up to and including the closing brace
func decodeObjectBody(dec *json.Decoder) (FieldSet, error) {
	fs := FieldSet{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		f, err := decodeEntryValue(dec, key)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fs, nil
}

func decodeEntryValue(dec *json.Decoder, key string) (Field, error) {
	tok, err := dec.Token()
	if err != nil {
		return Field{}, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			children, err := decodeObjectBody(dec)
			if err != nil {
				return Field{}, err
			}
			return objectField(key, children), nil
		case '[':
			return decodeArray(dec, key)
		}
		return Field{}, fmt.Errorf("unexpected delimiter %v", v)
	case string:
		return Field{Key: key, Type: "text", Kind: KindText, Value: &v}, nil
	case bool:
		return Bool(key, v), nil
	case json.Number:
		s := v.String()
		return Field{Key: key, Type: "number", Kind: KindText, Value: &s}, nil
	case nil:
		return Field{Key: key, Type: "text", Kind: KindText}, nil
	}
	return Field{}, fmt.Errorf("unexpected token %v", tok)
}

func decodeArray(dec *json.Decoder, key string) (Field, error) {
	var (
		nodes   []Node
		scalars []any
	)
	for dec.More() {
		item, err := decodeEntryValue(dec, "")
		if err != nil {
			return Field{}, err
		}
		if item.Reference != nil {
			nodes = append(nodes, *item.Reference)
			continue
		}
		if item.Value != nil {
			scalars = append(scalars, scalarOf(item))
		} else {
			scalars = append(scalars, nil)
		}
	}
	if _, err := dec.Token(); err != nil {
		return Field{}, err
	}

	if len(scalars) == 0 {
		if nodes == nil {
			nodes = []Node{}
		}
		return Field{Key: key, Type: "list.reference", Kind: KindMultiReference, References: nodes}, nil
	}

	raw, err := json.Marshal(scalars)
	if err != nil {
		return Field{}, err
	}
	s := string(raw)
	return Field{Key: key, Type: "json", Kind: KindText, Value: &s}, nil
}

func scalarOf(f Field) any {
	switch f.Type {
	case "boolean":
		return IsTrue(*f.Value)
	case "number":
		return json.Number(*f.Value)
	}
	return *f.Value
}

// objectField turns a nested object into a reference. Asset objects carry a
// url plus file metadata and become media.
func objectField(key string, children FieldSet) Field {
	node := Node{ID: children.String("uid"), Fields: children}

	url, hasURL := children.Leaf("url")
	_, hasFilename := children.Leaf("filename")
	_, hasContentType := children.Leaf("content_type")
	if hasURL && (hasFilename || hasContentType) {
		node.Image = &MediaReference{URL: url}
		return Field{Key: key, Type: "file", Kind: KindMedia, Reference: &node}
	}
	return Field{Key: key, Type: "reference", Kind: KindSingleReference, Reference: &node}
}

// Row is one leaf of a flattened field tree
type Row struct {
	Path  string `json:"path" yaml:"path"`
	Kind  string `json:"kind" yaml:"kind"`
	Value string `json:"value" yaml:"value"`
}

// Flatten walks fs depth first and returns one row per leaf, with dotted
// paths and [i] for list positions.
func Flatten(fs FieldSet) []Row {
	var rows []Row
	flatten(fs, "", &rows)
	return rows
}

func flatten(fs FieldSet, prefix string, rows *[]Row) {
	for _, f := range fs {
		path := f.Key
		if prefix != "" {
			path = prefix + "." + f.Key
		}
		switch f.Kind {
		case KindSingleReference:
			node, ok := ResolveReference(f)
			if !ok {
				*rows = append(*rows, Row{Path: path, Kind: f.Kind.String(), Value: "<unresolved>"})
				continue
			}
			flatten(node.Fields, path, rows)
		case KindMultiReference:
			nodes := ResolveReferences(f)
			if len(nodes) == 0 {
				*rows = append(*rows, Row{Path: path, Kind: f.Kind.String(), Value: "[]"})
			}
			for i, n := range nodes {
				flatten(n.Fields, fmt.Sprintf("%s[%d]", path, i), rows)
			}
		case KindMedia:
			m, _ := ResolveMedia(f)
			*rows = append(*rows, Row{Path: path, Kind: f.Kind.String(), Value: m.URL})
		default:
			value := ""
			if f.Value != nil {
				value = strings.TrimSpace(*f.Value)
			}
			*rows = append(*rows, Row{Path: path, Kind: f.Kind.String(), Value: value})
		}
	}
}
