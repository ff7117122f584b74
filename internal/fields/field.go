package fields

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind identifies which arm of the field union is populated
type Kind int

const (
	KindText Kind = iota
	KindBoolean
	KindSingleReference
	KindMultiReference
	KindMedia
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindSingleReference:
		return "reference"
	case KindMultiReference:
		return "references"
	case KindMedia:
		return "media"
	default:
		return "text"
	}
}

// MediaReference is a terminal reference to an image
type MediaReference struct {
	URL string `json:"url"`
}

// Node is one referenced entry: a metaobject, a CMS entry or a media file
type Node struct {
	ID     string
	Fields FieldSet
	Image  *MediaReference
}

// Field is a single named unit of content.
//
// Value is set for Text and Boolean fields. Reference is set for single
// reference and media fields, References for multi reference fields. A
// reference-kind field whose payload could not be resolved keeps its Kind
// but carries no Reference/References.
type Field struct {
	Key        string
	Type       string
	Kind       Kind
	Value      *string
	Reference  *Node
	References []Node
}

// FieldSet is an ordered list of fields as delivered by the source
type FieldSet []Field

// Text builds a text field
func Text(key, value string) Field {
	return Field{Key: key, Type: "single_line_text_field", Kind: KindText, Value: &value}
}

// Bool builds a boolean field serialized the way content sources do
func Bool(key string, value bool) Field {
	v := "false"
	if value {
		v = "true"
	}
	return Field{Key: key, Type: "boolean", Kind: KindBoolean, Value: &v}
}

// Ref builds a single reference field
func Ref(key, id string, fs ...Field) Field {
	return Field{Key: key, Type: "metaobject_reference", Kind: KindSingleReference, Reference: &Node{ID: id, Fields: fs}}
}

// Refs builds a multi reference field
func Refs(key string, nodes ...Node) Field {
	if nodes == nil {
		nodes = []Node{}
	}
	return Field{Key: key, Type: "list.metaobject_reference", Kind: KindMultiReference, References: nodes}
}

// Media builds a media field
func Media(key, url string) Field {
	return Field{Key: key, Type: "file_reference", Kind: KindMedia, Reference: &Node{Image: &MediaReference{URL: url}}}
}

type rawField struct {
	Key        string          `json:"key"`
	Type       string          `json:"type"`
	Value      json.RawMessage `json:"value"`
	Reference  json.RawMessage `json:"reference"`
	References json.RawMessage `json:"references"`
}

type rawNode struct {
	ID     string          `json:"id"`
	Fields FieldSet        `json:"fields"`
	Image  json.RawMessage `json:"image"`
}

// UnmarshalJSON decodes a field leniently: malformed payloads degrade to an
// unresolved reference or an absent value instead of failing.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw rawField
	if err := json.Unmarshal(data, &raw); err != nil {
		// not an object, or key/type of the wrong JSON type
		*f = Field{}
		return nil
	}

	*f = Field{Key: raw.Key, Type: raw.Type}
	f.Value = decodeValue(raw.Value)

	switch {
	case !isNull(raw.References):
		f.Kind = KindMultiReference
		f.References = decodeNodes(raw.References)
	case !isNull(raw.Reference):
		node, ok := decodeNode(raw.Reference)
		switch {
		case ok && node.Image != nil:
			f.Kind = KindMedia
			f.Reference = &node
		case ok && node.Fields != nil:
			f.Kind = KindSingleReference
			f.Reference = &node
		default:
			f.Kind = kindFromType(raw.Type)
			if f.Kind == KindText {
				f.Kind = KindSingleReference
			}
		}
	default:
		f.Kind = kindFromType(raw.Type)
	}
	return nil
}

// UnmarshalJSON decodes an array of fields. Anything other than an array
// decodes to an empty set and entries that are not objects are dropped.
func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		if isNull(data) {
			*fs = nil
			return nil
		}
		*fs = FieldSet{}
		return nil
	}

	out := make(FieldSet, 0, len(items))
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		var f Field
		_ = f.UnmarshalJSON(item)
		out = append(out, f)
	}
	*fs = out
	return nil
}

func kindFromType(t string) Kind {
	switch {
	case t == "boolean":
		return KindBoolean
	case strings.HasPrefix(t, "list.") && strings.HasSuffix(t, "_reference"):
		return KindMultiReference
	case t == "file_reference":
		return KindMedia
	case strings.HasSuffix(t, "_reference") || t == "reference":
		return KindSingleReference
	default:
		return KindText
	}
}

func decodeValue(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	s = string(bytes.TrimSpace(raw))
	return &s
}

func decodeNode(raw json.RawMessage) (Node, bool) {
	if !isObject(raw) {
		return Node{}, false
	}
	var rn rawNode
	if err := json.Unmarshal(raw, &rn); err != nil {
		return Node{}, false
	}
	node := Node{ID: rn.ID, Fields: rn.Fields}
	if isObject(rn.Image) {
		var img MediaReference
		if err := json.Unmarshal(rn.Image, &img); err == nil && img.URL != "" {
			node.Image = &img
		}
	}
	return node, true
}

func decodeNodes(raw json.RawMessage) []Node {
	var wrapper struct {
		Nodes json.RawMessage `json:"nodes"`
	}
	if !isObject(raw) || json.Unmarshal(raw, &wrapper) != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(wrapper.Nodes, &items); err != nil || items == nil {
		return nil
	}
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		if node, ok := decodeNode(item); ok {
			if node.Fields == nil {
				node.Fields = FieldSet{}
			}
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
