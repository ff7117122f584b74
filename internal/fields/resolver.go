package fields

import "slices"

// Find returns the first field with the given key
func (fs FieldSet) Find(key string) (Field, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// FindAll looks up several keys in one pass. The result holds the first
// occurrence of each wanted key; keys that are not present are missing from
// the map.
func (fs FieldSet) FindAll(keys ...string) map[string]Field {
	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}

	found := make(map[string]Field, len(keys))
	for _, f := range fs {
		if len(found) == len(wanted) {
			break
		}
		if _, ok := wanted[f.Key]; !ok {
			continue
		}
		if _, seen := found[f.Key]; !seen {
			found[f.Key] = f
		}
	}
	return found
}

// ResolveReference returns the entry a single reference field points at
func ResolveReference(f Field) (Node, bool) {
	if f.Kind != KindSingleReference || f.Reference == nil {
		return Node{}, false
	}
	return *f.Reference, true
}

// ResolveMedia returns the image a media field points at
func ResolveMedia(f Field) (MediaReference, bool) {
	if f.Reference == nil || f.Reference.Image == nil {
		return MediaReference{}, false
	}
	return *f.Reference.Image, true
}

// ResolveReferences returns the entries of a multi reference field, or an
// empty slice for any other field.
func ResolveReferences(f Field) []Node {
	if f.Kind != KindMultiReference || f.References == nil {
		return []Node{}
	}
	return f.References
}

// Leaf returns the scalar value stored under key. Reference fields have no
// leaf value.
func (fs FieldSet) Leaf(key string) (string, bool) {
	f, ok := fs.Find(key)
	if !ok || f.Value == nil {
		return "", false
	}
	switch f.Kind {
	case KindText, KindBoolean:
		return *f.Value, true
	default:
		return "", false
	}
}

// String returns the leaf value under key or the empty string
func (fs FieldSet) String(key string) string {
	v, _ := fs.Leaf(key)
	return v
}

// Flag reports whether the leaf under key is exactly "true"
func (fs FieldSet) Flag(key string) bool {
	v, ok := fs.Leaf(key)
	return ok && IsTrue(v)
}

// IsTrue is the only boolean interpretation content values get: "True",
// "1" and "" are all false.
func IsTrue(v string) bool {
	return v == "true"
}

// Ref follows the single reference under key. An absent or unresolved
// reference yields an empty set so lookups can keep chaining.
func (fs FieldSet) Ref(key string) FieldSet {
	f, ok := fs.Find(key)
	if !ok {
		return FieldSet{}
	}
	node, ok := ResolveReference(f)
	if !ok || node.Fields == nil {
		return FieldSet{}
	}
	return node.Fields
}

// Refs follows the multi reference under key
func (fs FieldSet) Refs(key string) []Node {
	f, ok := fs.Find(key)
	if !ok {
		return []Node{}
	}
	return ResolveReferences(f)
}

// MediaURL returns the image URL of the media field under key
func (fs FieldSet) MediaURL(key string) (string, bool) {
	f, ok := fs.Find(key)
	if !ok {
		return "", false
	}
	m, ok := ResolveMedia(f)
	if !ok {
		return "", false
	}
	return m.URL, true
}

// Path follows a chain of single references and returns the set at the end
func (fs FieldSet) Path(keys ...string) FieldSet {
	cur := fs
	for _, k := range keys {
		cur = cur.Ref(k)
	}
	return cur
}

// OrderBySchema returns a copy of fs sorted by the position of each key in
// keyOrder. Keys missing from keyOrder rank as -1 and therefore come first;
// the sort is stable so they keep their source order.
func OrderBySchema(fs FieldSet, keyOrder []string) FieldSet {
	out := slices.Clone(fs)
	if out == nil {
		return FieldSet{}
	}
	slices.SortStableFunc(out, func(a, b Field) int {
		return slices.Index(keyOrder, a.Key) - slices.Index(keyOrder, b.Key)
	})
	return out
}
