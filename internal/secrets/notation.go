package secrets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	arrayPattern  = regexp.MustCompile(`^(.+)\[(\d+)\]$`)
	propPattern   = regexp.MustCompile(`^(.+)\[([a-zA-Z_]\w*)\]$`)
	nestedPattern = regexp.MustCompile(`^(.+)\[(\d+)\]\[([a-zA-Z_]\w*)\]$`)
)

// Notation is a parsed KSM notation: <uid|title>/field|custom_field/<name>[i][prop]
type Notation struct {
	UID      string
	Title    string
	Custom   bool
	Field    string
	Index    int // -1 when absent
	Property string
}

// ParseNotation parses the part of a keeper:// reference after the scheme
func ParseNotation(notation string) (Notation, error) {
	if notation == "" {
		return Notation{}, fmt.Errorf("notation cannot be empty")
	}

	parts := strings.SplitN(notation, "/", 3)
	if len(parts) < 3 {
		return Notation{}, fmt.Errorf("invalid notation %q: expected <record>/field/<name>", notation)
	}

	n := Notation{Index: -1}
	if isValidUID(parts[0]) {
		n.UID = parts[0]
	} else if parts[0] != "" {
		n.Title = parts[0]
	} else {
		return Notation{}, fmt.Errorf("invalid notation %q: missing record", notation)
	}

	switch parts[1] {
	case "field":
	case "custom_field":
		n.Custom = true
	case "file":
		return Notation{}, fmt.Errorf("file notation cannot be used as a setting value")
	default:
		return Notation{}, fmt.Errorf("unknown notation type: %s", parts[1])
	}

	if err := n.parseField(parts[2]); err != nil {
		return Notation{}, err
	}
	return n, nil
}

func (n *Notation) parseField(fieldPart string) error {
	if fieldPart == "" {
		return fmt.Errorf("field name cannot be empty")
	}

	if m := nestedPattern.FindStringSubmatch(fieldPart); m != nil {
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return fmt.Errorf("invalid array index: %s", m[2])
		}
		n.Field, n.Index, n.Property = m[1], index, m[3]
		return nil
	}
	if m := arrayPattern.FindStringSubmatch(fieldPart); m != nil {
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return fmt.Errorf("invalid array index: %s", m[2])
		}
		n.Field, n.Index = m[1], index
		return nil
	}
	if m := propPattern.FindStringSubmatch(fieldPart); m != nil {
		n.Field, n.Property = m[1], m[2]
		return nil
	}

	n.Field = fieldPart
	return nil
}

// String renders the notation back into KSM form
func (n Notation) String() string {
	record := n.UID
	if record == "" {
		record = n.Title
	}

	kind := "field"
	if n.Custom {
		kind = "custom_field"
	}

	field := n.Field
	switch {
	case n.Index >= 0 && n.Property != "":
		field = fmt.Sprintf("%s[%d][%s]", field, n.Index, n.Property)
	case n.Index >= 0:
		field = fmt.Sprintf("%s[%d]", field, n.Index)
	case n.Property != "":
		field = fmt.Sprintf("%s[%s]", field, n.Property)
	}

	return record + "/" + kind + "/" + field
}

// isValidUID checks if a string looks like a record UID
func isValidUID(s string) bool {
	if len(s) < 16 || len(s) > 32 {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
