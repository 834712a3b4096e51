package grouping

import "strings"

// Role is how a column is rendered.
type Role int

const (
	RoleText   Role = iota
	RoleTrade       // grouping key, shown as a section header rather than a column
	RolePrice       // currency, carries the cheapest badge
	RoleCode        // monospace hint
	RoleID          // internal identifier, hidden
	RoleBadge       // boolean flag folded into the price cell, hidden
)

func (r Role) String() string {
	switch r {
	case RoleTrade:
		return "trade"
	case RolePrice:
		return "price"
	case RoleCode:
		return "code"
	case RoleID:
		return "id"
	case RoleBadge:
		return "badge"
	}
	return "text"
}

// classifier is evaluated top to bottom; the first matching substring wins.
// "trade_name" precedes "code" so trade names never read as codes, and the
// cheapest flag precedes "price" for the same reason.
var classifier = []struct {
	substr string
	role   Role
}{
	{"trade_name", RoleTrade},
	{"cheapest", RoleBadge},
	{"price", RolePrice},
	{"code", RoleCode},
	{"_id", RoleID},
}

// Classify returns the role of a field name. Matching is case-insensitive.
func Classify(name string) Role {
	lower := strings.ToLower(name)
	for _, c := range classifier {
		if strings.Contains(lower, c.substr) {
			return c.role
		}
	}
	return RoleText
}

// FieldDescriptor describes one displayable field.
type FieldDescriptor struct {
	Key    string
	Title  string
	Role   Role
	Hidden bool // not drawn as a flat column
}

// InferColumns classifies keys in order. Trade, id and badge fields are
// marked hidden.
func InferColumns(keys []string) []FieldDescriptor {
	cols := make([]FieldDescriptor, 0, len(keys))
	for _, k := range keys {
		role := Classify(k)
		cols = append(cols, FieldDescriptor{
			Key:    k,
			Title:  Title(k),
			Role:   role,
			Hidden: role == RoleTrade || role == RoleID || role == RoleBadge,
		})
	}
	return cols
}

// Visible returns the descriptors that are drawn as columns.
func Visible(cols []FieldDescriptor) []FieldDescriptor {
	var out []FieldDescriptor
	for _, c := range cols {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}
