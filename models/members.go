package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrMalformedMembers is returned when a stored members/assignees field
// cannot be read as a list of identifiers.
var ErrMalformedMembers = errors.New("malformed member list")

const (
	UnassignedLabel  = "Unassigned"
	FormatErrorLabel = "Format error"
)

// NormalizeMembers converts a raw members/assignees value into a list of
// identifier strings. The value may be a native list, a JSON encoded list,
// a bare identifier or a comma separated string. It never panics: on
// malformed input it returns an empty list together with ErrMalformedMembers.
func NormalizeMembers(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		out := make([]string, 0, len(v))
		return append(out, v...), nil
	case []ID:
		out := make([]string, 0, len(v))
		for _, id := range v {
			out = append(out, string(id))
		}
		return out, nil
	case primitive.A:
		return normalizeList([]any(v))
	case []any:
		return normalizeList(v)
	case MemberSet:
		return NormalizeMembers(v.IDs)
	case *MemberSet:
		if v == nil {
			return []string{}, nil
		}
		return NormalizeMembers(v.IDs)
	case json.RawMessage:
		return normalizeJSON(v)
	case string:
		return normalizeString(v)
	case bool, map[string]any, primitive.M, primitive.D:
		return []string{}, ErrMalformedMembers
	}
	// Pojedinačan broj tretiramo kao jedan identifikator.
	if s, ok := idString(raw); ok {
		return []string{s}, nil
	}
	return []string{}, ErrMalformedMembers
}

func normalizeList(items []any) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := idString(item)
		if !ok {
			return []string{}, ErrMalformedMembers
		}
		out = append(out, s)
	}
	return out, nil
}

func normalizeString(s string) ([]string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return []string{}, nil
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var items []any
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&items); err != nil {
			return []string{}, ErrMalformedMembers
		}
		return normalizeList(items)
	}

	out := []string{}
	for _, segment := range strings.Split(trimmed, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if !validIdentifier(segment) {
			return []string{}, ErrMalformedMembers
		}
		out = append(out, segment)
	}
	return out, nil
}

func normalizeJSON(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []string{}, nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return []string{}, ErrMalformedMembers
	}
	return NormalizeMembers(v)
}

func validIdentifier(s string) bool {
	return !strings.ContainsAny(s, " \t\r\n[]{}\"'")
}

// MemberSet is the canonical form of a members/assignees field. Malformed
// records the fact that the stored value could not be decoded, so the view
// can show a format error instead of silently showing nobody.
type MemberSet struct {
	IDs       []string
	Malformed bool
}

// NewMemberSet decodes raw through NormalizeMembers.
func NewMemberSet(raw any) MemberSet {
	ids, err := NormalizeMembers(raw)
	return MemberSet{IDs: ids, Malformed: err != nil}
}

func Members(ids ...string) MemberSet {
	return MemberSet{IDs: append([]string{}, ids...)}
}

func (m MemberSet) Len() int { return len(m.IDs) }

func (m MemberSet) Contains(id string) bool {
	if id == "" {
		return false
	}
	for _, member := range m.IDs {
		if member == id {
			return true
		}
	}
	return false
}

func (m MemberSet) list() []string {
	if m.IDs == nil {
		return []string{}
	}
	return m.IDs
}

func (m MemberSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.list())
}

func (m *MemberSet) UnmarshalJSON(data []byte) error {
	ids, err := normalizeJSON(data)
	*m = MemberSet{IDs: ids, Malformed: err != nil}
	return nil
}

func (m MemberSet) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(m.list())
}

func (m *MemberSet) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var v any
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&v); err != nil {
		*m = MemberSet{IDs: []string{}, Malformed: true}
		return nil
	}
	*m = NewMemberSet(v)
	return nil
}

// ResolveMemberNames maps every id of the set to the matching user's name.
// Ids that match nobody are kept as "ID: <id>" so dangling references stay
// visible.
func ResolveMemberNames(set MemberSet, users []User) []string {
	byID := make(map[string]string, len(users))
	for _, u := range users {
		byID[string(u.ID)] = u.Name
	}
	names := make([]string, 0, len(set.IDs))
	for _, id := range set.IDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
			continue
		}
		names = append(names, "ID: "+id)
	}
	return names
}

// FormatMembers renders a member set for display.
func FormatMembers(set MemberSet, users []User) string {
	if set.Malformed {
		return FormatErrorLabel
	}
	if set.Len() == 0 {
		return UnassignedLabel
	}
	return strings.Join(ResolveMemberNames(set, users), ", ")
}
