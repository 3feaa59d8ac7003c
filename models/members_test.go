package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalizeMembers(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		want      []string
		malformed bool
	}{
		{name: "nil", raw: nil, want: []string{}},
		{name: "empty string", raw: "", want: []string{}},
		{name: "blank string", raw: "   ", want: []string{}},
		{name: "string list", raw: []string{"1", "2"}, want: []string{"1", "2"}},
		{name: "mixed list", raw: []any{"a", float64(2), json.Number("3")}, want: []string{"a", "2", "3"}},
		{name: "json list", raw: `["1","2"]`, want: []string{"1", "2"}},
		{name: "json numbers", raw: ` [1, 22] `, want: []string{"1", "22"}},
		{name: "comma separated", raw: "1,2", want: []string{"1", "2"}},
		{name: "comma separated with spaces", raw: " u1 , u2 ,", want: []string{"u1", "u2"}},
		{name: "single id", raw: "u1", want: []string{"u1"}},
		{name: "single number", raw: 42, want: []string{"42"}},
		{name: "not json", raw: "not json", want: []string{}, malformed: true},
		{name: "broken json", raw: `["1",`, want: []string{}, malformed: true},
		{name: "bracketed garbage", raw: "[not json]", want: []string{}, malformed: true},
		{name: "json object in brackets", raw: `[{"id":1}]`, want: []string{}, malformed: true},
		{name: "object", raw: map[string]any{"id": "1"}, want: []string{}, malformed: true},
		{name: "bool", raw: true, want: []string{}, malformed: true},
		{name: "duplicates kept", raw: []string{"1", "1"}, want: []string{"1", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMembers(tt.raw)
			if tt.malformed != errors.Is(err, ErrMalformedMembers) {
				t.Fatalf("NormalizeMembers(%#v) err = %v, malformed expected %v", tt.raw, err, tt.malformed)
			}
			if got == nil {
				t.Fatalf("NormalizeMembers(%#v) returned nil slice", tt.raw)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NormalizeMembers(%#v) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeMembersEquivalentEncodings(t *testing.T) {
	want := []string{"1", "2"}
	for _, raw := range []any{`["1","2"]`, []string{"1", "2"}, "1,2"} {
		got, err := NormalizeMembers(raw)
		if err != nil {
			t.Fatalf("NormalizeMembers(%#v): %v", raw, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("NormalizeMembers(%#v) = %v, want %v", raw, got, want)
		}
	}
}

func TestNormalizeMembersIdempotent(t *testing.T) {
	inputs := []any{`["u1","u2"]`, "u3, u4", []any{float64(7), "x"}, nil, "garbage value"}
	for _, raw := range inputs {
		once, _ := NormalizeMembers(raw)
		twice, err := NormalizeMembers(once)
		if err != nil {
			t.Fatalf("renormalizing %v: %v", once, err)
		}
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("not idempotent for %#v: %v then %v", raw, once, twice)
		}
	}
}

func TestMemberSetJSON(t *testing.T) {
	var task struct {
		AssignedTo MemberSet `json:"assigned_to"`
	}

	cases := map[string][]string{
		`{"assigned_to":["1",2]}`:         {"1", "2"},
		`{"assigned_to":"[\"a\",\"b\"]"}`: {"a", "b"},
		`{"assigned_to":"a,b"}`:           {"a", "b"},
		`{"assigned_to":null}`:            {},
	}
	for payload, want := range cases {
		task.AssignedTo = MemberSet{}
		if err := json.Unmarshal([]byte(payload), &task); err != nil {
			t.Fatalf("unmarshal %s: %v", payload, err)
		}
		if task.AssignedTo.Malformed {
			t.Fatalf("unexpected malformed flag for %s", payload)
		}
		if !sameIDs(task.AssignedTo.IDs, want) {
			t.Fatalf("unmarshal %s = %v, want %v", payload, task.AssignedTo.IDs, want)
		}
	}

	if err := json.Unmarshal([]byte(`{"assigned_to":"[oops"}`), &task); err != nil {
		t.Fatalf("malformed value must not fail decoding: %v", err)
	}
	if !task.AssignedTo.Malformed || task.AssignedTo.Len() != 0 {
		t.Fatalf("expected malformed empty set, got %+v", task.AssignedTo)
	}

	out, err := json.Marshal(MemberSet{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "[]" {
		t.Fatalf("empty set marshals to %s, want []", out)
	}
}

func TestMemberSetBSON(t *testing.T) {
	type doc struct {
		TeamMembers MemberSet `bson:"team_members"`
	}

	cases := []struct {
		name string
		raw  bson.M
		want []string
		bad  bool
	}{
		{name: "array", raw: bson.M{"team_members": bson.A{"1", int32(2), int64(3)}}, want: []string{"1", "2", "3"}},
		{name: "json string", raw: bson.M{"team_members": `["x","y"]`}, want: []string{"x", "y"}},
		{name: "null", raw: bson.M{"team_members": nil}, want: []string{}},
		{name: "garbage", raw: bson.M{"team_members": "{broken"}, want: []string{}, bad: true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(tt.raw)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var d doc
			if err := bson.Unmarshal(data, &d); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if d.TeamMembers.Malformed != tt.bad {
				t.Fatalf("malformed = %v, want %v", d.TeamMembers.Malformed, tt.bad)
			}
			if !sameIDs(d.TeamMembers.IDs, tt.want) {
				t.Fatalf("ids = %#v, want %#v", d.TeamMembers.IDs, tt.want)
			}
		})
	}

	data, err := bson.Marshal(doc{TeamMembers: Members("a", "b")})
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	var back struct {
		TeamMembers []string `bson:"team_members"`
	}
	if err := bson.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal doc: %v", err)
	}
	if !reflect.DeepEqual(back.TeamMembers, []string{"a", "b"}) {
		t.Fatalf("stored as %v", back.TeamMembers)
	}
}

func TestFormatMembers(t *testing.T) {
	users := []User{{ID: "1", Name: "Mohamed"}, {ID: "6", Name: "Oualid"}}

	if got := FormatMembers(Members(), users); got != UnassignedLabel {
		t.Fatalf("empty set = %q", got)
	}
	if got := FormatMembers(NewMemberSet("[bad"), users); got != FormatErrorLabel {
		t.Fatalf("malformed set = %q", got)
	}
	if got := FormatMembers(NewMemberSet([]any{float64(1), "9"}), users); got != "Mohamed, ID: 9" {
		t.Fatalf("resolved = %q", got)
	}
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
