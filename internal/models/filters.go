package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// IntFilter is a numeric comparison leaf. Nil fields are omitted on the wire.
type IntFilter struct {
	Equals *int `json:"equals,omitempty"`
	Gt     *int `json:"gt,omitempty"`
	Gte    *int `json:"gte,omitempty"`
	Lt     *int `json:"lt,omitempty"`
	Lte    *int `json:"lte,omitempty"`
}

// StringFilter is a text comparison leaf.
type StringFilter struct {
	Equals              *string `json:"equals,omitempty"`
	Contains            *string `json:"contains,omitempty"`
	StartsWith          *string `json:"startsWith,omitempty"`
	EndsWith            *string `json:"endsWith,omitempty"`
	ContainsInsensitive *string `json:"containsInsensitive,omitempty"`
}

// UserFilters is the filter expression accepted by the users query.
// The zero value marshals to {} and means "no constraint".
type UserFilters struct {
	ID    *IntFilter    `json:"id,omitempty"`
	Name  *StringFilter `json:"name,omitempty"`
	Age   *IntFilter    `json:"age,omitempty"`
	Email *StringFilter `json:"email,omitempty"`
	Phone *StringFilter `json:"phone,omitempty"`
	And   []UserFilters `json:"and,omitempty"`
	Or    []UserFilters `json:"or,omitempty"`
}

// IsEmpty reports whether the expression places no constraint.
func (f UserFilters) IsEmpty() bool {
	return f.ID == nil && f.Name == nil && f.Age == nil && f.Email == nil &&
		f.Phone == nil && len(f.And) == 0 && len(f.Or) == 0
}

// PostFilters is the filter expression accepted by the posts query.
type PostFilters struct {
	ID      *IntFilter    `json:"id,omitempty"`
	UserID  *IntFilter    `json:"userId,omitempty"`
	Title   *StringFilter `json:"title,omitempty"`
	Content *StringFilter `json:"content,omitempty"`
	Or      []PostFilters `json:"or,omitempty"`
}

// IsEmpty reports whether the expression places no constraint.
func (f PostFilters) IsEmpty() bool {
	return f.ID == nil && f.UserID == nil && f.Title == nil && f.Content == nil && len(f.Or) == 0
}

// Tab identifies which collection a session is browsing.
type Tab string

const (
	TabUsers Tab = "Users"
	TabPosts Tab = "Posts"
)

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool {
	return t == TabUsers || t == TabPosts
}

// ParseTab accepts the tab name case-insensitively.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "users":
		return TabUsers, nil
	case "posts":
		return TabPosts, nil
	}
	return "", fmt.Errorf("%w: unknown tab %q", ErrBadRequest, s)
}

// AgeOperator is the comparison chosen for the age filter. Empty means unset.
type AgeOperator string

const (
	AgeOpNone AgeOperator = ""
	AgeOpEq   AgeOperator = "="
	AgeOpGte  AgeOperator = ">="
	AgeOpGt   AgeOperator = ">"
	AgeOpLte  AgeOperator = "<="
	AgeOpLt   AgeOperator = "<"
)

// Accepted range for the age filter, inclusive.
const (
	MinUserAge = 0
	MaxUserAge = 150
)

// Valid reports whether op is one of the known operators or unset.
func (op AgeOperator) Valid() bool {
	switch op {
	case AgeOpNone, AgeOpEq, AgeOpGte, AgeOpGt, AgeOpLte, AgeOpLt:
		return true
	}
	return false
}

// AgeInput is the raw age value as typed by the user. "" means absent.
// It decodes from a JSON number, a JSON string or null.
type AgeInput string

// Present reports whether a value was entered.
func (a AgeInput) Present() bool {
	return strings.TrimSpace(string(a)) != ""
}

func (a *AgeInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AgeInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("age must be a number or string: %w", err)
	}
	*a = AgeInput(n.String())
	return nil
}

// ColumnSort is one entry of a sorting state.
type ColumnSort struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// SortingState is an ordered list of column sorts, highest priority first.
type SortingState []ColumnSort

// Clone returns a copy that does not share the backing array.
func (s SortingState) Clone() SortingState {
	if s == nil {
		return nil
	}
	out := make(SortingState, len(s))
	copy(out, s)
	return out
}
