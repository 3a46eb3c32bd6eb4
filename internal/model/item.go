package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tells lost reports from found reports.
type Kind string

const (
	Lost  Kind = "LOST"
	Found Kind = "FOUND"
)

// Param is the lowercase form the server expects in ?type=.
func (k Kind) Param() string {
	switch k {
	case Lost:
		return "lost"
	case Found:
		return "found"
	}
	return ""
}

// ParseKind accepts "lost"/"found" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case Lost:
		return Lost, nil
	case Found:
		return Found, nil
	}
	return "", fmt.Errorf("unknown item kind %q (want lost or found)", s)
}

// ID is an identifier as the server sent it. Numbers and strings both decode
// to the same textual form so "7" and 7 compare equal.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Item is a lost-or-found report as the server owns it.
// The client treats it as read-only.
type Item struct {
	ID          ID     `json:"id"`
	ItemName    string `json:"itemName"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	ContactInfo string `json:"contactInfo,omitempty"`
	Status      string `json:"status"`
	Type        Kind   `json:"type"`
	UserID      ID     `json:"userId,omitempty"`
}

// Partition splits items by their type field. Items of any other type are
// dropped from both halves.
func Partition(items []Item) (lost, found []Item) {
	lost, found = []Item{}, []Item{}
	for _, it := range items {
		switch it.Type {
		case Lost:
			lost = append(lost, it)
		case Found:
			found = append(found, it)
		}
	}
	return lost, found
}

// IsOwner reports whether the delete action should be offered for item.
// It is cosmetic: the server decides whether the delete is allowed.
func IsOwner(s *Session, item Item) bool {
	return s != nil && s.ID != "" && item.UserID != "" && s.ID.String() == item.UserID.String()
}

// Filter is the search page state sent to /items/search.
type Filter struct {
	ItemName string
	Category string
}

var (
	// ReportCategories are offered on the report forms; the first is the default.
	ReportCategories = []string{"Electronics", "Documents", "Clothing", "Accessories", "Others"}
	// SearchCategories are offered on the search page; "" means all categories.
	SearchCategories = []string{"", "ID Card", "Charger", "Bottle", "Electronics", "Documents", "Clothing", "Accessories"}
)
