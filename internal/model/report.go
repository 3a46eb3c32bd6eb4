package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRequired is wrapped with the offending field name by Validate.
var ErrRequired = errors.New("required field missing")

// DateLayout is the only date format the forms accept.
const DateLayout = "2006-01-02"

// Report is what a report form posts. Every field is always sent,
// contactInfo included even when empty.
type Report struct {
	ItemName    string `json:"itemName"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	ContactInfo string `json:"contactInfo"`
	Status      Kind   `json:"status"`
}

// NewReport returns an empty form for kind with the default category.
func NewReport(kind Kind) Report {
	return Report{Category: ReportCategories[0], Status: kind}
}

// Validate runs the client-side checks that happen before submit.
func (r Report) Validate() error {
	required := []struct{ name, val string }{
		{"itemName", r.ItemName},
		{"category", r.Category},
		{"date", r.Date},
		{"location", r.Location},
		{"description", r.Description},
	}
	for _, f := range required {
		if strings.TrimSpace(f.val) == "" {
			return fmt.Errorf("%w: %s", ErrRequired, f.name)
		}
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("date: want YYYY-MM-DD, got %q", r.Date)
	}
	return nil
}
