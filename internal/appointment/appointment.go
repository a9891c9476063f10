// Package appointment provides the clinic appointment record and its
// flat-file JSON store. The store is a single JSON array document that is
// read in full and rewritten on every append; there are no updates,
// deletes, or identifiers.
package appointment

import (
	"fmt"
	"strings"
	"time"
)

// Date and time-of-day layouts accepted on the booking form.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is a single booking request.
type Appointment struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`

	// CreatedAt is stamped by the store on save.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Validate checks required fields and the date/time formats.
func (a *Appointment) Validate() error {
	var missing []string
	if strings.TrimSpace(a.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(a.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(a.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	if _, err := time.Parse(DateLayout, a.Date); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", a.Date)
	}

	// Accept HH:MM and HH:MM:SS
	if _, err := time.Parse(TimeLayout, a.Time); err != nil {
		if _, err := time.Parse("15:04:05", a.Time); err != nil {
			return fmt.Errorf("invalid time %q: want HH:MM", a.Time)
		}
	}

	return nil
}
