package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Form carries submitted values and per-field errors between a handler and
// its template. Error key "__all__" holds errors not tied to a field.
type Form struct {
	Values map[string]string
	Errors map[string]string
}

// NewForm wraps submitted values.
func NewForm(values map[string]string) *Form {
	if values == nil {
		values = map[string]string{}
	}
	return &Form{Values: values, Errors: map[string]string{}}
}

// Get returns the trimmed value of field.
func (f *Form) Get(field string) string {
	return strings.TrimSpace(f.Values[field])
}

// Error returns the error message of field, if any.
func (f *Form) Error(field string) string {
	return f.Errors[field]
}

// Valid reports whether no errors were recorded.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// AddError records msg for field, keeping the first error per field.
func (f *Form) AddError(field, msg string) {
	if _, exists := f.Errors[field]; !exists {
		f.Errors[field] = msg
	}
}

// Merge copies errors reported by a lower layer into the form.
func (f *Form) Merge(errs map[string]string) {
	for field, msg := range errs {
		f.AddError(field, msg)
	}
}

// DateTimeLayout is the format of an HTML datetime-local input.
const DateTimeLayout = "2006-01-02T15:04"

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDateTime accepts datetime-local values, read as UTC, and RFC 3339.
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/time %q", s)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
