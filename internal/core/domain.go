package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimestampLayout is the text format used for generated createdAt/updatedAt values.
const TimestampLayout = time.RFC3339Nano

// Field names shared by validation and the JSON wire format.
const (
	FieldType        = "type"
	FieldSource      = "source"
	FieldLabel       = "label"
	FieldAmount      = "amount"
	FieldDescription = "description"
)

// Validation messages returned to clients.
const (
	MsgRequired       = "Is required"
	MsgAmountPositive = "Must be > 0"
)

// Change event names published after successful mutations.
const (
	EventCreated  = "cash_flow.created"
	EventUpdated  = "cash_flow.updated"
	EventDeleted  = "cash_flow.deleted"
	EventReseeded = "cash_flow.reseeded"
)

func init() {
	// Amounts travel as plain JSON numbers, the same shape the seed file uses.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	// CashFlow is a single income or expense entry.
	CashFlow struct {
		ID          string          `json:"id"`
		Type        string          `json:"type"`
		Source      string          `json:"source"`
		Label       string          `json:"label"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		CreatedAt   string          `json:"createdAt"`
		UpdatedAt   string          `json:"updatedAt"`
	}

	// CashFlowInput carries the client-editable fields of a cash flow,
	// already validated.
	CashFlowInput struct {
		Type        string
		Source      string
		Label       string
		Amount      decimal.Decimal
		Description string
	}
)

var (
	ErrNotFound      = errors.New("cash flow not found")
	ErrInvalidAmount = errors.New("invalid amount")
)

// ValidationError maps field names to client-facing messages.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a message for field unless one is already present.
func (v ValidationError) Add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

// Err returns v as an error, or nil when no field failed.
func (v ValidationError) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// SeedLoadError reports a seed file that is missing or cannot be decoded.
type SeedLoadError struct {
	Source string
	Err    error
}

func (e *SeedLoadError) Error() string {
	return fmt.Sprintf("load seed data from %s: %v", e.Source, e.Err)
}

func (e *SeedLoadError) Unwrap() error { return e.Err }

// NewID returns a random unique identifier for a new cash flow.
func NewID() string {
	return uuid.NewString()
}

// Now returns the current time formatted as a cash-flow timestamp.
func Now() string {
	return time.Now().Format(TimestampLayout)
}

// NewCashFlow builds a fresh record with a generated id and timestamps.
func NewCashFlow(in CashFlowInput) CashFlow {
	now := Now()
	return CashFlow{
		ID:          NewID(),
		Type:        in.Type,
		Source:      in.Source,
		Label:       in.Label,
		Amount:      in.Amount,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Replace returns a copy of c carrying every field of in. The id and
// createdAt are kept; updatedAt is refreshed.
func (c CashFlow) Replace(in CashFlowInput) CashFlow {
	c.Type = in.Type
	c.Source = in.Source
	c.Label = in.Label
	c.Amount = in.Amount
	c.Description = in.Description
	c.UpdatedAt = Now()
	return c
}

// Labels returns the record's tag set: split on commas, trimmed, blanks dropped.
func (c CashFlow) Labels() []string {
	return SplitLabels(c.Label)
}

// HasLabel reports whether tag (trimmed) is in the record's tag set.
func (c CashFlow) HasLabel(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, l := range c.Labels() {
		if l == tag {
			return true
		}
	}
	return false
}

// CreatedDate parses the calendar date held in the first ten characters of CreatedAt.
func (c CashFlow) CreatedDate() (time.Time, bool) {
	if len(c.CreatedAt) < 10 {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, c.CreatedAt[:10])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// SplitLabels splits a comma-separated label string into trimmed, non-empty tags.
// Duplicates are kept; callers that need a set de-duplicate themselves.
func SplitLabels(s string) []string {
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Draft holds client-supplied fields as text, before validation. A missing
// field and a blank one are treated alike.
type Draft struct {
	Type        string
	Source      string
	Label       string
	Amount      string
	Description string
}

// Validate checks every field and collects all failures before returning.
// Blank fields are reported as required; an amount that is present but not a
// positive number gets its own message.
func (d Draft) Validate() (CashFlowInput, error) {
	errs := ValidationError{}
	required := []struct{ name, value string }{
		{FieldType, d.Type},
		{FieldSource, d.Source},
		{FieldLabel, d.Label},
		{FieldAmount, d.Amount},
		{FieldDescription, d.Description},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs.Add(f.name, MsgRequired)
		}
	}

	var amount decimal.Decimal
	if _, missing := errs[FieldAmount]; !missing {
		a, err := ParsePositiveAmount(d.Amount)
		if err != nil {
			errs.Add(FieldAmount, MsgAmountPositive)
		}
		amount = a
	}

	if err := errs.Err(); err != nil {
		return CashFlowInput{}, err
	}
	return CashFlowInput{
		Type:        d.Type,
		Source:      d.Source,
		Label:       d.Label,
		Amount:      amount,
		Description: d.Description,
	}, nil
}
