// Package filter selects cash flows matching a set of optional criteria and
// extracts the distinct values used to populate filter choices.
package filter

import (
	"net/url"
	"strings"
	"time"

	"cashflow/internal/core"

	"github.com/shopspring/decimal"
)

// DateLayout is the day-month-year format of the startDate/endDate parameters.
const DateLayout = "02-01-2006"

// Query parameter names.
const (
	ParamType      = "type"
	ParamSource    = "source"
	ParamLabels    = "labels"
	ParamGteAmount = "gteAmount"
	ParamLteAmount = "lteAmount"
	ParamSearch    = "search"
	ParamStartDate = "startDate"
	ParamEndDate   = "endDate"
)

const msgInvalidDate = "Must be a date in DD-MM-YYYY format"

// Query holds the list filters. A nil field places no constraint.
type Query struct {
	Type      *string
	Source    *string
	Labels    []string
	GteAmount *decimal.Decimal
	LteAmount *decimal.Decimal
	Search    *string
	StartDate *time.Time
	EndDate   *time.Time
}

// ParseQuery builds a Query from URL query parameters. Blank parameters are
// treated as absent and amount bounds that are not numbers are ignored.
// Type, source and search keep their surrounding whitespace.
// Date bounds that do not parse are reported as a core.ValidationError.
func ParseQuery(v url.Values) (Query, error) {
	var q Query
	errs := core.ValidationError{}

	q.Type = optionalRaw(v, ParamType)
	q.Source = optionalRaw(v, ParamSource)
	q.Search = optionalRaw(v, ParamSearch)
	if labels := optional(v, ParamLabels); labels != nil {
		q.Labels = core.SplitLabels(*labels)
	}

	q.GteAmount = optionalAmount(v, ParamGteAmount)
	q.LteAmount = optionalAmount(v, ParamLteAmount)

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{ParamStartDate, &q.StartDate},
		{ParamEndDate, &q.EndDate},
	} {
		raw := optional(v, p.name)
		if raw == nil {
			continue
		}
		d, err := time.Parse(DateLayout, *raw)
		if err != nil {
			errs.Add(p.name, msgInvalidDate)
			continue
		}
		*p.dst = &d
	}

	if err := errs.Err(); err != nil {
		return Query{}, err
	}
	return q, nil
}

func optional(v url.Values, key string) *string {
	if !v.Has(key) {
		return nil
	}
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil
	}
	return &s
}

// optionalRaw is optional without the trim: the value is matched as sent.
func optionalRaw(v url.Values, key string) *string {
	if !v.Has(key) {
		return nil
	}
	s := v.Get(key)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func optionalAmount(v url.Values, key string) *decimal.Decimal {
	s := optional(v, key)
	if s == nil {
		return nil
	}
	d, err := core.ParseAmount(*s)
	if err != nil {
		return nil
	}
	return &d
}

// IsEmpty reports whether q places no constraint at all.
func (q Query) IsEmpty() bool {
	return q.Type == nil && q.Source == nil && len(q.Labels) == 0 &&
		q.GteAmount == nil && q.LteAmount == nil && q.Search == nil &&
		q.StartDate == nil && q.EndDate == nil
}

// Matches reports whether c satisfies every predicate of q.
func (q Query) Matches(c core.CashFlow) bool {
	if q.Type != nil && !strings.EqualFold(c.Type, *q.Type) {
		return false
	}
	if q.Source != nil && !strings.EqualFold(c.Source, *q.Source) {
		return false
	}
	for _, tag := range q.Labels {
		if !c.HasLabel(tag) {
			return false
		}
	}
	if q.GteAmount != nil && c.Amount.LessThan(*q.GteAmount) {
		return false
	}
	if q.LteAmount != nil && c.Amount.GreaterThan(*q.LteAmount) {
		return false
	}
	if q.Search != nil && !strings.Contains(strings.ToLower(c.Description), strings.ToLower(*q.Search)) {
		return false
	}
	if q.StartDate != nil || q.EndDate != nil {
		created, ok := c.CreatedDate()
		if !ok {
			return false
		}
		if q.StartDate != nil && created.Before(*q.StartDate) {
			return false
		}
		if q.EndDate != nil && created.After(*q.EndDate) {
			return false
		}
	}
	return true
}

// Apply returns the records of all that match q, in their original order.
func Apply(all []core.CashFlow, q Query) []core.CashFlow {
	if q.IsEmpty() {
		return all
	}
	out := make([]core.CashFlow, 0, len(all))
	for _, c := range all {
		if q.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
