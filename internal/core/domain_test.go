package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDraftValidate(t *testing.T) {
	good := Draft{Type: "Pemasukan", Source: "Gaji", Label: "a, b", Amount: "1500.50", Description: "gaji bulanan"}
	in, err := good.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !in.Amount.Equal(decimal.RequireFromString("1500.5")) {
		t.Fatalf("amount = %s", in.Amount)
	}

	cases := []struct {
		name  string
		draft Draft
		want  map[string]string
	}{
		{
			name:  "zero amount",
			draft: Draft{Type: "t", Source: "s", Label: "l", Amount: "0", Description: "d"},
			want:  map[string]string{FieldAmount: MsgAmountPositive},
		},
		{
			name:  "negative amount",
			draft: Draft{Type: "t", Source: "s", Label: "l", Amount: "-5", Description: "d"},
			want:  map[string]string{FieldAmount: MsgAmountPositive},
		},
		{
			name:  "non numeric amount",
			draft: Draft{Type: "t", Source: "s", Label: "l", Amount: "abc", Description: "d"},
			want:  map[string]string{FieldAmount: MsgAmountPositive},
		},
		{
			name:  "missing description and bad amount together",
			draft: Draft{Type: "t", Source: "s", Label: "l", Amount: "-1", Description: "  "},
			want:  map[string]string{FieldAmount: MsgAmountPositive, FieldDescription: MsgRequired},
		},
		{
			name:  "everything missing",
			draft: Draft{},
			want: map[string]string{
				FieldType: MsgRequired, FieldSource: MsgRequired, FieldLabel: MsgRequired,
				FieldAmount: MsgRequired, FieldDescription: MsgRequired,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.draft.Validate()
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr) != len(tc.want) {
				t.Fatalf("got %v, want %v", verr, tc.want)
			}
			for f, msg := range tc.want {
				if verr[f] != msg {
					t.Errorf("%s = %q, want %q", f, verr[f], msg)
				}
			}
		})
	}
}

func TestCashFlowLabels(t *testing.T) {
	c := CashFlow{Label: " a, b,,c , "}
	got := c.Labels()
	want := []string{"a", "b", "c"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Labels() = %v, want %v", got, want)
	}
	if !c.HasLabel(" b ") || c.HasLabel("d") || c.HasLabel(" ") {
		t.Fatalf("HasLabel mismatch")
	}
}

func TestCreatedDate(t *testing.T) {
	c := CashFlow{CreatedAt: "2024-01-15T10:00:00.000+07:00"}
	d, ok := c.CreatedDate()
	if !ok || d.Year() != 2024 || d.Month() != 1 || d.Day() != 15 {
		t.Fatalf("CreatedDate() = %v, %v", d, ok)
	}
	for _, bad := range []string{"", "2024-01", "not-a-date-at-all", "2024-13-01T00:00:00Z"} {
		if _, ok := (CashFlow{CreatedAt: bad}).CreatedDate(); ok {
			t.Errorf("expected %q to be unparseable", bad)
		}
	}
}

func TestNewCashFlowAndReplace(t *testing.T) {
	in := CashFlowInput{Type: "Pengeluaran", Source: "Cash", Label: "makan", Amount: decimal.NewFromInt(20000), Description: "nasi"}
	c := NewCashFlow(in)
	if c.ID == "" || c.CreatedAt == "" || c.CreatedAt != c.UpdatedAt {
		t.Fatalf("unexpected new cash flow: %+v", c)
	}

	other := NewCashFlow(in)
	if other.ID == c.ID {
		t.Fatalf("ids must be unique")
	}

	c.UpdatedAt = "2000-01-01T00:00:00Z"
	r := c.Replace(CashFlowInput{Type: "Pemasukan", Source: "Bank", Label: "", Amount: decimal.NewFromInt(1), Description: "x"})
	if r.ID != c.ID || r.CreatedAt != c.CreatedAt {
		t.Fatalf("Replace must keep id and createdAt")
	}
	if r.UpdatedAt == c.UpdatedAt || r.Type != "Pemasukan" {
		t.Fatalf("Replace did not apply fields: %+v", r)
	}
}

func TestCashFlowJSONAmountIsNumber(t *testing.T) {
	c := CashFlow{ID: "1", Amount: decimal.RequireFromString("12.5")}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"amount":12.5`) {
		t.Fatalf("amount not a bare number: %s", b)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	v := ValidationError{}
	if v.Err() != nil {
		t.Fatalf("empty ValidationError must be nil error")
	}
	v.Add("b", "x")
	v.Add("a", "y")
	v.Add("a", "z")
	if got := v.Error(); got != "validation failed: a: y, b: x" {
		t.Fatalf("Error() = %q", got)
	}
}
