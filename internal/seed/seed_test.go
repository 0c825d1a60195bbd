package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cashflow/internal/core"
)

func TestLoadFallsBackToEmbedded(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "missing.json"))
	records, source, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if source != EmbeddedSource {
		t.Fatalf("source = %q, want %q", source, EmbeddedSource)
	}
	if len(records) == 0 {
		t.Fatal("embedded seed should not be empty")
	}
	seen := map[string]bool{}
	for _, r := range records {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s in embedded seed", r.ID)
		}
		seen[r.ID] = true
		if !r.Amount.IsPositive() {
			t.Errorf("record %s has non-positive amount", r.ID)
		}
	}
}

func TestLoadPrefersLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	content := `[{"id":"a","type":"Pemasukan","source":"Gaji","label":"x","amount":10,"description":"d","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z","extra":true}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, source, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if source != path || len(records) != 1 || records[0].ID != "a" || records[0].CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected result: %q %+v", source, records)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(`{"cashFlows": [`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := NewLoader(path).Load()
	var serr *core.SeedLoadError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SeedLoadError, got %v", err)
	}
	if serr.Source != path {
		t.Fatalf("source = %q", serr.Source)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{"object form", `{"cashFlows":[{"id":"1","amount":1},{"id":"2","amount":"2.5"}]}`, 2, false},
		{"array form", `[{"id":"1","amount":1}]`, 1, false},
		{"empty object", `{}`, 0, false},
		{"blank", `   `, 0, true},
		{"scalar", `42`, 0, true},
		{"missing id", `[{"amount":1}]`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}
