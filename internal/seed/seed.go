// Package seed loads the static initial dataset used to reset the store.
package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cashflow/internal/core"
)

// DefaultFile is the seed file looked up in the working directory.
const DefaultFile = "data-awal.json"

// EmbeddedSource names the bundled copy in logs and errors.
const EmbeddedSource = "embedded:" + DefaultFile

//go:embed data-awal.json
var embedded []byte

// container is the object form of a seed file.
type container struct {
	CashFlows []core.CashFlow `json:"cashFlows"`
}

// Loader reads seed data from a local file, falling back to the bundled copy
// when the file does not exist.
type Loader struct {
	Path string
}

func NewLoader(path string) *Loader {
	if path == "" {
		path = DefaultFile
	}
	return &Loader{Path: path}
}

// Load returns the seed records together with the source they were read from.
// Any failure is reported as a *core.SeedLoadError.
func (l *Loader) Load() ([]core.CashFlow, string, error) {
	source := l.Path
	data, err := os.ReadFile(l.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		source = EmbeddedSource
		data = embedded
	case err != nil:
		return nil, source, &core.SeedLoadError{Source: source, Err: err}
	}

	records, err := Decode(data)
	if err != nil {
		return nil, source, &core.SeedLoadError{Source: source, Err: err}
	}
	return records, source, nil
}

// Decode parses either a {"cashFlows": [...]} object or a bare JSON array.
// Unknown keys are ignored. Missing labels become the empty string.
func Decode(data []byte) ([]core.CashFlow, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("seed data is empty")
	}

	var records []core.CashFlow
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode seed array: %w", err)
		}
	case '{':
		var c container
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("decode seed object: %w", err)
		}
		records = c.CashFlows
	default:
		return nil, errors.New("seed data must be a JSON object or array")
	}

	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("seed record %d has no id", i)
		}
	}
	return records, nil
}
