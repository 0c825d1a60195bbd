package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"cashflow/internal/core"
)

// maxBodyBytes bounds create and update payloads.
const maxBodyBytes = 1 << 20

// optionalString is a JSON field that remembers whether it was present and
// accepts strings, numbers and booleans, keeping their text.
type optionalString struct {
	Set   bool
	Value string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = optionalString{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = optionalString{Set: true, Value: s}
	case '{', '[':
		// Structured values have no text form; they count as missing.
		*o = optionalString{}
	default:
		// Numbers and booleans keep their literal text.
		*o = optionalString{Set: true, Value: string(data)}
	}
	return nil
}

func (o optionalString) text() string {
	if !o.Set {
		return ""
	}
	return o.Value
}

// cashFlowRequest is the create/update body.
type cashFlowRequest struct {
	Type        optionalString `json:"type"`
	Source      optionalString `json:"source"`
	Label       optionalString `json:"label"`
	Amount      optionalString `json:"amount"`
	Description optionalString `json:"description"`
}

func (c cashFlowRequest) draft() core.Draft {
	return core.Draft{
		Type:        c.Type.text(),
		Source:      c.Source.text(),
		Label:       c.Label.text(),
		Amount:      c.Amount.text(),
		Description: c.Description.text(),
	}
}

// decodeDraft reads the request body. A body that is missing, oversized or
// not a JSON object yields an empty draft, which validation then rejects
// field by field.
func decodeDraft(r *http.Request) core.Draft {
	if r.Body == nil {
		return core.Draft{}
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil || len(body) > maxBodyBytes {
		return core.Draft{}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return core.Draft{}
	}

	var req cashFlowRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return core.Draft{}
	}
	return req.draft()
}
