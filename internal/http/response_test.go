package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseBuilder(t *testing.T) {
	tests := []struct {
		name       string
		build      func() *ResponseBuilder
		wantCode   int
		wantStatus string
		wantMsg    string
		wantData   string
	}{
		{
			name:       "success without data",
			build:      func() *ResponseBuilder { return NewResponse(MsgDeleteOK) },
			wantCode:   http.StatusOK,
			wantStatus: StatusSuccess,
			wantMsg:    MsgDeleteOK,
			wantData:   "null",
		},
		{
			name: "success with data",
			build: func() *ResponseBuilder {
				return NewResponse(MsgCreateOK).Data(map[string]string{"cashFlowId": "abc"})
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusSuccess,
			wantMsg:    MsgCreateOK,
			wantData:   `{"cashFlowId":"abc"}`,
		},
		{
			name:       "validation failure",
			build:      func() *ResponseBuilder { return ValidationFailed(map[string]string{"type": "Is required"}) },
			wantCode:   http.StatusBadRequest,
			wantStatus: StatusFail,
			wantMsg:    MsgInvalidData,
			wantData:   `{"type":"Is required"}`,
		},
		{
			name:       "not found",
			build:      NotFound,
			wantCode:   http.StatusNotFound,
			wantStatus: StatusFail,
			wantMsg:    MsgNotFound,
			wantData:   "null",
		},
		{
			name:       "internal error",
			build:      InternalServerError,
			wantCode:   http.StatusInternalServerError,
			wantStatus: StatusFail,
			wantMsg:    MsgInternalError,
			wantData:   "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.build().Write(rr)

			if rr.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rr.Code, tt.wantCode)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
			var env envelope
			if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
				t.Fatal(err)
			}
			if env.Status != tt.wantStatus || env.Message != tt.wantMsg || string(env.Data) != tt.wantData {
				t.Errorf("envelope = {%s %s %s}", env.Status, env.Message, env.Data)
			}
		})
	}
}

func TestResponseBuilder_Header(t *testing.T) {
	rr := httptest.NewRecorder()
	FailResponse(http.StatusTooManyRequests, MsgRateLimited).Header("Retry-After", "30").Write(rr)

	if rr.Header().Get("Retry-After") != "30" {
		t.Errorf("Retry-After = %q", rr.Header().Get("Retry-After"))
	}
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("code = %d", rr.Code)
	}
}
