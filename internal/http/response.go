package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Client-facing messages.
const (
	MsgSetupOK          = "Berhasil memuat data awal"
	MsgListOK           = "Berhasil mengambil daftar catatan keuangan"
	MsgCreateOK         = "Berhasil menambahkan data catatan keuangan"
	MsgGetOK            = "Berhasil mengambil data catatan keuangan"
	MsgUpdateOK         = "Berhasil mengubah data catatan keuangan"
	MsgDeleteOK         = "Berhasil menghapus data catatan keuangan"
	MsgTypesOK          = "Berhasil mengambil daftar tipe catatan keuangan"
	MsgSourcesOK        = "Berhasil mengambil daftar source catatan keuangan"
	MsgLabelsOK         = "Berhasil mengambil daftar label catatan keuangan"
	MsgSheetsExportOK   = "Berhasil mengekspor data catatan keuangan"
	MsgInvalidData      = "Data yang dikirimkan tidak valid!"
	MsgNotFound         = "Data catatan keuangan tidak tersedia!"
	MsgInternalError    = "Terjadi kesalahan pada server"
	MsgRateLimited      = "Terlalu banyak permintaan, coba lagi nanti"
	MsgUnsupportedType  = "Format ekspor tidak didukung"
	MsgMethodNotAllowed = "Metode tidak diizinkan untuk resource ini"
)

// Response is the JSON envelope wrapping every API reply.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ResponseBuilder assembles an envelope and writes it once.
type ResponseBuilder struct {
	statusCode int
	resp       Response
	headers    map[string]string
}

// NewResponse starts a 200 success envelope.
func NewResponse(message string) *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		resp:       Response{Status: StatusSuccess, Message: message},
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status; codes of 400 and above mark the envelope failed.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	if code >= http.StatusBadRequest {
		b.resp.Status = StatusFail
	}
	return b
}

func (b *ResponseBuilder) Data(data any) *ResponseBuilder {
	b.resp.Data = data
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.resp); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// FailResponse builds a failed envelope with the given status.
func FailResponse(code int, message string) *ResponseBuilder {
	return NewResponse(message).Status(code)
}

// ValidationFailed reports per-field problems with a 400.
func ValidationFailed(fields map[string]string) *ResponseBuilder {
	return FailResponse(http.StatusBadRequest, MsgInvalidData).Data(fields)
}

func NotFound() *ResponseBuilder {
	return FailResponse(http.StatusNotFound, MsgNotFound)
}

func InternalServerError() *ResponseBuilder {
	return FailResponse(http.StatusInternalServerError, MsgInternalError)
}
