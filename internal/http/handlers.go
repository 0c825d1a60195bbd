package http

import (
	"errors"
	"net/http"

	"cashflow/internal/core"
	"cashflow/internal/filter"
	applog "cashflow/internal/log"
)

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.Reseed(r.Context()); err != nil {
		s.internalError(w, r, "Failed to reseed cash flows", err, applog.OpReseed)
		return
	}
	NewResponse(MsgSetupOK).Write(w)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q, ok := s.parseQuery(w, r)
	if !ok {
		return
	}

	list, err := s.svc.List(r.Context(), q)
	if err != nil {
		s.internalError(w, r, "Failed to list cash flows", err, applog.OpList)
		return
	}
	NewResponse(MsgListOK).Data(map[string]any{
		"cashFlows": list,
		"total":     len(list),
	}).Write(w)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.Create(r.Context(), decodeDraft(r))
	if err != nil {
		s.writeError(w, r, "Failed to create cash flow", err, applog.OpCreate)
		return
	}
	NewResponse(MsgCreateOK).Data(map[string]string{"cashFlowId": id}).Write(w)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	cf, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "Failed to get cash flow", err, applog.OpRead)
		return
	}
	NewResponse(MsgGetOK).Data(map[string]core.CashFlow{"cashFlow": cf}).Write(w)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Update(r.Context(), r.PathValue("id"), decodeDraft(r)); err != nil {
		s.writeError(w, r, "Failed to update cash flow", err, applog.OpUpdate)
		return
	}
	NewResponse(MsgUpdateOK).Write(w)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, "Failed to delete cash flow", err, applog.OpDelete)
		return
	}
	NewResponse(MsgDeleteOK).Write(w)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.svc.Types(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to list types", err, applog.OpList)
		return
	}
	NewResponse(MsgTypesOK).Data(map[string][]string{"types": types}).Write(w)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.svc.Sources(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to list sources", err, applog.OpList)
		return
	}
	NewResponse(MsgSourcesOK).Data(map[string][]string{"sources": sources}).Write(w)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.svc.Labels(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to list labels", err, applog.OpList)
		return
	}
	NewResponse(MsgLabelsOK).Data(map[string][]string{"labels": labels}).Write(w)
}

// parseQuery writes a 400 and returns false when the filter parameters
// cannot be used.
func (s *Server) parseQuery(w http.ResponseWriter, r *http.Request) (filter.Query, bool) {
	q, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, "Invalid filter", err, applog.OpValidate)
		return filter.Query{}, false
	}
	return q, true
}

// writeError maps domain errors to envelopes: validation to 400, missing
// records to 404 and anything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, msg string, err error, op string) {
	var verr core.ValidationError
	switch {
	case errors.As(err, &verr):
		applog.FromContext(r.Context()).DebugContext(r.Context(), msg,
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldOperation, op)
		ValidationFailed(verr).Write(w)
	case errors.Is(err, core.ErrNotFound):
		applog.FromContext(r.Context()).DebugContext(r.Context(), msg,
			applog.FieldCashFlowID, r.PathValue("id"),
			applog.FieldErrorType, applog.ErrorTypeNotFound,
			applog.FieldOperation, op)
		NotFound().Write(w)
	default:
		s.internalError(w, r, msg, err, op)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error, op string) {
	applog.LogError(r.Context(), msg, err, op,
		applog.NewFields().WithComponent(applog.ComponentHTTP))
	InternalServerError().Write(w)
}
