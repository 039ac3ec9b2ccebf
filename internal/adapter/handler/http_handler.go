package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rl1809/inventory-records/internal/core/domain"
	"github.com/rl1809/inventory-records/internal/core/service"
)

type HTTPHandler struct {
	records  *service.RecordService
	sessions *service.SessionService
	log      *zap.Logger
}

type RecordHTTPRequest struct {
	Name  string `json:"name"`
	Stock amount `json:"stock"`
	Price amount `json:"price"`
}

// amount accepts both "150000" and 150000 in request bodies.
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amount(n)
	return nil
}

type InsertHTTPResponse struct {
	ID int64 `json:"id"`
}

type DraftHTTPResponse struct {
	SessionID string         `json:"session_id"`
	Draft     domain.Draft   `json:"draft"`
	Record    *domain.Record `json:"record,omitempty"`
	ID        int64          `json:"id,omitempty"`
}

type ErrorHTTPResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(records *service.RecordService, sessions *service.SessionService, log *zap.Logger) *HTTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{records: records, sessions: sessions, log: log}
}

func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1/records", func(r chi.Router) {
		r.Get("/", h.listRecords)
		r.Post("/", h.insertRecord)
		r.Get("/{id}", h.selectRecord)
		r.Put("/{id}", h.updateRecord)
		r.Delete("/{id}", h.deleteRecord)
	})

	r.Route("/api/v1/drafts", func(r chi.Router) {
		r.Post("/", h.openDraft)
		r.Get("/{session}", h.getDraft)
		r.Delete("/{session}", h.closeDraft)
		r.Put("/{session}/fields", h.setDraftFields)
		r.Post("/{session}/select/{id}", h.selectDraftRecord)
		r.Post("/{session}/submit", h.submitDraft)
		r.Post("/{session}/cancel", h.cancelDraft)
		r.Delete("/{session}/records/{id}", h.deleteDraftRecord)
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) listRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *HTTPHandler) insertRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid request body"})
		return
	}

	id, err := h.records.Insert(r.Context(), req.fields())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, InsertHTTPResponse{ID: id})
}

func (h *HTTPHandler) selectRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	record, err := h.records.SelectForEdit(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *HTTPHandler) updateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	var req RecordHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid request body"})
		return
	}

	if err := h.records.Update(r.Context(), id, req.fields()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if err := h.records.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) openDraft(w http.ResponseWriter, r *http.Request) {
	sessionID, draft, err := h.sessions.Open(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DraftHTTPResponse{SessionID: sessionID, Draft: draft})
}

func (h *HTTPHandler) getDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	draft, err := h.sessions.Draft(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftHTTPResponse{SessionID: sessionID, Draft: draft})
}

func (h *HTTPHandler) closeDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), chi.URLParam(r, "session")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) setDraftFields(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	var req RecordHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid request body"})
		return
	}

	draft, err := h.sessions.SetFields(r.Context(), sessionID, req.fields())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftHTTPResponse{SessionID: sessionID, Draft: draft})
}

func (h *HTTPHandler) selectDraftRecord(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	record, draft, err := h.sessions.SelectForEdit(r.Context(), sessionID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftHTTPResponse{SessionID: sessionID, Draft: draft, Record: &record})
}

func (h *HTTPHandler) submitDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	id, draft, err := h.sessions.Submit(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftHTTPResponse{SessionID: sessionID, Draft: draft, ID: id})
}

func (h *HTTPHandler) cancelDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")

	draft, err := h.sessions.Cancel(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftHTTPResponse{SessionID: sessionID, Draft: draft})
}

func (h *HTTPHandler) deleteDraftRecord(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	draft, err := h.sessions.Delete(r.Context(), sessionID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftHTTPResponse{SessionID: sessionID, Draft: draft})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusNotFound
		message = err.Error()
	default:
		h.log.Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, ErrorHTTPResponse{Error: message})
}

func (req RecordHTTPRequest) fields() domain.Fields {
	return domain.Fields{Name: req.Name, Stock: string(req.Stock), Price: string(req.Price)}
}

func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorHTTPResponse{Error: "invalid record id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
