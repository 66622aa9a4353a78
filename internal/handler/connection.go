package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/davimurta/aurora-pairing-server/internal/audit"
	apperrors "github.com/davimurta/aurora-pairing-server/internal/errors"
	"github.com/davimurta/aurora-pairing-server/internal/httputil"
	"github.com/davimurta/aurora-pairing-server/internal/model"
	"github.com/davimurta/aurora-pairing-server/internal/service"
)

// EventSink receives pairing results for fan-out to subscribers. The handler
// hands results over after the service has committed them; delivery cannot
// affect the response.
type EventSink interface {
	ConnectionCreated(ctx context.Context, conn *model.Connection)
	ConnectionActivated(ctx context.Context, conn *model.Connection)
}

type ConnectionHandler struct {
	pairingService *service.PairingService
	events         EventSink
	writeGuard     func(http.Handler) http.Handler
	verbose        bool
}

// NewConnectionHandler wires the pairing service to the HTTP boundary.
// writeGuard (rate limiting) wraps only the mutating endpoints; verbose
// enables error details in responses outside production.
func NewConnectionHandler(pairingService *service.PairingService, events EventSink, writeGuard func(http.Handler) http.Handler, verbose bool) *ConnectionHandler {
	return &ConnectionHandler{
		pairingService: pairingService,
		events:         events,
		writeGuard:     writeGuard,
		verbose:        verbose,
	}
}

func (h *ConnectionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		if h.writeGuard != nil {
			r.Use(h.writeGuard)
		}
		r.Post("/generate", h.GenerateCode)
		r.Post("/connect", h.Activate)
	})

	r.Get("/psychologist/{psychologistId}/patients", h.ListPatients)
	r.Get("/patient/{patientId}/psychologist", h.GetPsychologist)

	return r
}

type generateRequest struct {
	PsychologistID   string `json:"psychologistId"`
	PsychologistName string `json:"psychologistName"`
}

type connectRequest struct {
	Code         string `json:"code"`
	PatientID    string `json:"patientId"`
	PatientName  string `json:"patientName"`
	PatientEmail string `json:"patientEmail"`
}

// POST /connections/generate
func (h *ConnectionHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"), h.verbose)
		return
	}

	conn, err := h.pairingService.GenerateConnectionCode(r.Context(), req.PsychologistID, req.PsychologistName)
	if err != nil {
		log.Error().Err(err).Str("psychologistId", req.PsychologistID).Msg("generate connection code failed")
		httputil.WriteError(w, err, h.verbose)
		return
	}

	audit.Log(audit.Event{
		Type:           audit.EventCodeGenerate,
		PsychologistID: conn.PsychologistID,
		IP:             r.RemoteAddr,
	})
	if h.events != nil {
		h.events.ConnectionCreated(r.Context(), conn)
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"connection": conn,
		"code":       conn.Code,
	})
}

// POST /connections/connect
func (h *ConnectionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"), h.verbose)
		return
	}

	conn, err := h.pairingService.ActivateConnection(r.Context(), req.Code, req.PatientID, req.PatientName, req.PatientEmail)
	if err != nil {
		log.Error().Err(err).Str("patientId", req.PatientID).Msg("activate connection failed")
		audit.Log(audit.Event{
			Type:      audit.EventActivateFailure,
			PatientID: req.PatientID,
			IP:        r.RemoteAddr,
			Details:   map[string]interface{}{"code": string(apperrors.GetCode(err))},
		})
		httputil.WriteError(w, err, h.verbose)
		return
	}

	audit.Log(audit.Event{
		Type:           audit.EventCodeActivate,
		PsychologistID: conn.PsychologistID,
		PatientID:      req.PatientID,
		IP:             r.RemoteAddr,
	})
	if h.events != nil {
		h.events.ConnectionActivated(r.Context(), conn)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"connection": conn,
	})
}

// GET /connections/psychologist/{psychologistId}/patients
func (h *ConnectionHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	psychologistID := chi.URLParam(r, "psychologistId")

	patients, err := h.pairingService.ListPatients(r.Context(), psychologistID)
	if err != nil {
		log.Error().Err(err).Str("psychologistId", psychologistID).Msg("list patients failed")
		httputil.WriteError(w, err, h.verbose)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"patients": patients,
		"count":    len(patients),
	})
}

// GET /connections/patient/{patientId}/psychologist
func (h *ConnectionHandler) GetPsychologist(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientId")

	psychologist, err := h.pairingService.GetPsychologist(r.Context(), patientID)
	if err != nil {
		if apperrors.GetCode(err) != apperrors.ErrCodeNotFound {
			log.Error().Err(err).Str("patientId", patientID).Msg("get psychologist failed")
		}
		httputil.WriteError(w, err, h.verbose)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"psychologist": psychologist,
	})
}
