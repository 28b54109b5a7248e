// Package httpapi serves the proposal registry and the wallet pass-through
// over HTTP for browser or other front ends.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/idilsaglam/catbus/internal/metrics"
	"github.com/idilsaglam/catbus/internal/model"
	"github.com/idilsaglam/catbus/internal/registry"
	"github.com/idilsaglam/catbus/internal/wallet"
)

// maxBodySize limits request bodies.
const maxBodySize = 1 << 20 // 1 MB

// Handler provides the REST endpoints.
type Handler struct {
	registry  *registry.Registry
	connector wallet.Connector
	session   *wallet.Session
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewHandler wires the endpoints to their collaborators. m and logger may be nil.
func NewHandler(reg *registry.Registry, conn wallet.Connector, session *wallet.Session, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry:  reg,
		connector: conn,
		session:   session,
		metrics:   m,
		logger:    logger,
	}
}

// RegisterHTTPHandlers registers the API endpoints on mux.
func (h *Handler) RegisterHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /proposals", h.handleList)
	mux.HandleFunc("GET /proposals/{id}", h.handleGet)
	mux.HandleFunc("POST /proposals", h.handleSubmit)
	mux.HandleFunc("POST /proposals/{id}/upvote", h.handleUpvote)

	mux.HandleFunc("GET /wallet", h.handleSession)
	mux.HandleFunc("POST /wallet/connect", h.handleConnect)
	mux.HandleFunc("POST /orders", h.handleOrder)

	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

// ListProposalsResponse is the response for GET /proposals.
type ListProposalsResponse struct {
	Proposals  []model.Proposal `json:"proposals"`
	Total      int              `json:"total"`
	TotalVotes int              `json:"totalVotes"`
}

// SubmitRequest is the request body for POST /proposals.
type SubmitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	proposals := h.registry.List()
	votes := 0
	for _, p := range proposals {
		votes += p.Votes
	}
	h.writeJSON(w, http.StatusOK, ListProposalsResponse{
		Proposals:  proposals,
		Total:      len(proposals),
		TotalVotes: votes,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.registry.Get(id)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.registry.Submit(req.Name, req.Description)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.logger.Info("proposal submitted", zap.Int("id", p.ID), zap.String("name", p.Name))
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpvote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.registry.Upvote(id)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.logger.Debug("proposal upvoted", zap.Int("id", p.ID), zap.Int("votes", p.Votes))
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	info, ok := h.session.Info()
	if !ok {
		h.writeError(w, http.StatusNotFound, wallet.ErrNotConnected.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.session.Connect(r.Context(), h.connector)
	if h.metrics != nil {
		h.metrics.ObserveConnect(err)
	}
	if err != nil {
		h.writeWalletError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, addrs)
}

func (h *Handler) handleOrder(w http.ResponseWriter, r *http.Request) {
	var form wallet.OrderForm
	if !h.decode(w, r, &form) {
		return
	}
	rec, err := h.session.Submit(r.Context(), h.connector, form)
	if h.metrics != nil && !isFormError(err) && !errors.Is(err, wallet.ErrNotConnected) {
		kind, _ := wallet.ParseAction(form.Action)
		h.metrics.ObserveOrder(kind, err)
	}
	if err != nil {
		h.writeWalletError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid proposal id")
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) writeRegistryError(w http.ResponseWriter, err error) {
	var ve *registry.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, registry.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("registry failure", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeWalletError(w http.ResponseWriter, err error) {
	var fe *wallet.FormError
	switch {
	case errors.As(err, &fe):
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fe.Error(), Field: fe.Field})
	case errors.Is(err, wallet.ErrNotConnected), errors.Is(err, wallet.ErrRejected):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, http.StatusGatewayTimeout, "wallet did not answer in time")
	default:
		h.logger.Warn("wallet call failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, err.Error())
	}
}

func isFormError(err error) bool {
	var fe *wallet.FormError
	return errors.As(err, &fe)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}
