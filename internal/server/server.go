// Package server exposes the optimiser over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/compare"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/metrics"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/projection"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/roster"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/state"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/output"
	"go.uber.org/zap"
)

// StateResetNotice is reported when unreadable saved state was replaced by
// first-round defaults.
const StateResetNotice = "team state reset to first-round defaults"

// ProjectionSource supplies the default projection table.
type ProjectionSource interface {
	Load(ctx context.Context) ([]roster.ProjectionEntry, error)
}

// Dependencies are the collaborators the handler serves.
type Dependencies struct {
	Engine      *roster.Engine
	Comparer    *compare.Runner
	Ledger      *roster.LedgerUpdater
	Repository  roster.StateRepository
	Projections ProjectionSource
	Metrics     *metrics.Metrics
}

type handler struct {
	logger      *zap.Logger
	deps        Dependencies
	maxBodySize int64
	version     string
	// ledgerMu serializes load-solve-save sequences.
	ledgerMu sync.Mutex
}

// NewHandler constructs the HTTP handler that serves the solve API.
func NewHandler(logger *zap.Logger, deps Dependencies, maxBodySize int64, version string) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Engine == nil || deps.Comparer == nil || deps.Repository == nil {
		return nil, errors.New("server requires an engine, a comparer and a state repository")
	}
	if deps.Ledger == nil {
		deps.Ledger = roster.NewLedgerUpdater(logger, deps.Repository)
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, deps: deps, maxBodySize: maxBodySize, version: trimmedVersion}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/solve", h.handleSolve)
	mux.HandleFunc("/api/compare", h.handleCompare)
	mux.HandleFunc("/api/state", h.handleState)
	mux.HandleFunc("/api/version", h.handleVersion)

	if deps.Metrics == nil {
		return mux, nil
	}
	mux.Handle("/metrics", deps.Metrics.Handler())
	return deps.Metrics.InstrumentHandler(mux), nil
}

type solveRequest struct {
	Mode        string              `json:"mode"`
	Save        bool                `json:"save"`
	Projections []projection.Record `json:"projections,omitempty"`
}

type solveResponse struct {
	Result   *roster.Result    `json:"result"`
	Saved    bool              `json:"saved"`
	State    *roster.TeamState `json:"state,omitempty"`
	Notice   string            `json:"notice,omitempty"`
	Duration string            `json:"duration"`
}

type compareRequest struct {
	Projections []projection.Record `json:"projections,omitempty"`
}

type compareResponse struct {
	output.ComparisonView
	Notice string `json:"notice,omitempty"`
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolve"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	var req solveRequest
	if status, err := h.decode(w, r, &req); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	mode, err := roster.ParseMode(req.Mode)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	entries, err := h.projections(r.Context(), req.Projections)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if req.Save {
		h.ledgerMu.Lock()
		defer h.ledgerMu.Unlock()
	}

	prev, notice, err := h.loadState(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	result, err := h.deps.Engine.Solve(r.Context(), mode, entries, prev)
	if err != nil {
		h.respondErrorWithOp(w, solveStatus(err), err.Error(), op)
		return
	}

	resp := solveResponse{Result: result, Notice: notice}
	if req.Save {
		saved, err := h.deps.Ledger.Commit(r.Context(), result)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
			return
		}
		resp.Saved = true
		resp.State = &saved
	}
	resp.Duration = time.Since(start).String()
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req compareRequest
	if status, err := h.decode(w, r, &req); err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	entries, err := h.projections(r.Context(), req.Projections)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	prev, notice, err := h.loadState(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	report, err := h.deps.Comparer.Run(r.Context(), entries, prev)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, compareResponse{ComparisonView: output.NewComparisonView(report), Notice: notice})
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	prev, notice, err := h.loadState(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleState")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":      prev,
		"firstRound": prev.IsFirstRound(),
		"notice":     notice,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decode reads a JSON body within the size limit. An empty body leaves dst
// untouched.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return 0, nil
		case errors.As(err, &tooLarge):
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		default:
			return http.StatusBadRequest, fmt.Errorf("failed to decode request: %v", err)
		}
	}
	return 0, nil
}

func (h *handler) projections(ctx context.Context, records []projection.Record) ([]roster.ProjectionEntry, error) {
	if len(records) > 0 {
		return projection.FromRecords(records)
	}
	if h.deps.Projections == nil {
		return nil, errors.New("no projections supplied and no projection file configured")
	}
	return h.deps.Projections.Load(ctx)
}

// loadState reads the team state, downgrading a corrupt store to first-round
// defaults with a notice.
func (h *handler) loadState(ctx context.Context) (roster.TeamState, string, error) {
	prev, err := h.deps.Repository.Load(ctx)
	if err == nil {
		return prev, "", nil
	}
	if errors.Is(err, state.ErrStateCorrupt) {
		h.logger.Warn(StateResetNotice,
			zap.String("op", "server.loadState"),
			zap.Error(err),
		)
		return prev, StateResetNotice, nil
	}
	return roster.TeamState{}, "", fmt.Errorf("load team state: %w", err)
}

func solveStatus(err error) int {
	switch {
	case errors.Is(err, roster.ErrInvalidProjections):
		return http.StatusBadRequest
	case errors.Is(err, roster.ErrInfeasible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
