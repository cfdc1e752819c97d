package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-audit/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-audit/internal/audit"
	"github.com/rocketscienceinc/tictactoe-audit/internal/usecase"
)

const maxBodyBytes = 1 << 10

type gameSession interface {
	State() usecase.State
	HandleCellClick(ctx context.Context, index int) (usecase.State, error)
	RejectMalformedCell(ctx context.Context, raw string) (usecase.State, error)
	Reset(ctx context.Context) usecase.State
	AuditLog(ctx context.Context) ([]audit.Event, error)
}

type handlers struct {
	logger  *slog.Logger
	session gameSession
}

func newHandlers(logger *slog.Logger, session gameSession) *handlers {
	return &handlers{
		logger:  logger.With("component", "handlers"),
		session: session,
	}
}

func (that *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}

func (that *handlers) index(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "index")

	events, err := that.session.AuditLog(r.Context())
	if err != nil {
		// the page still renders without its audit panel
		log.Error("failed to load audit log", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = renderPage(w, newPageData(that.session.State(), events)); err != nil {
		log.Error("failed to render page", "error", err)
	}
}

func (that *handlers) move(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	raw := ""
	if err := r.ParseForm(); err == nil {
		raw = r.PostForm.Get("cell")
	}

	// rejections are shown by the error banner on the next render
	_, _ = that.play(r.Context(), raw)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *handlers) reset(w http.ResponseWriter, r *http.Request) {
	that.session.Reset(r.Context())

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *handlers) apiState(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.session.State())
}

func (that *handlers) apiMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cell json.RawMessage `json:"cell"`
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	raw := string(body)
	if err == nil && json.Unmarshal(body, &req) == nil {
		raw = string(req.Cell)
	}

	state, err := that.play(r.Context(), raw)
	that.writeJSON(w, statusFor(err), state)
}

func (that *handlers) apiReset(w http.ResponseWriter, r *http.Request) {
	that.writeJSON(w, http.StatusOK, that.session.Reset(r.Context()))
}

func (that *handlers) apiAudit(w http.ResponseWriter, r *http.Request) {
	events, err := that.session.AuditLog(r.Context())
	if err != nil {
		that.logger.Error("failed to load audit log", "method", "apiAudit", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": apperror.Message(err)})
		return
	}

	if events == nil {
		events = []audit.Event{}
	}

	that.writeJSON(w, http.StatusOK, events)
}

// play turns raw cell input into a click; anything that is not an integer is out of range.
func (that *handlers) play(ctx context.Context, raw string) (usecase.State, error) {
	raw = strings.TrimSpace(raw)

	index, err := strconv.Atoi(raw)
	if err != nil {
		return that.session.RejectMalformedCell(ctx, raw)
	}

	return that.session.HandleCellClick(ctx, index)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperror.ErrUnexpectedFault):
		return http.StatusInternalServerError
	case errors.Is(err, apperror.ErrGameAlreadyOver):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
