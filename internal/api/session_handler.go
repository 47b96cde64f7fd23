package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/service/review"
)

// SessionHandler exposes the review session commands.
type SessionHandler struct {
	sessions review.Engine
	clock    func() time.Time
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions review.Engine, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		panic("sessions cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		sessions: sessions,
		clock:    time.Now,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Start handles POST /api/owners/{ownerID}/session requests.
// Starting with nothing to review is not an error: the response reports a
// completed session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	mode, err := review.ParseMode(req.Mode)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.sessions.Start(r.Context(), ownerID, mode, h.clock())
	if errors.Is(err, review.ErrEmptyQueue) {
		log.Debug("nothing to review", slog.Int64("owner_id", ownerID), slog.String("mode", string(mode)))
		resp := viewToResponse(view)
		resp.Message = emptyQueueMessage(mode)
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, viewToResponse(view))
}

func emptyQueueMessage(mode review.Mode) string {
	if mode == review.ModeFullShuffle {
		return "nothing to repeat"
	}
	return "nothing due"
}

// Current handles GET /api/owners/{ownerID}/session requests.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, viewToResponse(h.sessions.Current(r.Context(), ownerID)))
}

// Reveal handles POST /api/owners/{ownerID}/session/reveal requests.
func (h *SessionHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	back, view, err := h.sessions.Reveal(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RevealResponse{Back: back, Session: viewToResponse(view)})
}

// Advance handles POST /api/owners/{ownerID}/session/advance requests.
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	view, err := h.sessions.Advance(r.Context(), ownerID, h.clock())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, viewToResponse(view))
}

// SubmitAnswer handles POST /api/owners/{ownerID}/session/answer requests.
// A wrong answer is a normal outcome reported with correct=false.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.sessions.SubmitAnswer(r.Context(), ownerID, req.Answer, h.clock())
	switch {
	case err == nil:
		shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{Correct: true, Session: viewToResponse(view)})
	case errors.Is(err, review.ErrGradingMismatch):
		shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{Correct: false, Session: viewToResponse(view)})
	default:
		HandleAPIError(w, r, err, "")
	}
}

// Cancel handles DELETE /api/owners/{ownerID}/session requests.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, viewToResponse(h.sessions.Cancel(r.Context(), ownerID)))
}
