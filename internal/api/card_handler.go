package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/service"
)

// CardHandler handles vocabulary management requests.
type CardHandler struct {
	cards  service.CardService
	clock  func() time.Time
	logger *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cards service.CardService, logger *slog.Logger) *CardHandler {
	if cards == nil {
		panic("cards cannot be nil for CardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardHandler{
		cards:  cards,
		clock:  time.Now,
		logger: logger.With(slog.String("component", "card_handler")),
	}
}

// Onboard handles POST /api/owners/{ownerID}/start requests.
// It seeds the welcome card for owners without cards.
func (h *CardHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	count, err := h.cards.Onboard(r.Context(), ownerID, h.clock())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, OnboardResponse{OwnerID: ownerID, CardCount: count})
}

// AddWord handles POST /api/owners/{ownerID}/cards requests.
func (h *CardHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	var req AddWordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.AddWord(r.Context(), ownerID, req.Front, req.Back, h.clock())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("word added via API", slog.Int64("owner_id", ownerID), slog.Int64("card_id", card.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// SetLearned handles PATCH /api/owners/{ownerID}/cards/{cardID} requests.
func (h *CardHandler) SetLearned(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	cardID, err := getPathID(r, "cardID")
	if err != nil {
		HandleAPIError(w, r, err, "Invalid card ID")
		return
	}

	var req SetLearnedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.SetLearned(r.Context(), ownerID, cardID, *req.Learned)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GetStats handles GET /api/owners/{ownerID}/stats requests.
func (h *CardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromPath(w, r)
	if !ok {
		return
	}

	stats, err := h.cards.Stats(r.Context(), ownerID, h.clock())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
