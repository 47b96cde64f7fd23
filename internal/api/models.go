package api

import (
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/service/review"
)

// AddWordRequest defines the payload for adding a word.
type AddWordRequest struct {
	Front string `json:"front" validate:"required,max=200"`
	Back  string `json:"back"  validate:"required,max=200"`
}

// SetLearnedRequest defines the payload for updating the learned flag.
type SetLearnedRequest struct {
	Learned *bool `json:"learned" validate:"required"`
}

// StartSessionRequest defines the payload for starting a review session.
type StartSessionRequest struct {
	Mode string `json:"mode" validate:"required,oneof=due shuffle"`
}

// AnswerRequest defines the payload for submitting a typed answer.
// An empty answer is graded like any other and simply does not match.
type AnswerRequest struct {
	Answer string `json:"answer" validate:"max=200"`
}

// CardResponse represents a card in API responses.
type CardResponse struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	Front          string    `json:"front"`
	Back           string    `json:"back"`
	Learned        bool      `json:"learned"`
	NextReview     time.Time `json:"next_review"`
	RepetitionStep int32     `json:"repetition_step"`
}

// OnboardResponse reports the owner's card count after onboarding.
type OnboardResponse struct {
	OwnerID   int64 `json:"owner_id"`
	CardCount int   `json:"card_count"`
}

// SessionCard is the card being presented. Back is only set once the card
// has been revealed or answered wrongly.
type SessionCard struct {
	ID    int64  `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back,omitempty"`
}

// SessionResponse describes an owner's review session.
type SessionResponse struct {
	State    review.State `json:"state"`
	Mode     review.Mode  `json:"mode,omitempty"`
	Position int          `json:"position"`
	Total    int          `json:"total"`
	Card     *SessionCard `json:"card,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// RevealResponse carries the revealed back text and the session.
type RevealResponse struct {
	Back    string          `json:"back"`
	Session SessionResponse `json:"session"`
}

// AnswerResponse reports whether an answer was correct and the session
// after grading.
type AnswerResponse struct {
	Correct bool            `json:"correct"`
	Session SessionResponse `json:"session"`
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:             card.ID,
		OwnerID:        card.OwnerID,
		Front:          card.Front,
		Back:           card.Back,
		Learned:        card.Learned,
		NextReview:     card.NextReview,
		RepetitionStep: card.RepetitionStep,
	}
}

func viewToResponse(view review.View) SessionResponse {
	resp := SessionResponse{
		State:    view.State,
		Mode:     view.Mode,
		Position: view.Position,
		Total:    view.Total,
	}
	if view.Card != nil {
		resp.Card = &SessionCard{ID: view.Card.ID, Front: view.Card.Front}
		if view.Revealed {
			resp.Card.Back = view.Card.Back
		}
	}
	return resp
}
