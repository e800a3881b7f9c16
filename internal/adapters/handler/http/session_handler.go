package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/memebattle/internal/core/domain"
	"github.com/vncsmyrnk/memebattle/internal/core/ports"
)

type SessionHandler struct {
	service ports.SessionService
}

func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{
		service: service,
	}
}

type createSessionRequest struct {
	Mode domain.Mode `json:"mode"`
}

// voteRequest carries either an explicit choice or the raw swipe distance.
type voteRequest struct {
	MemeID int           `json:"meme_id"`
	Choice domain.Choice `json:"choice"`
	Swipe  *float64      `json:"swipe"`
}

func (h *SessionHandler) ListMemes(w http.ResponseWriter, r *http.Request) {
	deck, err := h.service.Deck(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.CreateSessionInput{
		Mode:     req.Mode,
		PlayerID: playerRef(r.Context()),
	}
	if input.Mode == domain.ModeDemo {
		// Demo runs are anonymous even for connected players.
		input.PlayerID = nil
	}

	view, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Get(r.Context(), id, playerRef(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Start(r.Context(), id, playerRef(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *SessionHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	choice := req.Choice
	if req.Swipe != nil {
		c, committed := domain.ChoiceFromSwipe(*req.Swipe)
		if !committed {
			// A short swipe snaps the card back and casts nothing.
			view, err := h.service.Get(r.Context(), id, playerRef(r.Context()))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, view)
			return
		}
		choice = c
	}

	view, err := h.service.Vote(r.Context(), ports.SessionVoteInput{
		SessionID: id,
		PlayerID:  playerRef(r.Context()),
		MemeID:    req.MemeID,
		Choice:    choice,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Reset(r.Context(), id, playerRef(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DownloadReport serves the ended session's results as a JSON attachment.
func (h *SessionHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	report, err := h.service.Report(r.Context(), id, playerRef(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFilename(report)))
	writeJSON(w, http.StatusOK, report)
}

func ReportFilename(report *domain.SessionReport) string {
	name := "meme-voting-results-" + report.EndedAt.UTC().Format("2006-01-02") + ".json"
	if report.Mode == domain.ModeDemo {
		return "demo-" + name
	}
	return name
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
