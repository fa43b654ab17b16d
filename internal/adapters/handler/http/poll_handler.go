package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type createPollRequest struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

// CreatePoll godoc
// @Summary      Creates a poll
// @Description  Options are trimmed and must be unique and non-empty. Every count starts at zero.
// @Tags         polls
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Router       /api/polls [post]
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.CreatePollInput{
		Title:   req.Title,
		Options: req.Options,
	}

	poll, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, poll)
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.service.ListPolls(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, poll)
}

// DeletePoll godoc
// @Summary      Deletes a poll and its counts
// @Tags         polls
// @Success      204
// @Failure      400
// @Failure      404
// @Router       /api/polls/{id} [delete]
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
