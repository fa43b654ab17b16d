package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	Option string `json:"option"`
}

type voteResponse struct {
	PollID string `json:"poll_id"`
	Option string `json:"option"`
	Votes  int64  `json:"votes"`
}

// VoteOnPoll godoc
// @Summary      Casts one vote
// @Description  Returns the option's count including this vote.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Failure      404
// @Router       /api/polls/{id}/votes [post]
func (h *VoteHandler) VoteOnPoll(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	input := ports.VoteInput{
		PollID: chi.URLParam(r, "id"),
		Option: req.Option,
	}

	count, err := h.service.Vote(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, voteResponse{PollID: input.PollID, Option: strings.TrimSpace(req.Option), Votes: count})
}
