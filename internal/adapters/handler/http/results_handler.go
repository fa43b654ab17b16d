package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type ResultsHandler struct {
	service ports.SummaryService
}

func NewResultsHandler(service ports.SummaryService) *ResultsHandler {
	return &ResultsHandler{
		service: service,
	}
}

// GetResults godoc
// @Summary      Returns a poll's tally
// @Description  Counts, percentages and the leading options of a single poll.
// @Tags         results
// @Produce      json
// @Success      200
// @Failure      400
// @Failure      404
// @Router       /api/polls/{id}/results [get]
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	tally, err := h.service.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tally)
}

func (h *ResultsHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	tallies, err := h.service.SummarizeAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tallies)
}
