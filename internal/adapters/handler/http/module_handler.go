package http

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vncsmyrnk/vote/internal/core/domain"
	"github.com/vncsmyrnk/vote/internal/core/ports"
)

type ModuleHandler struct {
	service ports.AggregatorService
}

func NewModuleHandler(service ports.AggregatorService) *ModuleHandler {
	return &ModuleHandler{
		service: service,
	}
}

// moduleRequest is either ["name", "uri"] or {"name": ..., "uri": ...}.
type moduleRequest struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

func (m *moduleRequest) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []string
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("expected [name, uri], got %d elements", len(pair))
		}
		m.Name, m.URI = pair[0], pair[1]
		return nil
	}

	type plain moduleRequest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode((*plain)(m))
}

// RegisterModule godoc
// @Summary      Registers a calculation module
// @Description  Replaces any module with the same name.
// @Tags         modules
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Router       /rpc/module/ [post]
func (h *ModuleHandler) RegisterModule(w http.ResponseWriter, r *http.Request) {
	var req moduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.RegisterModule(r.Context(), req.Name, req.URI); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListModules godoc
// @Summary      Lists calculation modules
// @Tags         modules
// @Produce      json
// @Success      200
// @Router       /rpc/modules/ [get]
func (h *ModuleHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.service.Modules(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, modules)
}

// Aggregate godoc
// @Summary      Runs a topic through every module
// @Description  Answers module name to module result. Modules that fail are left out. The ETag identifies the vote data.
// @Tags         modules
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Router       /rpc/aggregate/ [post]
func (h *ModuleHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var topic domain.Topic
	if err := decodeJSON(r, &topic); err != nil {
		writeError(w, r, err)
		return
	}

	results, err := h.service.Aggregate(r.Context(), &topic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", `"`+hex.EncodeToString(topic.VoteData().Hash())+`"`)
	writeJSON(w, http.StatusOK, results)
}

func (h *ModuleHandler) Dummy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.DummyTopic())
}

func (h *ModuleHandler) Hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("world!"))
}
