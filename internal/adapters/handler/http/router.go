package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vncsmyrnk/vote/internal/core/domain"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

func NewHandler(pollHandler *PollHandler, voteHandler *VoteHandler, resultsHandler *ResultsHandler, rpcHandler *RPCHandler, moduleHandler *ModuleHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(limitBody(cfg.MaxBodyBytes))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.Kind(domain.ErrBadRequest), Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: domain.Kind(domain.ErrBadRequest), Message: "method not allowed"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Post("/", pollHandler.CreatePoll)
			r.Get("/", pollHandler.ListPolls)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", pollHandler.GetPoll)
				r.Delete("/", pollHandler.DeletePoll)
				r.Post("/votes", voteHandler.VoteOnPoll)
				r.Get("/results", resultsHandler.GetResults)
			})
		})

		r.Get("/results", resultsHandler.ListResults)
	})

	r.Route("/rpc", func(r chi.Router) {
		r.Method(http.MethodPost, "/", rpcHandler)
		r.Post("/aggregate/", moduleHandler.Aggregate)
		r.Post("/module/", moduleHandler.RegisterModule)
		r.Get("/modules/", moduleHandler.ListModules)
		r.Get("/dummy/", moduleHandler.Dummy)
		r.Get("/hello/", moduleHandler.Hello)
	})

	return r
}
