package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	gamehandler "github.com/zhouzirui/twenty-questions/backend/internal/handler/game"
	middlewarePkg "github.com/zhouzirui/twenty-questions/backend/internal/middleware"
	"github.com/zhouzirui/twenty-questions/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the game service. games may be nil when the
// questioner model is not configured; game routes then answer 503.
// allowedOrigins feeds the CORS policy, nil allows any origin.
func NewRouter(games gamehandler.GameService, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ai":     games != nil,
		})
	})

	r.Route("/api", func(api chi.Router) {
		if games == nil {
			unavailable := func(w http.ResponseWriter, r *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "questioner unavailable: configure the Ark model credentials")
			}
			api.HandleFunc("/games", unavailable)
			api.HandleFunc("/games/*", unavailable)
			return
		}

		gamehandler.New(games).RegisterRoutes(api)
	})

	return r
}
