package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/mustafizur/chat/backend/internal/handler/chat"
	"github.com/mustafizur/chat/backend/internal/handler/contact"
	"github.com/mustafizur/chat/backend/internal/handler/stream"
	"github.com/mustafizur/chat/backend/internal/handler/ws"
	middlewarePkg "github.com/mustafizur/chat/backend/internal/middleware"
	chatService "github.com/mustafizur/chat/backend/internal/service/chat"
	"github.com/mustafizur/chat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. gatherer backs /metrics;
// limiter may be nil to disable send throttling.
func NewRouter(chatSvc *chatService.Service, limiter *rate.Limiter, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	contactHandler := contact.New(chatSvc)
	chatHandler := chat.New(chatSvc, limiter)
	streamHandler := stream.New(chatSvc)
	wsHandler := ws.NewWebSocketHandler(chatSvc)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		contactHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)
	})

	return r
}
