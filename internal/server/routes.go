package server

import (
	"compress/gzip"
	"net/http"

	"github.com/avilov/marketpay/internal/handler"
	"github.com/avilov/marketpay/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes(handler *handler.Handler) {
	s.setupMiddleware()

	s.mux.Route("/", func(r chi.Router) {
		r.Route("/oauth", func(r chi.Router) {
			r.Get("/start", http.HandlerFunc(handler.OAuthStart))
			r.Get("/callback", http.HandlerFunc(handler.OAuthCallback))
		})

		r.Post("/preference", http.HandlerFunc(handler.CreatePreference))
		r.Post("/webhook", http.HandlerFunc(handler.Webhook))

		r.Get("/verify/{paymentID}", http.HandlerFunc(handler.Verify))
		r.Get("/verify/", http.HandlerFunc(handler.Verify))

		r.Get("/sellers", http.HandlerFunc(handler.GetSellers))
		r.Get("/orders", http.HandlerFunc(handler.GetOrders))
	})
}

func (s *Server) setupMiddleware() {
	s.mux.Use(
		middleware.Logger,
		chiMiddleware.Compress(gzip.BestCompression, "application/json", "text/html", "text/plain"),
	)
}
