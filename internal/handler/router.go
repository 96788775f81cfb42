package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tryout-service/internal/util"
)

// NewRouter wires the Chi router with the middleware stack and all routes.
func NewRouter(participants *ParticipantHandler, payments *PaymentHandler, admins *AdminHandler, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggerMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// The registration frontend is served from arbitrary origins; the API
	// answers preflights with an empty 200.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","service":"tryout-service"}`))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/send-otp", participants.SendOTP)
		r.Post("/register-participant", participants.Register)
		r.Post("/login-participant", participants.Login)
		r.Post("/send-password", participants.SendPassword)
		r.Get("/slots", participants.Slots)

		r.Post("/payment-proofs", payments.Upload)
		r.Get("/payment-proofs/status", payments.Status)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", admins.Login)

			r.Group(func(r chi.Router) {
				r.Use(admins.RequireAdmin)
				r.Post("/logout", admins.Logout)
				r.Get("/payment-proofs", payments.List)
				r.Post("/payment-proofs/{proofID}/review", payments.Review)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, fail("Endpoint tidak ditemukan."))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, fail("Metode tidak diizinkan."))
	})

	return router
}

// LoggerMiddleware logs every request through the zap logger.
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("HTTP request",
					util.String("method", r.Method),
					util.String("path", r.URL.Path),
					util.String("remote_addr", r.RemoteAddr),
					util.Int("status", ww.Status()),
					util.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
