package api

import (
	"net/http"
	"time"

	"algoarena/internal/ai"
	"algoarena/internal/api/handler"
	"algoarena/internal/app/service"
	"algoarena/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	problemService *service.ProblemService,
	submissionService *service.SubmissionService,
	userService *service.UserService,
	aiRouter *ai.Router,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the Bearer token if present, puts claims in context. Routes
	// that require auth additionally run middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Problem routes (list/detail public, create admin)
		problemHandler := handler.NewProblemHandler(problemService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		// Submission routes (authenticated)
		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		// User routes (profile authenticated, leaderboard public)
		userHandler := handler.NewUserHandler(userService)
		v1.Route("/users", userHandler.RegisterRoutes)

		// AI chat routes (authenticated)
		chatHandler := handler.NewChatHandler(aiRouter)
		v1.Route("/chat", chatHandler.RegisterRoutes)
	})

	return r
}
