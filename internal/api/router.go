package api

import (
	"log/slog"
	"net/http"
	"time"

	"blog_api/internal/api/handler"
	"blog_api/internal/api/middleware"
	"blog_api/internal/app/service"
	"blog_api/internal/common"
	"blog_api/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type Services struct {
	Users    *service.UserService
	Posts    *service.PostService
	Comments *service.CommentService
}

func NewRouter(
	services Services,
	tokens *security.TokenService,
	users middleware.UserFinder,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "404 - resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusMethodNotAllowed, "405 - method not allowed")
	})

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authn := middleware.Authenticator(tokens, users, logger)

	r.Route("/api", func(api chi.Router) {
		api.Route("/user", handler.NewUserHandler(services.Users, authn, logger).RegisterRoutes)
		api.Route("/post", handler.NewPostHandler(services.Posts, authn, logger).RegisterRoutes)
		api.Route("/comment", handler.NewCommentHandler(services.Comments, authn, logger).RegisterRoutes)
	})

	return r
}
