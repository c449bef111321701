package handler

import (
	"log/slog"
	"net/http"

	"blog_api/internal/api/middleware"
	"blog_api/internal/app/service"
	"blog_api/internal/common"
	"blog_api/internal/platform/logging"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
	authn       func(http.Handler) http.Handler
	logger      *slog.Logger
}

func NewUserHandler(us *service.UserService, authn func(http.Handler) http.Handler, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: us, authn: authn, logger: logging.Resolve(logger)}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)

	r.Group(func(auth chi.Router) {
		auth.Use(h.authn)
		auth.With(middleware.AdminOnly).Get("/", h.listUsers)
		auth.With(middleware.AdminOnly).Patch("/{id}/admin", h.updateUserAdmin)

		auth.Group(func(self chi.Router) {
			self.Use(middleware.AdminOrSameUser("id"))
			self.Get("/{id}", h.getUser)
			self.Patch("/{id}", h.updateUser)
			self.Delete("/{id}", h.deleteUser)
		})
	})
}

func (h *UserHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	resp, err := h.userService.Signup(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	resp, err := h.userService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context(), caller(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	user, err := h.userService.GetUser(r.Context(), caller(r), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req service.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	user, err := h.userService.UpdateUser(r.Context(), caller(r), id, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateUserAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req service.AdminUpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	user, err := h.userService.UpdateUserAdmin(r.Context(), caller(r), id, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.userService.DeleteUser(r.Context(), caller(r), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithMessage(w, "User with id: %d was deleted", id)
}
