package handler

import (
	"log/slog"
	"net/http"

	"blog_api/internal/app/service"
	"blog_api/internal/common"
	"blog_api/internal/platform/logging"

	"github.com/go-chi/chi/v5"
)

type CommentHandler struct {
	commentService *service.CommentService
	authn          func(http.Handler) http.Handler
	logger         *slog.Logger
}

func NewCommentHandler(cs *service.CommentService, authn func(http.Handler) http.Handler, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{commentService: cs, authn: authn, logger: logging.Resolve(logger)}
}

func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listComments)
	r.Get("/{id}", h.getComment)
	r.Get("/author/{authorid}", h.listByAuthor)

	r.Group(func(auth chi.Router) {
		auth.Use(h.authn)
		auth.Put("/{id}", h.updateComment)
		auth.Delete("/{id}", h.deleteComment)
	})
}

func (h *CommentHandler) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListComments(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) getComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	comment, err := h.commentService.GetComment(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) listByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, "authorid")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	comments, err := h.commentService.ListByAuthor(r.Context(), authorID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) updateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req service.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	comment, err := h.commentService.UpdateComment(r.Context(), caller(r), id, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.commentService.DeleteComment(r.Context(), caller(r), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithMessage(w, "Comment with id: %d was deleted.", id)
}
