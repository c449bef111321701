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

type PostHandler struct {
	postService *service.PostService
	authn       func(http.Handler) http.Handler
	logger      *slog.Logger
}

func NewPostHandler(ps *service.PostService, authn func(http.Handler) http.Handler, logger *slog.Logger) *PostHandler {
	return &PostHandler{postService: ps, authn: authn, logger: logging.Resolve(logger)}
}

func (h *PostHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listPublished)
	r.Get("/{id}", h.getPublished)

	r.Group(func(auth chi.Router) {
		auth.Use(h.authn)

		auth.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminOnly)
			admin.Get("/all", h.listAll)
			admin.Get("/{id}/admin", h.getAny)
			admin.Post("/", h.createPost)
			admin.Put("/{id}", h.updatePost)
			admin.Delete("/{id}", h.deletePost)
		})

		auth.Post("/{id}/comment", h.createComment)
		auth.Put("/{id}/comment/{commentid}", h.updateComment)
		auth.Delete("/{id}/comment/{commentid}", h.deleteComment)
	})
}

func (h *PostHandler) listPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPublished(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) listAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListAll(r.Context(), caller(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) getPublished(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	post, err := h.postService.GetPublished(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) getAny(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	post, err := h.postService.GetAny(r.Context(), caller(r), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	var req service.PostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	post, err := h.postService.CreatePost(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req service.PostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	post, err := h.postService.UpdatePost(r.Context(), caller(r), id, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.postService.DeletePost(r.Context(), caller(r), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithMessage(w, "Post with id: %d was deleted.", id)
}

func (h *PostHandler) createComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req service.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	comment, err := h.postService.CreateComment(r.Context(), caller(r), postID, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *PostHandler) updateComment(w http.ResponseWriter, r *http.Request) {
	postID, commentID, err := postCommentIDs(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req service.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	comment, err := h.postService.UpdateComment(r.Context(), caller(r), postID, commentID, req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *PostHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	postID, commentID, err := postCommentIDs(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.postService.DeleteComment(r.Context(), caller(r), postID, commentID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	common.RespondWithMessage(w, "Comment with id: %d was deleted.", commentID)
}

func postCommentIDs(r *http.Request) (int64, int64, error) {
	postID, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	commentID, err := pathID(r, "commentid")
	if err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}
