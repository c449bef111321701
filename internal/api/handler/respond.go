package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"blog_api/internal/api/middleware"
	"blog_api/internal/app/validation"
	"blog_api/internal/common"
	"blog_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const internalErrorMessage = "internal server error"

// respondError is the single place failures turn into responses.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		common.RespondWithJSON(w, http.StatusBadRequest, validation.Response{Errors: verrs})
		return
	}

	status := common.StatusFromError(err)
	kind := common.Kind(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"kind", kind, "method", r.Method, "path", r.URL.Path, "error", err)
		if !errors.Is(err, common.ErrAlreadyExists) {
			common.RespondWithError(w, status, internalErrorMessage)
			return
		}
	} else {
		logger.InfoContext(r.Context(), "request rejected",
			"kind", kind, "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	common.RespondWithError(w, status, err.Error())
}

// decodeJSON reads the body into dst. An empty body decodes as {} so the
// validation layer reports the missing fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return common.Wrap(common.ErrBadRequest, "Invalid request payload: %v", err)
	}
	return nil
}

func pathID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Wrap(common.ErrBadRequest, "invalid id")
	}
	return id, nil
}

// caller is only valid behind middleware.Authenticator.
func caller(r *http.Request) model.Identity {
	identity, _ := middleware.IdentityFromContext(r.Context())
	return identity
}
