package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"blog_api/internal/app/policy"
	"blog_api/internal/common"
	"blog_api/internal/common/security"
	"blog_api/internal/domain/model"
	"blog_api/internal/platform/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const identityCtxKey contextKey = "identity"

// UserFinder is the slice of the user repository the middleware needs.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Authenticator verifies the bearer credential and attaches the caller's
// identity as currently stored, so a revoked admin flag or a deleted account
// takes effect before the token expires.
func Authenticator(tokens *security.TokenService, users UserFinder, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logging.Resolve(logger).With("component", "auth")
	reject := func(w http.ResponseWriter, r *http.Request, err, cause error) {
		if cause == nil {
			cause = err
		}
		logger.WarnContext(r.Context(), "request rejected",
			"kind", common.Kind(err), "path", r.URL.Path, "error", cause)
		common.RespondWithError(w, http.StatusUnauthorized, err.Error())
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				reject(w, r, common.Wrap(common.ErrUnauthenticated, "Authorization token required"), nil)
				return
			}

			claimed, err := tokens.Verify(token)
			if err != nil {
				reject(w, r, common.Wrap(common.ErrInvalidCredential, "Invalid token"), err)
				return
			}

			user, err := users.FindByID(r.Context(), claimed.ID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					reject(w, r, common.Wrap(common.ErrUnauthenticated, "User with id: %d doesn't exist.", claimed.ID), nil)
					return
				}
				logger.ErrorContext(r.Context(), "failed to resolve caller", "user_id", claimed.ID, "error", err)
				common.RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user.Identity())))
		})
	}
}

// AdminOnly must run after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		if err := policy.Require(policy.IsAdmin(identity)); err != nil {
			common.RespondWithError(w, common.StatusFromError(err), err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminOrSameUser lets admins through, and anyone whose id equals the
// user id in the named path parameter. It reads the parameter, so it must be
// mounted on a routed group or with With, never on a router-level Use where
// the route has not been matched yet.
func AdminOrSameUser(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pathID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || pathID <= 0 {
				common.RespondWithError(w, http.StatusBadRequest, "invalid id")
				return
			}
			identity, _ := IdentityFromContext(r.Context())
			if err := policy.Require(policy.IsAdminOrSameUserFromPathID(identity, pathID)); err != nil {
				common.RespondWithError(w, common.StatusFromError(err), err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext returns the identity attached by Authenticator.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey).(model.Identity)
	return identity, ok
}
