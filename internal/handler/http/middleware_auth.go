package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/go-chi/chi/v5"
)

// auth enforces JWT bearer authentication.
//
// It extracts the token from the "Authorization" header, validates it via
// [service.AuthService.ParseToken] and stores the token subject in the
// request context under [utils.UserIDCtxKey]. Every failure is answered
// with 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Warn().Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := getTokenFromAuthHeader(authHeader)
		if err != nil {
			log.Warn().Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			if errors.Is(err, service.ErrTokenIsExpired) {
				log.Warn().Err(err).Msg("token expired")
				http.Error(w, service.ErrTokenIsExpired.Error(), http.StatusUnauthorized)
				return
			}
			log.Warn().Err(err).Msg("error occurred during parsing token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithUserID(ctx, token.UserID)))
	})
}

// ownerOnly rejects requests whose {userID} path parameter differs from the
// authenticated token subject. Must run after [Handler.auth].
func (h *Handler) ownerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pathUserID := chi.URLParam(r, "userID")
		tokenUserID, ok := utils.GetUserIDFromContext(r.Context())

		if !ok || tokenUserID == "" || pathUserID != tokenUserID {
			err := fmt.Errorf("%w: token of %q used for %q",
				service.ErrUnauthorizedAccessToDifferentUserData, tokenUserID, pathUserID)
			logger.FromRequest(r).Warn().Err(err).Send()
			http.Error(w, service.ErrUnauthorizedAccessToDifferentUserData.Error(), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getTokenFromAuthHeader extracts the token of an "Authorization: Bearer
// <token>" header value. The scheme is matched case-insensitively.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	scheme, tokenString, found := strings.Cut(strings.TrimLeft(authHeader, " "), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrEmptyToken
	}
	if strings.ContainsAny(tokenString, " \t") {
		return "", ErrInvalidAuthorizationHeader
	}

	return tokenString, nil
}
