package http

import (
	"fmt"
	"net/http"

	"github.com/MKhiriev/kharcha-sync/internal/logger"
	"github.com/MKhiriev/kharcha-sync/internal/service"
	"github.com/MKhiriev/kharcha-sync/internal/utils"
	"github.com/MKhiriev/kharcha-sync/models"
)

// register creates an account and answers with the bearer token in the
// "Authorization" header. The token subject is the new user id.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var user models.User
	if err := utils.DecodeJSON(r, &user); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err), "invalid JSON was passed")
		return
	}

	registeredUser, err := h.services.AuthService.RegisterUser(ctx, user)
	if err != nil {
		writeError(w, r, err, "user registration failed")
		return
	}

	h.writeToken(w, r, registeredUser, http.StatusCreated)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var user models.User
	if err := utils.DecodeJSON(r, &user); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err), "invalid JSON was passed")
		return
	}

	foundUser, err := h.services.AuthService.Login(ctx, user)
	if err != nil {
		writeError(w, r, err, "user login failed")
		return
	}

	logger.FromRequest(r).Debug().Str("user_id", foundUser.UserID).Msg("user successfully logged in")

	h.writeToken(w, r, foundUser, http.StatusOK)
}

func (h *Handler) writeToken(w http.ResponseWriter, r *http.Request, user models.User, status int) {
	token, err := h.services.AuthService.CreateToken(r.Context(), user)
	if err != nil {
		writeError(w, r, err, "creation of token failed")
		return
	}

	w.Header().Set("Authorization", "Bearer "+token.SignedString)
	w.WriteHeader(status)
}
