package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"meetscribe/internal/domain/dto"
	Iservices "meetscribe/internal/domain/interfaces/services"
	"meetscribe/internal/infra/logger"
)

type AuthHandlers struct {
	Logger      *logger.Logger
	AuthService Iservices.IAuthService
}

func NewAuthHandlers(logger *logger.Logger, authService Iservices.IAuthService) *AuthHandlers {
	return &AuthHandlers{Logger: logger, AuthService: authService}
}

// GoogleAuth exchanges a Google access token for a service token.
func (ah *AuthHandlers) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var body dto.GoogleAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	if body.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "access_token is required")
		return
	}

	response, err := ah.AuthService.AuthenticateWithGoogle(r.Context(), body.AccessToken)
	if err != nil {
		ah.Logger.Warn(fmt.Sprintf("Google authentication failed: %v", err))
		writeError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, response)
}
