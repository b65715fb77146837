package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/levelup-gamer/storefront/internal/auth"
)

// Authenticator is the backend auth boundary.
type Authenticator interface {
	Login(ctx context.Context, req auth.LoginRequest) (string, error)
	Register(ctx context.Context, req auth.RegisterRequest) (string, error)
}

type AuthHandler struct {
	client Authenticator
	keeper *auth.Keeper
}

func NewAuthHandler(client Authenticator, keeper *auth.Keeper) *AuthHandler {
	return &AuthHandler{client: client, keeper: keeper}
}

type sessionUserResponse struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token, err := h.client.Login(r.Context(), req)
	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		respondError(w, http.StatusUnauthorized, "bad_credentials", "wrong email or password")
		return
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", "no account for that email")
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "auth_unavailable", err.Error())
		return
	}

	if errSave := h.keeper.Save(r.Context(), sessionID(r), token); errSave != nil {
		respondError(w, http.StatusInternalServerError, "persist_failed", errSave.Error())
		return
	}
	h.respondUser(w, r)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token, err := h.client.Register(r.Context(), req)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email_taken", "email already registered")
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "auth_unavailable", err.Error())
		return
	}

	if token == "" {
		respondJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
		return
	}
	if errSave := h.keeper.Save(r.Context(), sessionID(r), token); errSave != nil {
		respondError(w, http.StatusInternalServerError, "persist_failed", errSave.Error())
		return
	}
	h.respondUser(w, r)
}

// Logout drops the session's token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.keeper.Remove(r.Context(), sessionID(r)); err != nil {
		respondError(w, http.StatusInternalServerError, "persist_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me reports who the session is signed in as.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.keeper.Claims(r.Context(), sessionID(r))
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "not signed in")
		return
	}
	respondJSON(w, http.StatusOK, sessionUserResponse{
		Name:  claims.Name,
		Email: claims.Subject,
		Roles: claims.Roles,
	})
}

func (h *AuthHandler) respondUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.keeper.Claims(r.Context(), sessionID(r))
	if !ok {
		// Token stored but unreadable; report signed-in without detail.
		respondJSON(w, http.StatusOK, map[string]string{"status": "signed_in"})
		return
	}
	respondJSON(w, http.StatusOK, sessionUserResponse{
		Name:  claims.Name,
		Email: claims.Subject,
		Roles: claims.Roles,
	})
}
