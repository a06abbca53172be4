package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pokercount/backend/internal/auth"
	"github.com/pokercount/backend/internal/models"
)

// AuthService handles account registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

type userJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Register creates a new user account and returns a token.
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("Registration failed", "username", req.Username, "error", err)
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidUsername):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.respondWithToken(w, http.StatusCreated, user)
	slog.Info("User registered", "user_id", user.ID, "username", user.Username)
}

// Login authenticates an existing user and returns a token.
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("Login failed", "username", req.Username)
		respondError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	s.respondWithToken(w, http.StatusOK, user)
	slog.Info("User logged in", "user_id", user.ID)
}

func (s *AuthService) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond(w, status, authResponse{
		Token: token,
		User:  userJSON{ID: user.ID, Username: user.Username},
	})
}
