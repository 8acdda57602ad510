package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/adroste/nowte/auth"
	"github.com/adroste/nowte/observability"
	"github.com/adroste/nowte/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *store.User `json:"user"`
	Token string      `json:"token"`
}

// handleRegister creates an account and logs the user straight in.
// POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := &store.User{
		ID:           s.newUserID(),
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		s.log.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.recordEvent(r, observability.Event{
		EventType: "auth", EntityType: "user", EntityID: user.ID,
		UserID: user.ID, Action: "register", Success: true,
	})
	s.issueToken(w, r, user)
}

// handleLogin verifies credentials and issues a token.
// POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		s.log.Error("lookup user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.recordEvent(r, observability.Event{
			EventType: "auth", EntityType: "user", Action: "login", Success: false,
		})
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.recordEvent(r, observability.Event{
		EventType: "auth", EntityType: "user", EntityID: user.ID,
		UserID: user.ID, Action: "login", Success: true,
	})
	s.issueToken(w, r, user)
}

// handleLogout clears the token cookie. The token itself stays valid
// until expiry; there is no server-side session to revoke.
// POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMe returns the authenticated user.
// GET /api/auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	user, err := s.store.GetUser(r.Context(), claims.UserID)
	if err != nil {
		s.log.Error("lookup user", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, user *store.User) {
	claims := &auth.Claims{UserID: user.ID, Username: user.Username, Email: user.Email}
	token, err := auth.GenerateToken(s.secret, claims, s.cfg.Auth.TokenTTL)
	if err != nil {
		s.log.Error("generate token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	auth.SetTokenCookie(w, token, s.cfg.Server.SecureCookies)
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}
