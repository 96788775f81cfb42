package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tryout-service/internal/service"
)

type contextKey string

const adminContextKey contextKey = "admin_username"

// AdminHandler authenticates admins and guards the review routes.
type AdminHandler struct {
	admins *service.AdminService
}

func NewAdminHandler(admins *service.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, fail("Username dan password harus diisi."))
		return
	}

	token, err := h.admins.Login(req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ok("Login berhasil.").with("token", token))
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.admins.Logout(bearerToken(r)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ok("Logout berhasil."))
}

// RequireAdmin resolves the bearer token to an admin username and stores it
// in the request context.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, err := h.admins.Authenticate(bearerToken(r))
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, fail("Sesi admin tidak valid."))
			return
		}
		ctx := context.WithValue(r.Context(), adminContextKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func adminFromContext(ctx context.Context) string {
	if username, ok := ctx.Value(adminContextKey).(string); ok {
		return username
	}
	return ""
}
