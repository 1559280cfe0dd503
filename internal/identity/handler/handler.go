// Package handler serves the dashboard login and logout pages and guards authenticated routes.
package handler

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"housemonitor/internal/identity/service"
	"housemonitor/internal/server/middleware"
	sessiondomain "housemonitor/internal/session/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var loginPage = template.Must(template.ParseFS(templateFS, "templates/login.html"))

// AuthService is the part of service.AuthService the handler uses.
type AuthService interface {
	StartSession(ctx context.Context, sessionID string) (*sessiondomain.Session, error)
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, in service.LogoutInput) error
	Authenticate(ctx context.Context, sessionID, rememberToken string) (*sessiondomain.Session, error)
}

// Handler serves /login and /logout.
type Handler struct {
	auth    AuthService
	cookies CookieConfig
	log     *zap.Logger
}

// NewHandler returns a Handler.
func NewHandler(auth AuthService, cookies CookieConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{auth: auth, cookies: cookies, log: log}
}

type loginView struct {
	CSRFToken string
	Error     string
}

// LoginPage handles GET /login: authenticated visitors go to the dashboard, others get the form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess, err := h.auth.Authenticate(r.Context(), cookieValue(r, SessionCookie), cookieValue(r, RememberCookie))
	if err == nil {
		h.cookies.setSession(w, sess.ID)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "")
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "Invalid request.")
		return
	}
	res, err := h.auth.Login(r.Context(), service.LoginInput{
		SessionID:     cookieValue(r, SessionCookie),
		Password:      r.PostForm.Get("password"),
		PresentedCSRF: r.PostForm.Get("csrf_token"),
		RememberMe:    r.PostForm.Get("remember_me") == "1",
		DeviceInfo:    r.UserAgent(),
	})
	switch {
	case errors.Is(err, service.ErrInvalidCSRF):
		h.renderLogin(w, r, http.StatusForbidden, "Invalid request.")
		return
	case errors.Is(err, service.ErrBadCredential):
		h.renderLogin(w, r, http.StatusUnauthorized, "Incorrect password.")
		return
	case err != nil:
		h.log.Error("login failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.cookies.setSession(w, res.Session.ID)
	if res.RememberToken != "" {
		h.cookies.setRemember(w, res.RememberToken, res.RememberExpires)
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	err := h.auth.Logout(r.Context(), service.LogoutInput{
		SessionID:     cookieValue(r, SessionCookie),
		PresentedCSRF: r.PostForm.Get("csrf_token"),
		RememberToken: cookieValue(r, RememberCookie),
	})
	if errors.Is(err, service.ErrInvalidCSRF) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err != nil {
		h.log.Error("logout failed", zap.Error(err))
	}
	h.cookies.clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// RequireAuthenticated admits requests with an authenticated session (or a valid remember token)
// and stores the session in the request context. API calls get a JSON 401, pages a redirect to /login.
func (h *Handler) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.auth.Authenticate(r.Context(), cookieValue(r, SessionCookie), cookieValue(r, RememberCookie))
		if err != nil {
			if !errors.Is(err, service.ErrUnauthorized) {
				h.log.Error("authenticate failed", zap.Error(err))
			}
			if isAPIRequest(r) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.cookies.setSession(w, sess.ID)
		next.ServeHTTP(w, r.WithContext(middleware.WithSession(r.Context(), sess)))
	})
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, msg string) {
	sess, err := h.auth.StartSession(r.Context(), cookieValue(r, SessionCookie))
	if err != nil {
		h.log.Error("start session failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.cookies.setSession(w, sess.ID)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := loginPage.Execute(w, loginView{CSRFToken: sess.CSRFToken, Error: msg}); err != nil {
		h.log.Warn("render login page failed", zap.Error(err))
	}
}

func isAPIRequest(r *http.Request) bool {
	if r.URL.Query().Has("action") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
