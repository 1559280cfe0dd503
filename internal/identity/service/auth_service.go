// Package service implements dashboard login, logout and session authentication.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"housemonitor/internal/audit"
	"housemonitor/internal/security"
	sessiondomain "housemonitor/internal/session/domain"
	userdomain "housemonitor/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrInvalidCSRF   = errors.New("invalid csrf token")
	ErrBadCredential = errors.New("invalid password")
	ErrUnauthorized  = errors.New("unauthorized")
)

// SessionStore is the keyed session store needed by the auth service.
type SessionStore interface {
	Get(ctx context.Context, id string) (*sessiondomain.Session, error)
	Save(ctx context.Context, s *sessiondomain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// TokenRepo is the minimal remember-token repository needed by the auth service.
type TokenRepo interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*sessiondomain.RememberToken, error)
	Create(ctx context.Context, t *sessiondomain.RememberToken) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	PruneKeepLatest(ctx context.Context, userID int64, n int) (int64, error)
	TouchLastUsed(ctx context.Context, tokenHash string, at time.Time) error
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// PasswordVerifier checks the dashboard password.
type PasswordVerifier interface {
	VerifyDashboardPassword(provided string) bool
}

// LoginInput is a submitted login form.
type LoginInput struct {
	SessionID     string
	Password      string
	PresentedCSRF string
	RememberMe    bool
	DeviceInfo    string
}

// LoginResult holds the new session and, with remember-me, the raw remember token for the cookie.
type LoginResult struct {
	Session         *sessiondomain.Session
	RememberToken   string
	RememberExpires time.Time
}

// LogoutInput is a submitted logout form plus the remember cookie of this device.
type LogoutInput struct {
	SessionID     string
	PresentedCSRF string
	RememberToken string
}

// AuthService implements password login with optional remember-me tokens for the single dashboard account.
type AuthService struct {
	sessions SessionStore
	tokens   TokenRepo
	users    UserRepo
	verifier PasswordVerifier
	audit    audit.AuditLogger
	log      *zap.Logger
	nowF     func() time.Time
	newToken func() (string, error)
}

// NewAuthService returns an AuthService. auditLog and log may be nil.
func NewAuthService(
	sessions SessionStore,
	tokens TokenRepo,
	users UserRepo,
	verifier PasswordVerifier,
	auditLog audit.AuditLogger,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		sessions: sessions,
		tokens:   tokens,
		users:    users,
		verifier: verifier,
		audit:    auditLog,
		log:      log,
		nowF:     time.Now,
		newToken: security.NewToken,
	}
}

// StartSession returns the session for sessionID, creating a fresh anonymous one with a
// CSRF token when it does not exist. An existing CSRF token is never replaced.
func (s *AuthService) StartSession(ctx context.Context, sessionID string) (*sessiondomain.Session, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess != nil && sess.CSRFToken != "" {
		return sess, nil
	}
	if sess == nil {
		id, err := s.newToken()
		if err != nil {
			return nil, err
		}
		sess = &sessiondomain.Session{ID: id, CreatedAt: s.nowF().UTC()}
	}
	csrf, err := s.newToken()
	if err != nil {
		return nil, err
	}
	sess.CSRFToken = csrf
	if err := s.sessions.Save(ctx, sess, sessiondomain.SessionTTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Login verifies the CSRF token, then the password. On success the session id is
// regenerated and, with remember-me, a remember token is issued and old ones pruned.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	old, err := s.load(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if old == nil || !security.TokenEqual(old.CSRFToken, in.PresentedCSRF) {
		s.emit(ctx, audit.CSRFRejected, 0, in.DeviceInfo, "login")
		return nil, ErrInvalidCSRF
	}
	if !s.verifier.VerifyDashboardPassword(in.Password) {
		s.emit(ctx, audit.LoginFailure, 0, in.DeviceInfo, "")
		return nil, ErrBadCredential
	}

	now := s.nowF().UTC()
	sess, err := s.newAuthenticated(ctx, old, userdomain.DashboardUserID, now)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, userdomain.DashboardUserID, now); err != nil {
		s.log.Warn("update last login failed", zap.Error(err))
	}

	res := &LoginResult{Session: sess}
	if in.RememberMe {
		raw, expires, err := s.issueRememberToken(ctx, userdomain.DashboardUserID, in.DeviceInfo, now)
		if err != nil {
			s.log.Error("issue remember token failed", zap.Error(err))
		} else {
			res.RememberToken = raw
			res.RememberExpires = expires
		}
	}
	s.emit(ctx, audit.LoginSuccess, userdomain.DashboardUserID, in.DeviceInfo, "")
	return res, nil
}

// Logout deletes the remember token presented by this device and the session.
// A CSRF mismatch on an existing session returns ErrInvalidCSRF; missing state is not an error.
// Without a session there is no CSRF token to check, so the presented remember token is
// deleted unconditionally; this lets a device with an expired session still sign out.
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	sess, err := s.load(ctx, in.SessionID)
	if err != nil {
		return err
	}
	if sess != nil && !security.TokenEqual(sess.CSRFToken, in.PresentedCSRF) {
		s.emit(ctx, audit.CSRFRejected, sess.UserID, "", "logout")
		return ErrInvalidCSRF
	}
	if in.RememberToken != "" {
		if err := s.tokens.DeleteByTokenHash(ctx, security.HashToken(in.RememberToken)); err != nil {
			s.log.Error("delete remember token failed", zap.Error(err))
		}
	}
	if sess == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.emit(ctx, audit.Logout, sess.UserID, "", "")
	return nil
}

// Authenticate returns the authenticated session for sessionID and extends its lifetime.
// Without one, a valid unexpired remember token restores a new authenticated session.
// Anything else is ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, sessionID, rememberToken string) (*sessiondomain.Session, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		s.log.Error("load session failed", zap.Error(err))
		sess = nil
	}
	if sess != nil && sess.Authenticated {
		if err := s.sessions.Save(ctx, sess, sessiondomain.SessionTTL); err != nil {
			s.log.Warn("extend session failed", zap.Error(err))
		}
		return sess, nil
	}
	if rememberToken == "" {
		return nil, ErrUnauthorized
	}

	hash := security.HashToken(rememberToken)
	tok, err := s.tokens.GetByTokenHash(ctx, hash)
	if err != nil {
		s.log.Error("lookup remember token failed", zap.Error(err))
		return nil, ErrUnauthorized
	}
	now := s.nowF().UTC()
	if tok == nil || !security.TokenHashEqual(rememberToken, tok.TokenHash) {
		return nil, ErrUnauthorized
	}
	if tok.Expired(now) {
		if err := s.tokens.DeleteByTokenHash(ctx, hash); err != nil {
			s.log.Warn("delete expired remember token failed", zap.Error(err))
		}
		return nil, ErrUnauthorized
	}

	restored, err := s.newAuthenticated(ctx, sess, tok.UserID, now)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.TouchLastUsed(ctx, hash, now); err != nil {
		s.log.Warn("touch remember token failed", zap.Error(err))
	}
	s.emit(ctx, audit.RememberRestore, tok.UserID, tok.DeviceInfo, "")
	return restored, nil
}

// newAuthenticated saves a fresh authenticated session under a new id and drops prev.
// The CSRF token of prev carries over.
func (s *AuthService) newAuthenticated(ctx context.Context, prev *sessiondomain.Session, userID int64, now time.Time) (*sessiondomain.Session, error) {
	id, err := s.newToken()
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:            id,
		Authenticated: true,
		UserID:        userID,
		CreatedAt:     now,
		LoginAt:       now,
	}
	if prev != nil {
		sess.CSRFToken = prev.CSRFToken
	}
	if sess.CSRFToken == "" {
		if sess.CSRFToken, err = s.newToken(); err != nil {
			return nil, err
		}
	}
	if err := s.sessions.Save(ctx, sess, sessiondomain.SessionTTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if prev != nil {
		if err := s.sessions.Delete(ctx, prev.ID); err != nil {
			s.log.Warn("delete previous session failed", zap.Error(err))
		}
	}
	return sess, nil
}

func (s *AuthService) issueRememberToken(ctx context.Context, userID int64, deviceInfo string, now time.Time) (string, time.Time, error) {
	raw, err := s.newToken()
	if err != nil {
		return "", time.Time{}, err
	}
	if deviceInfo == "" {
		deviceInfo = sessiondomain.UnknownDevice
	}
	lastUsed := now
	tok := &sessiondomain.RememberToken{
		UserID:     userID,
		TokenHash:  security.HashToken(raw),
		ExpiresAt:  now.Add(sessiondomain.RememberTTL),
		DeviceInfo: deviceInfo,
		LastUsedAt: &lastUsed,
		CreatedAt:  now,
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return "", time.Time{}, fmt.Errorf("create remember token: %w", err)
	}
	if n, err := s.tokens.PruneKeepLatest(ctx, userID, sessiondomain.MaxRememberTokens); err != nil {
		s.log.Warn("prune remember tokens failed", zap.Error(err))
	} else if n > 0 {
		s.log.Debug("pruned remember tokens", zap.Int64("count", n))
	}
	return raw, tok.ExpiresAt, nil
}

func (s *AuthService) load(ctx context.Context, sessionID string) (*sessiondomain.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func (s *AuthService) emit(ctx context.Context, typ audit.EventType, userID int64, deviceInfo, detail string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, typ, userID, deviceInfo, detail)
	}
}
