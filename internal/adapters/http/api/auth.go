package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminCookie holds the signed admin session.
const AdminCookie = "admin-token"

const (
	adminSubject = "admin"
	tokenIssuer  = "swansa-peacefulplay"
)

// AdminAuth checks the admin password and issues signed session tokens.
// A zero AdminAuth rejects every login.
type AdminAuth struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAdminAuth creates an AdminAuth. passwordHash is a bcrypt hash.
func NewAdminAuth(passwordHash, secret string, ttl time.Duration) *AdminAuth {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AdminAuth{
		hash:   []byte(passwordHash),
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of a using now as its time source.
func (a *AdminAuth) WithClock(now func() time.Time) *AdminAuth {
	cp := *a
	cp.now = now
	return &cp
}

// Enabled reports whether a login can ever succeed.
func (a *AdminAuth) Enabled() bool {
	return a != nil && len(a.hash) > 0 && len(a.secret) > 0
}

// Login verifies password and returns a session token and its expiry.
func (a *AdminAuth) Login(password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, fmt.Errorf("%w: admin login disabled", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	now := a.now()
	exp := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks a session token's signature, issuer, subject and expiry.
func (a *AdminAuth) Verify(token string) error {
	if !a.Enabled() {
		return fmt.Errorf("%w: admin login disabled", ErrUnauthorized)
	}
	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return nil
}

// authorized reports whether r carries a valid session cookie.
func (a *AdminAuth) authorized(r *http.Request) bool {
	c, err := r.Cookie(AdminCookie)
	if err != nil || c.Value == "" {
		return false
	}
	return a.Verify(c.Value) == nil
}

// RequireAdmin rejects requests without a valid admin session with 401.
func (a *AdminAuth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.authorized(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// AuthHandler serves admin login and logout.
type AuthHandler struct {
	auth *AdminAuth
	log  logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *AdminAuth, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type loginRequest struct {
	Password string `json:"password"`
}

// HandleLogin handles POST /api/admin/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.admin_login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required")
		return
	}
	token, exp, err := h.auth.Login(req.Password)
	if err != nil {
		h.log.Warn(r.Context(), "admin login rejected", logger.Error(Wrap(op, err)))
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleLogout handles POST /api/admin/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
