package visitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultCookieName = "prep_visitor"
	DefaultMaxAge     = 365 * 24 * time.Hour

	tokenIssuer = "interview-prep"
)

var (
	ErrInvalidToken  = errors.New("invalid visitor token")
	ErrMissingSecret = errors.New("visitor secret is required")
)

type ctxKey struct{}

// WithVisitorID stores visitorID in ctx.
func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, visitorID)
}

// FromContext returns the visitor id set by Middleware, or "".
func FromContext(ctx context.Context) string {
	visitorID, _ := ctx.Value(ctxKey{}).(string)
	return visitorID
}

type Config struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Issuer signs and verifies anonymous visitor tokens. The token subject is
// the visitor id.
type Issuer struct {
	secret     []byte
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSecret
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	return &Issuer{
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     cfg.Secure,
		now:        time.Now,
	}, nil
}

func (i *Issuer) CookieName() string {
	return i.cookieName
}

// NewVisitorID returns a fresh random id.
func NewVisitorID() string {
	return uuid.NewString()
}

func (i *Issuer) Issue(visitorID string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   visitorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.maxAge)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign visitor token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and returns the visitor id it carries.
func (i *Issuer) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Cookie builds the cookie carrying token.
func (i *Issuer) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     i.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(i.maxAge / time.Second),
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware resolves the visitor for every request. A valid cookie or bearer
// token is reused; otherwise a new visitor id is minted and its cookie set.
func (i *Issuer) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if visitorID, ok := i.fromRequest(r); ok {
				next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), visitorID)))
				return
			}

			visitorID := NewVisitorID()
			token, err := i.Issue(visitorID)
			if err != nil {
				logger.Error("issue visitor token", zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, i.Cookie(token))
			logger.Debug("new visitor", zap.String("visitor_id", visitorID))

			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), visitorID)))
		})
	}
}

func (i *Issuer) fromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		if visitorID, err := i.Parse(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
			return visitorID, true
		}
	}
	if cookie, err := r.Cookie(i.cookieName); err == nil {
		if visitorID, err := i.Parse(cookie.Value); err == nil {
			return visitorID, true
		}
	}
	return "", false
}
