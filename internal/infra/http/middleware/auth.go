package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("credenciais inválidas")

type adminKey struct{}

type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator guarda o único usuário administrativo (configurado por env) e
// emite/valida os tokens do painel.
type Authenticator struct {
	secret       []byte
	username     string
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAuthenticator(secret, username, passwordHash string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		secret:       []byte(secret),
		username:     username,
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Login confere usuário e senha (bcrypt) e devolve um JWT HS256.
func (a *Authenticator) Login(username, password string) (string, time.Time, error) {
	if len(a.passwordHash) == 0 || username != a.username {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.Issue(username)
}

func (a *Authenticator) Issue(username string) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("erro ao assinar token: %w", err)
	}
	return signed, expiresAt, nil
}

func (a *Authenticator) Parse(raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAdmin responde 401 sem token e 403 com token inválido ou expirado.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r.Header.Get("Authorization"))
		if raw == "" {
			deny(w, http.StatusUnauthorized, "Token de acesso requerido")
			return
		}

		claims, err := a.Parse(raw)
		if err != nil {
			deny(w, http.StatusForbidden, "Token inválido")
			return
		}

		ctx := context.WithValue(r.Context(), adminKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AdminFromContext(ctx context.Context) (*AdminClaims, bool) {
	claims, ok := ctx.Value(adminKey{}).(*AdminClaims)
	return claims, ok
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
