package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/infra/http/middleware"
	"github.com/xavierca1/onbongo-leads/internal/usecase"
)

type AuthHandler struct {
	auth *middleware.Authenticator
	log  logrus.FieldLogger
}

func NewAuthHandler(auth *middleware.Authenticator, log logrus.FieldLogger) *AuthHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthHandler{auth: auth, log: log}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      AdminUser `json:"user"`
}

type AdminUser struct {
	Username string `json:"username"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if details := decodeAndValidate(r, &req); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Code: usecase.CodeValidation, Error: "Dados de login inválidos", Details: details})
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	if errors.Is(err, middleware.ErrInvalidCredentials) {
		h.log.WithField("username", req.Username).Warn("⚠️ Tentativa de login inválida")
		writeErrorResponse(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Credenciais inválidas")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("❌ Erro no login")
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno do servidor")
		return
	}

	writeSuccess(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      AdminUser{Username: req.Username},
	}, "Login realizado com sucesso")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token de acesso requerido")
		return
	}
	writeSuccess(w, http.StatusOK, AdminUser{Username: claims.Username}, "")
}
