package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/usecase"
)

// maxLeadBodyBytes limita o corpo do formulário público.
const maxLeadBodyBytes = 64 << 10

type LeadHandler struct {
	submitUC    *usecase.SubmitLeadUseCase
	leadRepo    entity.LeadRepositoryInterface
	rateLimiter *RateLimiter
	log         logrus.FieldLogger
}

func NewLeadHandler(submitUC *usecase.SubmitLeadUseCase, leadRepo entity.LeadRepositoryInterface, perMinute int, log logrus.FieldLogger) *LeadHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LeadHandler{
		submitUC:    submitUC,
		leadRepo:    leadRepo,
		rateLimiter: NewRateLimiter(perMinute, time.Minute),
		log:         log,
	}
}

// CaptureLead é o POST público do formulário da landing page.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "Muitas tentativas. Tente novamente em alguns minutos.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLeadBodyBytes)

	var input usecase.SubmitLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Corpo da requisição muito grande")
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	lead, err := h.submitUC.Execute(r.Context(), input, usecase.RequestContext{
		IPAddress: clientIP,
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		if usecase.IsTechnicalError(err) {
			h.log.WithError(err).Error("❌ Erro ao cadastrar lead")
		}
		writeUsecaseError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, lead, "Cadastro realizado com sucesso")
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	leads, total, err := h.leadRepo.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.log.WithError(err).Error("❌ Erro ao listar leads")
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeStorage, "Erro ao listar leads")
		return
	}

	writePage(w, leads, newPagination(page, limit, total))
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	lead, err := h.leadRepo.FindByID(r.Context(), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeErrorResponse(w, http.StatusNotFound, usecase.CodeLeadNotFound, "Lead não encontrado")
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("lead_id", id).Error("❌ Erro ao buscar lead")
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeStorage, "Erro ao buscar lead")
		return
	}

	writeSuccess(w, http.StatusOK, lead, "")
}

func parseID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_ID", "ID inválido")
		return 0, false
	}
	return id, true
}

// getClientIP usa o primeiro IP do X-Forwarded-For (o cliente original).
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := rl.now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
