package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xavierca1/onbongo-leads/internal/usecase"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
	// (maxPage-1)*maxLimit cabe em int32, então o offset nunca estoura
	maxPage = 1_000_000
)

// APIResponse é o envelope de todas as respostas JSON.
type APIResponse struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
	Details    any         `json:"details,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// erros com o nome do campo JSON, não o da struct
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, APIResponse{Success: true, Data: data, Message: message})
}

func writePage(w http.ResponseWriter, data any, p Pagination) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data, Pagination: &p})
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{Success: false, Code: code, Error: message})
}

// writeUsecaseError traduz os erros de usecase para status HTTP.
func writeUsecaseError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		if de.Code == usecase.CodeLeadNotFound {
			status = http.StatusNotFound
		}
		resp := APIResponse{Success: false, Code: de.Code, Error: de.Message}
		if len(de.Details) > 0 {
			resp.Details = de.Details
		}
		writeJSON(w, status, resp)
		return
	}

	writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeStorage, "Erro interno do servidor")
}

// decodeAndValidate lê o corpo JSON e aplica as tags `validate`.
func decodeAndValidate(r *http.Request, dst any) []usecase.ValidationError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return []usecase.ValidationError{{Field: "body", Reason: "invalid_json", Message: "request body must be valid JSON"}}
	}
	return validationDetails(validate.Struct(dst))
}

func validationDetails(err error) []usecase.ValidationError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []usecase.ValidationError{{Field: "body", Reason: "invalid", Message: err.Error()}}
	}

	out := make([]usecase.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, usecase.ValidationError{
			Field:   field,
			Reason:  fe.Tag(),
			Message: "failed on '" + fe.Tag() + "' rule",
		})
	}
	return out
}

// parsePagination aplica page=1, limit=20 e o teto de 100 itens por página.
func parsePagination(r *http.Request) (page, limit int) {
	page = queryInt(r, "page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	limit = queryInt(r, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func newPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
