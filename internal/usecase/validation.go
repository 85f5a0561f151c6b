package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

const (
	ReasonRequired      = "required"
	ReasonTooShort      = "too_short"
	ReasonInvalidLength = "invalid_length"
	ReasonInvalidEnum   = "invalid_enum"

	minNameLength = 3
	phoneDigits   = 11 // DDD + celular
	cnpjDigits    = 14
)

var nonDigit = regexp.MustCompile(`\D`)

type ValidationError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizedLead é a saída do validador, pronta para persistir.
type NormalizedLead struct {
	FullName string
	Phone    string
	Kind     entity.LeadKind
	TaxID    *string
}

// ValidateSubmitLeadInput junta todos os erros de campo numa única resposta.
func ValidateSubmitLeadInput(input SubmitLeadInput) (NormalizedLead, []ValidationError) {
	var errors []ValidationError
	var out NormalizedLead

	name := strings.TrimSpace(input.FullName)
	if name == "" {
		errors = append(errors, ValidationError{"full_name", ReasonRequired, "is required"})
	} else if utf8.RuneCountInString(name) < minNameLength {
		errors = append(errors, ValidationError{"full_name", ReasonTooShort, fmt.Sprintf("must have at least %d characters", minNameLength)})
	}
	out.FullName = name

	phone := OnlyDigits(input.Phone)
	if phone == "" {
		errors = append(errors, ValidationError{"phone", ReasonRequired, "is required"})
	} else if len(phone) != phoneDigits {
		errors = append(errors, ValidationError{"phone", ReasonInvalidLength, fmt.Sprintf("must have exactly %d digits", phoneDigits)})
	}
	out.Phone = phone

	kind := entity.LeadKind(input.Kind)
	if !kind.Valid() {
		errors = append(errors, ValidationError{"kind", ReasonInvalidEnum, "must be retailer or consumer"})
	}
	out.Kind = kind

	// CNPJ só importa para lojista; para consumidor o campo é ignorado
	if kind == entity.LeadKindRetailer {
		cnpj := OnlyDigits(input.TaxID)
		if cnpj == "" {
			errors = append(errors, ValidationError{"tax_id", ReasonRequired, "is required for retailer"})
		} else if len(cnpj) != cnpjDigits {
			errors = append(errors, ValidationError{"tax_id", ReasonInvalidLength, fmt.Sprintf("must have exactly %d digits", cnpjDigits)})
		} else {
			out.TaxID = &cnpj
		}
	}

	return out, errors
}

func OnlyDigits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}
