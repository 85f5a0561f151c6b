package usecase

import (
	"context"
	"encoding/json"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type SettingInput struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

type SettingsUseCase struct {
	Repo entity.SettingRepositoryInterface
}

func NewSettingsUseCase(repo entity.SettingRepositoryInterface) *SettingsUseCase {
	return &SettingsUseCase{Repo: repo}
}

func (uc *SettingsUseCase) List(ctx context.Context) ([]entity.Setting, error) {
	settings, err := uc.Repo.All(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to load settings", Err: err}
	}
	return settings, nil
}

// Update valida tudo antes de gravar qualquer chave.
func (uc *SettingsUseCase) Update(ctx context.Context, inputs []SettingInput) error {
	var details []ValidationError
	for i := range inputs {
		inputs[i].Key = strings.TrimSpace(inputs[i].Key)
		if ve := ValidateSetting(inputs[i].Key, inputs[i].Value); ve != nil {
			details = append(details, *ve)
		}
	}
	if len(details) > 0 {
		return &DomainError{Code: CodeValidation, Message: "configurações inválidas", Details: details}
	}

	for _, in := range inputs {
		if err := uc.Repo.Set(ctx, in.Key, in.Value); err != nil {
			return &TechnicalError{Code: CodeStorage, Message: "failed to save setting " + in.Key, Err: err}
		}
	}
	return nil
}

// ValidateSetting confere o formato das chaves que os canais interpretam.
// Chaves livres (ids de pixel, tokens) aceitam qualquer texto.
func ValidateSetting(key, value string) *ValidationError {
	invalid := func(reason, msg string) *ValidationError {
		return &ValidationError{Field: key, Reason: reason, Message: msg}
	}

	if key == "" {
		return &ValidationError{Field: "key", Reason: ReasonRequired, Message: "key is required"}
	}

	value = strings.TrimSpace(value)
	switch key {
	case entity.SettingAutoSendConversions, entity.SettingAutoSendWebhook:
		if value != "true" && value != "false" {
			return invalid(ReasonInvalidEnum, "must be 'true' or 'false'")
		}
	case entity.SettingWebhookMethod:
		switch strings.ToUpper(value) {
		case "POST", "PUT", "PATCH":
		default:
			return invalid(ReasonInvalidEnum, "must be POST, PUT or PATCH")
		}
	case entity.SettingWebhookHeaders:
		if value == "" {
			return nil
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(value), &obj); err != nil {
			return invalid("invalid_json", "must be a JSON object")
		}
	case entity.SettingConversionValue:
		if value == "" {
			return nil
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
		if err != nil || d.IsNegative() {
			return invalid("invalid_number", "must be a non-negative decimal number")
		}
	case entity.SettingLeadNotificationMail:
		if value == "" {
			return nil
		}
		if _, err := mail.ParseAddressList(value); err != nil {
			return invalid("invalid_email", "must be a comma-separated list of e-mail addresses")
		}
	}
	return nil
}
