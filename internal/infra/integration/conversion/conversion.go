// Package conversion reúne o que Meta e TikTok compartilham: hash de dados pessoais,
// telefone em E.164, event id e o valor monetário da conversão.
package conversion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

const (
	Currency      = "BRL"
	DefaultRegion = "BR"
)

var DefaultValue = decimal.RequireFromString("50.00")

// HashSHA256 normaliza (trim + minúsculas) antes do hash, como Meta e TikTok exigem.
func HashSHA256(v string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(v))))
	return hex.EncodeToString(sum[:])
}

// NormalizePhoneE164 devolve o telefone só com dígitos, já com o DDI (5511987654321).
// Se o libphonenumber não reconhecer o número, cai para os dígitos puros.
func NormalizePhoneE164(phone string) string {
	digits := onlyDigits(phone)
	if digits == "" {
		return ""
	}

	num, err := libphonenumber.Parse(digits, DefaultRegion)
	if err != nil {
		return digits
	}
	return strings.TrimPrefix(libphonenumber.Format(num, libphonenumber.E164), "+")
}

// NameParts devolve o primeiro e o último nome em minúsculas. Nome de uma palavra só não tem sobrenome.
func NameParts(fullName string) (first, last string) {
	parts := strings.Fields(strings.ToLower(fullName))
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

// NewEventID gera ids no formato evt_<unix ms>_<9 chars>.
func NewEventID(now time.Time) string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("evt_%d_%s", now.UnixMilli(), short)
}

// Value lê conversion_value; vazio ou inválido vira 50.00.
func Value(ctx context.Context, settings entity.SettingRepositoryInterface) (decimal.Decimal, error) {
	raw, err := entity.SettingString(ctx, settings, entity.SettingConversionValue, "")
	if err != nil {
		return decimal.Decimal{}, err
	}
	if raw == "" {
		return DefaultValue, nil
	}

	v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil || v.IsNegative() {
		return DefaultValue, nil
	}
	return v.Round(2), nil
}

// SiteURL monta a URL da landing page a partir de site_domain.
func SiteURL(ctx context.Context, settings entity.SettingRepositoryInterface) (string, error) {
	domain, err := entity.SettingString(ctx, settings, entity.SettingSiteDomain, "b2b.onbongo.com.br")
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain, nil
	}
	return "https://" + domain, nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
