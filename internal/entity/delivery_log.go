package entity

import (
	"context"
	"time"
)

const (
	ChannelWebhook = "webhook"
	ChannelMeta    = "meta"
	ChannelTikTok  = "tiktok"
)

// DeliveryLog registra uma tentativa de entrega. Nunca é atualizado depois de criado.
type DeliveryLog struct {
	ID             int64     `json:"id"`
	LeadID         int64     `json:"lead_id"`
	Channel        string    `json:"channel"`
	Endpoint       string    `json:"endpoint"`
	Method         string    `json:"method"`
	EventID        string    `json:"event_id,omitempty"`
	Payload        string    `json:"payload"`
	ResponseStatus *int      `json:"response_status,omitempty"`
	ResponseBody   string    `json:"response_body,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Success        bool      `json:"success"`
	CreatedAt      time.Time `json:"created_at"`
}

type DeliveryLogFilter struct {
	LeadID  int64
	Channel string
	Limit   int
	Offset  int
}

func (f DeliveryLogFilter) Matches(l *DeliveryLog) bool {
	if f.LeadID != 0 && l.LeadID != f.LeadID {
		return false
	}
	if f.Channel != "" && l.Channel != f.Channel {
		return false
	}
	return true
}

// DeliveryResult é o retorno de um canal (webhook ou plataforma de conversão).
type DeliveryResult struct {
	Channel    string `json:"channel"`
	Success    bool   `json:"success"`
	Skipped    bool   `json:"skipped,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type DeliveryLogRepositoryInterface interface {
	Append(ctx context.Context, log *DeliveryLog) error
	List(ctx context.Context, filter DeliveryLogFilter) ([]DeliveryLog, int, error)
}
