package conversion

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/metrics"
)

const (
	DefaultTimeout  = 30 * time.Second
	maxResponseBody = 64 << 10
)

func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// PostJSON envia o corpo e devolve status e resposta (limitada a 64 KiB).
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	return resp.StatusCode, respBody, nil
}

// Record grava a tentativa no log de entregas e devolve o resultado para o reportAll.
// Falha ao gravar o log não muda o resultado da plataforma.
func Record(ctx context.Context, logs entity.DeliveryLogRepositoryInterface, log logrus.FieldLogger, entry *entity.DeliveryLog) entity.DeliveryResult {
	if err := logs.Append(ctx, entry); err != nil {
		log.WithError(err).Error("❌ Falha ao registrar evento de conversão")
	}
	metrics.RecordDelivery(entry.Channel, entry.Success, false)

	result := entity.DeliveryResult{
		Channel: entry.Channel,
		Success: entry.Success,
		EventID: entry.EventID,
		Error:   entry.ErrorMessage,
	}
	if entry.ResponseStatus != nil {
		result.StatusCode = *entry.ResponseStatus
	}

	if entry.Success {
		log.WithField("event_id", entry.EventID).Info("✅ Conversão enviada")
	} else {
		log.WithFields(logrus.Fields{"event_id": entry.EventID, "error": entry.ErrorMessage}).Error("❌ Erro ao enviar conversão")
	}
	return result
}
