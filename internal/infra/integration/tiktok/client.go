package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/integration/conversion"
)

const (
	DefaultBaseURL = "https://business-api.tiktok.com"
	trackPath      = "/open_api/v1.3/event/track/"
	eventName      = "SubmitForm"
)

// Client envia o evento SubmitForm para a Events API do TikTok.
type Client struct {
	BaseURL    string
	Settings   entity.SettingRepositoryInterface
	Logs       entity.DeliveryLogRepositoryInterface
	HTTPClient *http.Client
	Log        logrus.FieldLogger

	now func() time.Time
}

func NewClient(settings entity.SettingRepositoryInterface, logs entity.DeliveryLogRepositoryInterface, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		BaseURL:    DefaultBaseURL,
		Settings:   settings,
		Logs:       logs,
		HTTPClient: conversion.NewHTTPClient(),
		Log:        log.WithField("channel", entity.ChannelTikTok),
		now:        time.Now,
	}
}

func (c *Client) Platform() string {
	return entity.ChannelTikTok
}

func (c *Client) Report(ctx context.Context, lead *entity.Lead) entity.DeliveryResult {
	log := c.Log.WithField("lead_id", lead.ID)
	entry := &entity.DeliveryLog{
		LeadID:   lead.ID,
		Channel:  entity.ChannelTikTok,
		Endpoint: c.BaseURL + trackPath,
		Method:   http.MethodPost,
	}

	pixelID, token, testCode, err := c.credentials(ctx)
	if err != nil {
		entry.ErrorMessage = err.Error()
		return conversion.Record(ctx, c.Logs, log, entry)
	}

	event, err := c.buildEvent(ctx, lead)
	if err != nil {
		entry.ErrorMessage = err.Error()
		return conversion.Record(ctx, c.Logs, log, entry)
	}
	entry.EventID = event.EventID

	body, err := json.Marshal(EventRequest{
		EventSource:   "web",
		EventSourceID: pixelID,
		Data:          []Event{event},
		TestEventCode: testCode,
	})
	if err != nil {
		entry.ErrorMessage = err.Error()
		return conversion.Record(ctx, c.Logs, log, entry)
	}
	entry.Payload = string(body)

	status, respBody, err := conversion.PostJSON(ctx, c.HTTPClient, entry.Endpoint, c.authHeaders(token), body)
	if err != nil {
		entry.ErrorMessage = err.Error()
		return conversion.Record(ctx, c.Logs, log, entry)
	}

	entry.ResponseStatus = &status
	entry.ResponseBody = string(respBody)
	entry.Success, entry.ErrorMessage = evaluate(status, respBody)

	return conversion.Record(ctx, c.Logs, log, entry)
}

func (c *Client) authHeaders(token string) map[string]string {
	return map[string]string{"Access-Token": token}
}

func (c *Client) credentials(ctx context.Context) (pixelID, token, testCode string, err error) {
	if pixelID, err = entity.SettingString(ctx, c.Settings, entity.SettingTikTokPixelID, ""); err != nil {
		return
	}
	if token, err = entity.SettingString(ctx, c.Settings, entity.SettingTikTokAccessToken, ""); err != nil {
		return
	}
	if pixelID == "" || token == "" {
		err = entity.ErrNotConfigured
		return
	}
	testCode, err = entity.SettingString(ctx, c.Settings, entity.SettingTikTokTestEventCode, "")
	return
}

func (c *Client) buildEvent(ctx context.Context, lead *entity.Lead) (Event, error) {
	value, err := conversion.Value(ctx, c.Settings)
	if err != nil {
		return Event{}, err
	}
	siteURL, err := conversion.SiteURL(ctx, c.Settings)
	if err != nil {
		return Event{}, err
	}

	now := c.now()
	user := User{
		IP:        lead.IPAddress,
		UserAgent: lead.UserAgent,
	}
	if phone := conversion.NormalizePhoneE164(lead.Phone); phone != "" {
		user.Phone = conversion.HashSHA256(phone)
	}
	if lead.BrowserID != "" {
		user.ExternalID = conversion.HashSHA256(lead.BrowserID)
	}

	return Event{
		Event:     eventName,
		EventTime: now.Unix(),
		EventID:   conversion.NewEventID(now),
		User:      user,
		Page: Page{
			URL:      siteURL,
			Referrer: lead.Referrer,
		},
		Properties: Properties{
			ContentType: "form",
			Value:       json.Number(value.StringFixed(2)),
			Currency:    conversion.Currency,
			Contents: []Content{{
				ContentType: "product",
				ContentID:   "lead_generation",
				ContentName: "Lead Generation Form",
			}},
		},
	}, nil
}

// evaluate exige 2xx e code == 0 no corpo.
func evaluate(status int, body []byte) (bool, string) {
	if status < 200 || status >= 300 {
		return false, fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Sprintf("resposta inválida da TikTok: %v", err)
	}
	if resp.Code != 0 {
		return false, fmt.Sprintf("tiktok code %d: %s", resp.Code, resp.Message)
	}
	return true, ""
}
