package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/integration/conversion"
)

const (
	DefaultBaseURL = "https://graph.facebook.com"
	apiVersion     = "v18.0"
	eventName      = "Lead"
)

// Client envia o evento Lead para a Conversions API da Meta.
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
		Log:        log.WithField("channel", entity.ChannelMeta),
		now:        time.Now,
	}
}

func (c *Client) Platform() string {
	return entity.ChannelMeta
}

func (c *Client) Report(ctx context.Context, lead *entity.Lead) entity.DeliveryResult {
	log := c.Log.WithField("lead_id", lead.ID)
	entry := &entity.DeliveryLog{
		LeadID:  lead.ID,
		Channel: entity.ChannelMeta,
		Method:  http.MethodPost,
	}

	pixelID, token, testCode, err := c.credentials(ctx)
	if err != nil {
		entry.Endpoint = c.BaseURL
		entry.ErrorMessage = err.Error()
		return conversion.Record(ctx, c.Logs, log, entry)
	}
	entry.Endpoint = fmt.Sprintf("%s/%s/%s/events", c.BaseURL, apiVersion, url.PathEscape(pixelID))

	event, err := c.buildEvent(ctx, lead)
	if err != nil {
		entry.ErrorMessage = err.Error()
		return conversion.Record(ctx, c.Logs, log, entry)
	}
	entry.EventID = event.EventID

	body, err := json.Marshal(EventRequest{Data: []Event{event}, TestEventCode: testCode})
	if err != nil {
		entry.ErrorMessage = err.Error()
		return conversion.Record(ctx, c.Logs, log, entry)
	}
	entry.Payload = string(body)

	// o token vai só na query da requisição, nunca no endpoint registrado
	query := url.Values{"access_token": {token}}.Encode()
	status, respBody, err := conversion.PostJSON(ctx, c.HTTPClient, entry.Endpoint+"?"+query, nil, body)
	if err != nil {
		entry.ErrorMessage = sendErrorMessage(entry.Endpoint, err)
		return conversion.Record(ctx, c.Logs, log, entry)
	}

	entry.ResponseStatus = &status
	entry.ResponseBody = string(respBody)
	if status >= 200 && status < 300 {
		entry.Success = true
	} else {
		entry.ErrorMessage = errorMessage(status, respBody)
	}

	return conversion.Record(ctx, c.Logs, log, entry)
}

func (c *Client) credentials(ctx context.Context) (pixelID, token, testCode string, err error) {
	if pixelID, err = entity.SettingString(ctx, c.Settings, entity.SettingMetaPixelID, ""); err != nil {
		return
	}
	if token, err = entity.SettingString(ctx, c.Settings, entity.SettingMetaAccessToken, ""); err != nil {
		return
	}
	if pixelID == "" || token == "" {
		err = entity.ErrNotConfigured
		return
	}
	testCode, err = entity.SettingString(ctx, c.Settings, entity.SettingMetaTestEventCode, "")
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
	user := UserData{
		ClientIPAddress: lead.IPAddress,
		ClientUserAgent: lead.UserAgent,
	}
	if phone := conversion.NormalizePhoneE164(lead.Phone); phone != "" {
		user.Phone = []string{conversion.HashSHA256(phone)}
	}
	first, last := conversion.NameParts(lead.FullName)
	if first != "" {
		user.FirstName = []string{conversion.HashSHA256(first)}
	}
	if last != "" {
		user.LastName = []string{conversion.HashSHA256(last)}
	}
	if lead.BrowserID != "" {
		user.ExternalID = []string{conversion.HashSHA256(lead.BrowserID)}
	}

	return Event{
		EventName:      eventName,
		EventTime:      now.Unix(),
		EventID:        conversion.NewEventID(now),
		ActionSource:   "website",
		EventSourceURL: siteURL,
		UserData:       user,
		CustomData: CustomData{
			ContentName:     "Lead Generation",
			ContentCategory: string(lead.Kind),
			Value:           json.Number(value.StringFixed(2)),
			Currency:        conversion.Currency,
			UTMSource:       lead.UTMSource,
			UTMMedium:       lead.UTMMedium,
			UTMCampaign:     lead.UTMCampaign,
			UTMContent:      lead.UTMContent,
			UTMTerm:         lead.UTMTerm,
		},
	}, nil
}

// sendErrorMessage troca a URL do *url.Error pelo endpoint sem o token.
func sendErrorMessage(endpoint string, err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Sprintf("%s %q: %v", ue.Op, endpoint, ue.Err)
	}
	return err.Error()
}

func errorMessage(status int, body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}
