package webhook

import (
	"time"

	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/integration/conversion"
)

const (
	payloadSource  = "onbongo_b2b"
	payloadVersion = "1.0"
)

type LeadData struct {
	FullName  string          `json:"full_name"`
	Phone     string          `json:"phone"`
	PhoneE164 string          `json:"phone_e164"`
	Kind      entity.LeadKind `json:"kind"`
	TaxID     *string         `json:"tax_id"`
}

type TrackingData struct {
	IPAddress   string `json:"ip_address"`
	UserAgent   string `json:"user_agent"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	UTMContent  string `json:"utm_content"`
	UTMTerm     string `json:"utm_term"`
	Referrer    string `json:"referrer"`
	BrowserID   string `json:"browser_id"`
	SessionID   string `json:"session_id"`
}

type Metadata struct {
	Source        string    `json:"source"`
	Version       string    `json:"version"`
	WebhookSentAt time.Time `json:"webhook_sent_at"`
	Test          bool      `json:"test,omitempty"`
}

// Payload é o corpo enviado ao CRM para cada lead.
type Payload struct {
	ID           int64        `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	LeadData     LeadData     `json:"lead_data"`
	TrackingData TrackingData `json:"tracking_data"`
	Metadata     Metadata     `json:"metadata"`
}

type TestPayload struct {
	Test      bool      `json:"test"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	LeadData  LeadData  `json:"lead_data"`
	Metadata  Metadata  `json:"metadata"`
}

func newPayload(lead *entity.Lead, sentAt time.Time) Payload {
	return Payload{
		ID:        lead.ID,
		Timestamp: lead.CreatedAt,
		LeadData: LeadData{
			FullName:  lead.FullName,
			Phone:     lead.Phone,
			PhoneE164: conversion.NormalizePhoneE164(lead.Phone),
			Kind:      lead.Kind,
			TaxID:     lead.TaxID,
		},
		TrackingData: TrackingData{
			IPAddress:   lead.IPAddress,
			UserAgent:   lead.UserAgent,
			UTMSource:   lead.UTMSource,
			UTMMedium:   lead.UTMMedium,
			UTMCampaign: lead.UTMCampaign,
			UTMContent:  lead.UTMContent,
			UTMTerm:     lead.UTMTerm,
			Referrer:    lead.Referrer,
			BrowserID:   lead.BrowserID,
			SessionID:   lead.SessionID,
		},
		Metadata: Metadata{
			Source:        payloadSource,
			Version:       payloadVersion,
			WebhookSentAt: sentAt,
		},
	}
}

func newTestPayload(sentAt time.Time) TestPayload {
	return TestPayload{
		Test:      true,
		Timestamp: sentAt,
		Message:   "Teste de conectividade do webhook OnBongo B2B",
		LeadData: LeadData{
			FullName:  "Lead de Teste",
			Phone:     "11999999999",
			PhoneE164: "5511999999999",
			Kind:      entity.LeadKindConsumer,
		},
		Metadata: Metadata{
			Source:        payloadSource,
			Version:       payloadVersion,
			WebhookSentAt: sentAt,
			Test:          true,
		},
	}
}
