package tiktok

import "encoding/json"

type User struct {
	Phone      string `json:"phone,omitempty"`
	IP         string `json:"ip,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

type Page struct {
	URL      string `json:"url"`
	Referrer string `json:"referrer"`
}

type Content struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	ContentName string `json:"content_name"`
}

type Properties struct {
	ContentType string      `json:"content_type"`
	Value       json.Number `json:"value"`
	Currency    string      `json:"currency"`
	Contents    []Content   `json:"contents"`
}

type Event struct {
	Event      string     `json:"event"`
	EventTime  int64      `json:"event_time"`
	EventID    string     `json:"event_id"`
	User       User       `json:"user"`
	Page       Page       `json:"page"`
	Properties Properties `json:"properties"`
}

type EventRequest struct {
	EventSource   string  `json:"event_source"`
	EventSourceID string  `json:"event_source_id"`
	Data          []Event `json:"data"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

// Response: a TikTok responde 200 mesmo para erros de negócio, o que vale é code == 0.
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}
