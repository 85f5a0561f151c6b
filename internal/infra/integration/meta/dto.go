package meta

import "encoding/json"

type UserData struct {
	Phone           []string `json:"ph,omitempty"`
	FirstName       []string `json:"fn,omitempty"`
	LastName        []string `json:"ln,omitempty"`
	ClientIPAddress string   `json:"client_ip_address,omitempty"`
	ClientUserAgent string   `json:"client_user_agent,omitempty"`
	ExternalID      []string `json:"external_id,omitempty"`
}

type CustomData struct {
	ContentName     string      `json:"content_name"`
	ContentCategory string      `json:"content_category"`
	Value           json.Number `json:"value"`
	Currency        string      `json:"currency"`
	UTMSource       string      `json:"utm_source,omitempty"`
	UTMMedium       string      `json:"utm_medium,omitempty"`
	UTMCampaign     string      `json:"utm_campaign,omitempty"`
	UTMContent      string      `json:"utm_content,omitempty"`
	UTMTerm         string      `json:"utm_term,omitempty"`
}

type Event struct {
	EventName      string     `json:"event_name"`
	EventTime      int64      `json:"event_time"`
	EventID        string     `json:"event_id"`
	ActionSource   string     `json:"action_source"`
	EventSourceURL string     `json:"event_source_url"`
	UserData       UserData   `json:"user_data"`
	CustomData     CustomData `json:"custom_data"`
}

type EventRequest struct {
	Data          []Event `json:"data"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}
