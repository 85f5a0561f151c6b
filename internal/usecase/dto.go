package usecase

type TrackingInput struct {
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	BrowserID   string `json:"browser_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
}

// SubmitLeadInput é o corpo de POST /leads.
type SubmitLeadInput struct {
	FullName string         `json:"full_name"`
	Phone    string         `json:"phone"`
	Kind     string         `json:"kind"`
	TaxID    string         `json:"tax_id,omitempty"`
	Tracking *TrackingInput `json:"tracking,omitempty"`
}

// RequestContext carrega o que vem do próprio request HTTP, não do corpo.
type RequestContext struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// PlatformResult é o resultado de uma plataforma dentro do reportAll.
type PlatformResult struct {
	Platform string `json:"platform"`
	Success  bool   `json:"success"`
	EventID  string `json:"event_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ConversionReport struct {
	LeadID   int64            `json:"lead_id"`
	Reported bool             `json:"reported"`
	Results  []PlatformResult `json:"results"`
}
