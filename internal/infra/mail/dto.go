package mail

import "time"

type NewLeadEmailData struct {
	ID        int64
	FullName  string
	Phone     string
	Kind      string
	TaxID     string
	UTMSource string
	Campaign  string
	CreatedAt time.Time
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
