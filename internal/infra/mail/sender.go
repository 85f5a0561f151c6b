package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

//go:embed templates/*.html
var templatesFS embed.FS

var newLeadTemplate = template.Must(template.ParseFS(templatesFS, "templates/new_lead.html"))

// LeadNotifier avisa o time comercial por e-mail a cada lead novo.
// O destinatário vem da setting lead_notification_email, lida a cada envio.
type LeadNotifier struct {
	Sender   *EmailSender
	Settings entity.SettingRepositoryInterface

	send func(m *gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) Configured() bool {
	return s != nil && s.Host != ""
}

func (s *EmailSender) Send(m *gomail.Message) error {
	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func NewLeadNotifier(sender *EmailSender, settings entity.SettingRepositoryInterface) *LeadNotifier {
	n := &LeadNotifier{Sender: sender, Settings: settings}
	if sender.Configured() {
		n.send = sender.Send
	}
	return n
}

// NotifyNewLead não faz nada quando SMTP ou destinatário não estão configurados.
func (n *LeadNotifier) NotifyNewLead(ctx context.Context, lead *entity.Lead) error {
	if n.send == nil {
		return nil
	}

	to, err := entity.SettingString(ctx, n.Settings, entity.SettingLeadNotificationMail, "")
	if err != nil {
		return err
	}
	if to == "" {
		return nil
	}

	m, err := n.buildMessage(splitRecipients(to), lead)
	if err != nil {
		return err
	}
	return n.send(m)
}

func (n *LeadNotifier) buildMessage(to []string, lead *entity.Lead) (*gomail.Message, error) {
	data := NewLeadEmailData{
		ID:        lead.ID,
		FullName:  lead.FullName,
		Phone:     lead.Phone,
		Kind:      string(lead.Kind),
		TaxID:     lead.TaxIDValue(),
		UTMSource: lead.UTMSource,
		Campaign:  lead.UTMCampaign,
		CreatedAt: lead.CreatedAt,
	}

	var body bytes.Buffer
	if err := newLeadTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	from := n.Sender.From
	if from == "" {
		from = "nao-responda@onbongo.com.br"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", fmt.Sprintf("Novo lead %s: %s", kindLabel(lead.Kind), lead.FullName))
	m.SetBody("text/html", body.String())
	return m, nil
}

func kindLabel(k entity.LeadKind) string {
	if k == entity.LeadKindRetailer {
		return "lojista"
	}
	return "consumidor"
}

func splitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
