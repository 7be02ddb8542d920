package alerts

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"financeia/internal/amqp"
	"financeia/internal/core"
	"financeia/internal/log"
)

// SMTPConfig carries the connection parameters for the alert mailbox.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Mailer turns invoice alert messages into reminder emails.
type Mailer struct {
	cfg    SMTPConfig
	logger *log.Logger

	// send is swapped out in tests.
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg SMTPConfig, logger *log.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentAlerts),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendInvoiceAlert emails the card holder that an invoice is about to fall due.
func (m *Mailer) SendInvoiceAlert(msg *amqp.InvoiceAlertMessage) error {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{msg.UserEmail}
	e.Subject = fmt.Sprintf("Fatura do cartão %s vence em %s", msg.CardName, msg.DueDate)

	total := core.Money{Cents: msg.TotalCents}
	body := fmt.Sprintf("Olá %s,\n\n", msg.UserName)
	body += fmt.Sprintf(
		"A fatura do cartão %s (ciclo %s) no valor de %s vence em %s.\n"+
			"Programe o pagamento para evitar juros.\n",
		msg.CardName, msg.Cycle, total.FormatBRL(), msg.DueDate,
	)
	body += "\nAbraços,\nFinanceia"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(e, addr, auth); err != nil {
		return fmt.Errorf("send alert email to %s: %w", msg.UserEmail, err)
	}

	m.logger.Info("alert email sent",
		"to", msg.UserEmail,
		log.FieldCardID, msg.CardID,
		log.FieldCycle, msg.Cycle)
	return nil
}
