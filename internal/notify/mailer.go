package notify

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/OficinaProServices/oficina-api/internal/config"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer devolve um mailer que loga e descarta quando o SMTP não está
// configurado, para ambientes de desenvolvimento
func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{from: cfg.MailFrom}

	if cfg.SMTPHost != "" && cfg.SMTPUser != "" {
		m.dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}

	return m
}

func (m *Mailer) send(to, subject, body string) error {
	if m == nil || m.dialer == nil {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("smtp not configured, skipping email")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

func (m *Mailer) SendAppointmentConfirmation(to, clientName string, start time.Time) {
	if to == "" {
		return
	}

	body := fmt.Sprintf(
		"Olá %s, seu agendamento foi confirmado para %s.",
		clientName,
		start.Format("02/01/2006 15:04"),
	)

	if err := m.send(to, "Agendamento confirmado", body); err != nil {
		logrus.WithError(err).Warn("failed to send confirmation email")
	}
}

func (m *Mailer) SendAppointmentCancellation(to, clientName string, start time.Time) {
	if to == "" {
		return
	}

	body := fmt.Sprintf(
		"Olá %s, seu agendamento de %s foi cancelado.",
		clientName,
		start.Format("02/01/2006 15:04"),
	)

	if err := m.send(to, "Agendamento cancelado", body); err != nil {
		logrus.WithError(err).Warn("failed to send cancellation email")
	}
}
