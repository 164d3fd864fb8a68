// Package mailer renders and sends the transactional emails of the app, one message per
// recipient.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/go-mail/mail"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the breaker is open after repeated SMTP failures.
var ErrUnavailable = errors.New("mail service unavailable")

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TicketEmail struct {
	FullName  string
	Title     string
	Address   string
	StartTime time.Time
	Price     string
	TicketID  string
}

type ReminderEmail struct {
	FullName  string
	Title     string
	Address   string
	StartTime time.Time
}

var (
	ticketTmpl = template.Must(template.New("ticket").Parse(`<p>Hi {{.FullName}},</p>
<p>You're going to <strong>{{.Title}}</strong>.</p>
<p>{{.StartTime.Format "Mon, 02 Jan 2006 15:04 MST"}}<br/>{{.Address}}</p>
<p>Price: {{.Price}}<br/>Ticket: {{.TicketID}}</p>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(`<p>Hi {{.FullName}},</p>
<p><strong>{{.Title}}</strong> starts {{.StartTime.Format "Mon, 02 Jan 2006 15:04 MST"}}.</p>
<p>{{.Address}}</p>`))
)

type Mailer struct {
	dialer  Dialer
	from    string
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

type Settings struct {
	From             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func New(dialer Dialer, settings Settings, logger *slog.Logger) *Mailer {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	m := &Mailer{dialer: dialer, from: settings.From, logger: logger}
	m.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Mail circuit breaker changed state", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return m
}

func (m *Mailer) SendTicketConfirmation(ctx context.Context, to string, data TicketEmail) error {
	return m.send(ctx, to, "Your ticket for "+data.Title, ticketTmpl, data)
}

func (m *Mailer) SendReminder(ctx context.Context, to string, data ReminderEmail) error {
	return m.send(ctx, to, "Reminder: "+data.Title+" is coming up", reminderTmpl, data)
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data any) error {
	if to == "" {
		return fmt.Errorf("no recipient for %q", subject)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render %s email: %v", tmpl.Name(), err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	_, err := m.breaker.Execute(func() (any, error) {
		return nil, m.dialer.DialAndSend(msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", tmpl.Name(), err)
	}
	return nil
}
