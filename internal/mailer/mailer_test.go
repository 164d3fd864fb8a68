package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDialer struct {
	sent []*mail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestMailer(d Dialer) *Mailer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(d, Settings{From: "Gatherly <no-reply@gatherly.app>", FailureThreshold: 2, OpenTimeout: time.Minute}, logger)
}

func TestSendTicketConfirmation(t *testing.T) {
	d := &fakeDialer{}
	m := newTestMailer(d)

	err := m.SendTicketConfirmation(context.Background(), "ada@example.com", TicketEmail{
		FullName:  "Ada",
		Title:     "Forest walk",
		Address:   "Gdansk, Oliwa",
		StartTime: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
		Price:     "FREE",
		TicketID:  "t-1",
	})

	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Your ticket for Forest walk"}, d.sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Forest walk")
}

func TestSendRequiresRecipient(t *testing.T) {
	d := &fakeDialer{}
	m := newTestMailer(d)

	err := m.SendReminder(context.Background(), "", ReminderEmail{Title: "Forest walk"})

	assert.Error(t, err)
	assert.Empty(t, d.sent)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	m := newTestMailer(d)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := m.SendReminder(ctx, "ada@example.com", ReminderEmail{Title: "Forest walk"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	err := m.SendReminder(ctx, "ada@example.com", ReminderEmail{Title: "Forest walk"})
	assert.ErrorIs(t, err, ErrUnavailable)
}
