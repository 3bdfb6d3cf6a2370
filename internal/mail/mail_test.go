package mail

import (
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarifflyapp/tariffly-server/internal/config"
	"github.com/tarifflyapp/tariffly-server/internal/errors"
)

func newTestMailer(sent *[][]byte, to *[]string) *Mailer {
	m := New(config.MailConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "mailer",
		Password: "secret",
		From:     "noreply@tariffly.dev",
	}, slog.New(slog.DiscardHandler))

	m.send = func(_ string, _ smtp.Auth, _ string, rcpt []string, msg []byte) error {
		*to = append(*to, rcpt...)
		*sent = append(*sent, msg)
		return nil
	}
	return m
}

func TestSendESGRequest(t *testing.T) {
	var sent [][]byte
	var to []string
	m := newTestMailer(&sent, &to)

	err := m.SendESGRequest(ESGRequest{
		VendorEmail: "sustainability@nike.com",
		VendorName:  "Nike",
		ProductName: "Air Zoom Pegasus",
	})
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, []string{"sustainability@nike.com"}, to)

	msg := string(sent[0])
	assert.Contains(t, msg, "Subject: ESG Score Registration Request")
	assert.Contains(t, msg, "Dear Nike Team")
	assert.Contains(t, msg, `"Air Zoom Pegasus"`)
}

func TestSendESGRequest_RequiresEmail(t *testing.T) {
	var sent [][]byte
	var to []string
	m := newTestMailer(&sent, &to)

	err := m.SendESGRequest(ESGRequest{VendorName: "Nike"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Empty(t, sent)
}

func TestSendESGRequest_Disabled(t *testing.T) {
	m := New(config.MailConfig{}, slog.New(slog.DiscardHandler))

	assert.False(t, m.Enabled())
	err := m.SendESGRequest(ESGRequest{VendorEmail: "a@b.com"})
	assert.Error(t, err)
}
