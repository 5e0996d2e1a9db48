package mailer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendWelcome(t *testing.T) {
	d := &recordingDialer{}
	svc := NewEmailServiceWithDialer(d, "noreply@intellius.io", "Intellius")

	require.NoError(t, svc.SendWelcome("alice@example.com", "<alice>"))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"alice@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Welcome to Intellius"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "&lt;alice&gt;")
}

func TestSendWelcome_DialerError(t *testing.T) {
	boom := errors.New("smtp down")
	svc := NewEmailServiceWithDialer(&recordingDialer{err: boom}, "noreply@intellius.io", "Intellius")

	assert.ErrorIs(t, svc.SendWelcome("alice@example.com", "alice"), boom)
}

func TestSendWelcome_DisabledWithoutHost(t *testing.T) {
	svc := NewEmailService("", 587, "", "", "Intellius")

	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.SendWelcome("alice@example.com", "alice"))
}
