package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

func TestRenderer_AllTemplatesLoad(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, key := range []string{
		"welcome", "password_changed", "quotation_sent", "tenant_onboarded", "invoice_generated",
		"payment_received", "payment_recorded", "cheque_bounced", "lease_expiring", "work_order_updated",
	} {
		_, err := r.Render(key, map[string]string{"name": "Ana"})
		assert.NoError(t, err, key)
	}
	assert.Len(t, r.Keys(), 10)
}

func TestRenderer_SubstitutesAndEscapes(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render("quotation_sent", map[string]string{
		"name":             "<b>Omar</b>",
		"quotation_number": "QT-202605-0001",
		"annual_rent":      "120,000.00",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "QT-202605-0001")
	assert.Contains(t, out, "120,000.00")
	assert.Contains(t, out, "&lt;b&gt;Omar&lt;/b&gt;")
	assert.Contains(t, out, "Ligue Imóveis")
}

func TestRenderer_MissingVariableRendersEmpty(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render("password_changed", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Hello ,")
	assert.NotContains(t, out, "no value")
}

func TestRenderer_UnknownKey(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render("does_not_exist", nil)
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	m := buildMessage("noreply@ligueimoveis.com", usecase.MailMessage{
		To:       "ana@example.com",
		ToName:   "Ana Lima",
		Subject:  "Welcome",
		HTMLBody: "<p>hi</p>",
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "From: noreply@ligueimoveis.com")
	assert.Contains(t, raw, `To: "Ana Lima" <ana@example.com>`)
	assert.Contains(t, raw, "Subject: Welcome")
	assert.Contains(t, raw, "text/html")
}

func TestEmailSender_RequiresHost(t *testing.T) {
	s := NewEmailSender("", 587, "", "", "noreply@ligueimoveis.com")
	err := s.Send(context.Background(), usecase.MailMessage{To: "a@b.com"})
	assert.Error(t, err)
}

func TestEmailSender_CancelledContext(t *testing.T) {
	s := NewEmailSender("smtp.example.com", 587, "", "", "noreply@ligueimoveis.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, usecase.MailMessage{To: "a@b.com"}), context.Canceled)
}
