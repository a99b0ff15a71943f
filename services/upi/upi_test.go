package upi

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentLink(t *testing.T) {
	link := PaymentLink("agency@upi", "City Gas", "GB-2026-ABCD1234", 1700, "Cylinder booking")

	require.True(t, strings.HasPrefix(link, "upi://pay?"))

	values, err := url.ParseQuery(strings.TrimPrefix(link, "upi://pay?"))
	require.NoError(t, err)

	assert.Equal(t, "agency@upi", values.Get("pa"))
	assert.Equal(t, "City Gas", values.Get("pn"))
	assert.Equal(t, "1700.00", values.Get("am"))
	assert.Equal(t, "INR", values.Get("cu"))
	assert.Equal(t, "GB-2026-ABCD1234", values.Get("tr"))
	assert.Equal(t, "Cylinder booking", values.Get("tn"))
}

func TestPaymentLinkOmitsEmptyNote(t *testing.T) {
	link := PaymentLink("agency@upi", "City Gas", "REF", 850, "")

	values, err := url.ParseQuery(strings.TrimPrefix(link, "upi://pay?"))
	require.NoError(t, err)
	assert.False(t, values.Has("tn"))
}

func TestPaymentLinkFromEnv(t *testing.T) {
	t.Setenv("UPI_PAYEE_VPA", "agency@upi")
	t.Setenv("UPI_PAYEE_NAME", "")

	link, err := PaymentLinkFromEnv("REF", 850, "note")
	require.NoError(t, err)
	assert.Contains(t, link, "pa=agency%40upi")
	// Payee name falls back to the default.
	assert.Contains(t, link, "pn=Gas+Agency")
}

func TestPaymentLinkFromEnvMissingVPA(t *testing.T) {
	t.Setenv("UPI_PAYEE_VPA", "")

	_, err := PaymentLinkFromEnv("REF", 850, "")
	assert.Error(t, err)
}
