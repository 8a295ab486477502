package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalogs(t *testing.T) {
	b, err := New("en", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "es", "fr"}, b.Locales())
	assert.Equal(t, "Facture", b.T("fr", "invoice.title"))
	assert.Equal(t, "We received your booking BK-1", b.T("en", "email.booking_received.subject", "BK-1"))
}

func TestFallbacks(t *testing.T) {
	b, err := New("en", "")
	require.NoError(t, err)

	// inquiry_notify only exists in English
	assert.Equal(t, "New inquiry from Ana", b.T("fr", "email.inquiry_notify.subject", "Ana"))
	assert.Equal(t, "Too many requests. Please slow down.", b.T("de", "errors.rate_limited"))
	assert.Equal(t, "no.such.key", b.T("en", "no.such.key"))
	assert.False(t, b.Has("en", "no.such.key"))
}

func TestMatchAcceptLanguage(t *testing.T) {
	b, err := New("en", "")
	require.NoError(t, err)

	assert.Equal(t, "fr", b.Match("fr-CA,fr;q=0.9,en;q=0.8"))
	assert.Equal(t, "es", b.Match("es-MX"))
	assert.Equal(t, "en", b.Match("ja-JP"))
	assert.Equal(t, "en", b.Match(""))
	assert.True(t, b.Supported("FR"))
	assert.False(t, b.Supported("de"))
}

func TestOverrideDirAndWatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("errors:\n  not_found: \"Nothing here\"\n"), 0o644))

	b, err := New("en", dir)
	require.NoError(t, err)
	assert.Equal(t, "Nothing here", b.T("en", "errors.not_found"))
	assert.Equal(t, "You need to sign in.", b.T("en", "errors.unauthorized"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Watch(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.yaml"), []byte("errors:\n  not_found: \"Nicht gefunden\"\n"), 0o644))
	assert.Eventually(t, func() bool {
		return b.T("de", "errors.not_found") == "Nicht gefunden"
	}, 2*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool { return b.Supported("de") }, 2*time.Second, 20*time.Millisecond)
}

func TestUnknownDefaultLocale(t *testing.T) {
	_, err := New("xx", "")
	assert.Error(t, err)
}
