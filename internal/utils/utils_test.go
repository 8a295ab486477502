package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Côte d'Azur Escape", "cote-d-azur-escape"},
		{"  Bali -- 7 Days!  ", "bali-7-days"},
		{"Ha Long Bay & Sapa Trek", "ha-long-bay-sapa-trek"},
		{"", ""},
		{"日本", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(123450, "usd"))
	assert.Equal(t, "€0.05", FormatMoney(5, "EUR"))
	assert.Equal(t, "-$10.00", FormatMoney(-1000, "usd"))
	assert.Equal(t, "JPY 12,000", FormatMoney(12000, "jpy"))
	assert.Equal(t, "CHF 99.90", FormatMoney(9990, "chf"))
}

func TestParseMoneyToCents(t *testing.T) {
	v, err := ParseMoneyToCents("$1,234.5")
	require.NoError(t, err)
	assert.Equal(t, int64(123450), v)

	v, err = ParseMoneyToCents("80")
	require.NoError(t, err)
	assert.Equal(t, int64(8000), v)

	_, err = ParseMoneyToCents("1.234")
	assert.Error(t, err)
	_, err = ParseMoneyToCents("")
	assert.Error(t, err)
}

func TestParseDateAndStartOfDay(t *testing.T) {
	d, err := ParseDate(" 2026-03-01 ")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", FormatDate(d))

	ts := time.Date(2026, 3, 1, 17, 45, 0, 0, time.UTC)
	assert.Equal(t, d, StartOfDay(ts))

	_, err = ParseDate("01/03/2026")
	assert.Error(t, err)
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	out, err := RenderMarkdown("# Day one\n\n<script>alert(1)</script>\n\n- swim\n- hike")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="day-one">Day one</h1>`)
	assert.Contains(t, out, "<li>swim</li>")
	assert.False(t, strings.Contains(out, "<script>"))
}

func TestSafeFilenamePart(t *testing.T) {
	assert.Equal(t, "NA", SafeFilenamePart("  "))
	assert.Equal(t, "BK-1_2", SafeFilenamePart("BK-1/2"))
}
