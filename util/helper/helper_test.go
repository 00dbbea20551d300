package helper_util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromEmail(t *testing.T) {
	cases := map[string]string{
		"jane.doe@ucook.co.za":      "Jane Doe",
		"JOHN_smith-jr@example.com": "John Smith Jr",
		"solo@example.com":          "Solo",
		"a..b@example.com":          "A B",
	}
	for email, want := range cases {
		assert.Equal(t, want, NameFromEmail(email), email)
	}
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTime("2024-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = ParseTime("yesterday")
	assert.Error(t, err)

	none, err := ParseNullableTime(" ")
	require.NoError(t, err)
	assert.Nil(t, none)
}
