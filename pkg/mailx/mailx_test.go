package mailx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateMessage(t *testing.T) {
	t.Parallel()

	t.Run("accepts a well-formed message", func(t *testing.T) {
		require.NoError(t, ValidateMessage("alice@example.com", "Welcome", "Hello Alice"))
	})

	tests := []struct {
		name              string
		to, subject, body string
	}{
		{"empty recipient", "", "subject", "body"},
		{"whitespace recipient", "   ", "subject", "body"},
		{"malformed recipient", "not-an-address", "subject", "body"},
		{"missing tld", "alice@example", "subject", "body"},
		{"empty subject", "alice@example.com", "", "body"},
		{"empty body", "alice@example.com", "subject", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, ValidateMessage(tt.to, tt.subject, tt.body))
		})
	}
}

func TestLogMailer(t *testing.T) {
	t.Parallel()

	m := &LogMailer{}
	require.NoError(t, m.Send("alice@example.com", "Welcome", "Hello"))
	require.Error(t, m.Send("bad-address", "Welcome", "Hello"))
}
