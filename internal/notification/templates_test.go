package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]any
		contains []string
	}{
		{
			name:     "welcome",
			template: "welcome",
			vars:     map[string]any{"name": "Ada"},
			contains: []string{"Hi Ada", "Welcome to Phegon Bank"},
		},
		{
			name:     "account created",
			template: "account-created",
			vars: map[string]any{
				"name":          "Ada",
				"accountType":   "SAVINGS",
				"currency":      "USD",
				"accountNumber": "6612345678",
			},
			contains: []string{"SAVINGS", "USD", "6612345678"},
		},
		{
			name:     "credit alert",
			template: "credit-alert",
			vars: map[string]any{
				"name":          "Ada",
				"amount":        "100",
				"accountNumber": "6612345678",
				"date":          "2025-01-02T15:04:05Z",
				"balance":       "150",
			},
			contains: []string{"credit of 100", "6612345678", "Available balance: 150"},
		},
		{
			name:     "debit alert",
			template: "debit-alert",
			vars: map[string]any{
				"name":          "Ada",
				"amount":        "80",
				"accountNumber": "6612345678",
				"date":          "2025-01-02T15:04:05Z",
				"balance":       "120",
			},
			contains: []string{"debit of 80", "Available balance: 120"},
		},
		{
			name:     "account closed",
			template: "account-closed",
			vars: map[string]any{
				"name":          "Ada",
				"accountNumber": "6612345678",
				"date":          "2025-01-02T15:04:05Z",
			},
			contains: []string{"6612345678", "closed"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, err := Render(tc.template, tc.vars)
			require.NoError(t, err)
			for _, want := range tc.contains {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("password-reset", map[string]any{})
	require.Error(t, err)
}
