package notification

import (
	"fmt"
	"strings"
	"text/template"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "welcome"}}Hi {{.name}},

Welcome to Phegon Bank. Your profile is ready.{{end}}

{{define "account-created"}}Hi {{.name}},

Your new {{.accountType}} account ({{.currency}}) has been created.
Account number: {{.accountNumber}}{{end}}

{{define "credit-alert"}}Hi {{.name}},

A credit of {{.amount}} was posted to account {{.accountNumber}} on {{.date}}.
Available balance: {{.balance}}{{end}}

{{define "debit-alert"}}Hi {{.name}},

A debit of {{.amount}} was posted to account {{.accountNumber}} on {{.date}}.
Available balance: {{.balance}}{{end}}

{{define "account-closed"}}Hi {{.name}},

Account {{.accountNumber}} was closed on {{.date}}. This cannot be undone.{{end}}
`))

// Render produces the mail body for a template name and its variables.
func Render(name string, vars map[string]any) (string, error) {
	if templates.Lookup(name) == nil {
		return "", fmt.Errorf("Render: unknown template %q", name)
	}
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, vars); err != nil {
		return "", fmt.Errorf("Render: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}
