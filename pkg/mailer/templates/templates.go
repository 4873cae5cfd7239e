package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

// Known template names carried in EmailJob.Template.
const (
	Welcome         = "welcome"
	PasswordChanged = "password_changed"
)

var welcomeTpl = template.Must(template.New(Welcome).Parse(`
<html><body>
<h2>Welcome to Spotifood{{if .Name}}, {{.Name}}{{end}}!</h2>
<p>Your account {{.Email}} is ready. Save a delivery address and start ordering.</p>
</body></html>`))

var passwordChangedTpl = template.Must(template.New(PasswordChanged).Parse(`
<html><body>
<h2>Your password was changed</h2>
<p>The password for {{.Email}} was changed{{if .Time}} at {{.Time}}{{end}}.
If this wasn't you, contact support immediately.</p>
</body></html>`))

// Subject returns the subject line for a known template.
func Subject(name string) string {
	switch name {
	case Welcome:
		return "Welcome to Spotifood"
	case PasswordChanged:
		return "Your password was changed"
	default:
		return "Notification"
	}
}

// RenderHTML renders a known template with the given data.
func RenderHTML(name string, data map[string]any) (string, error) {
	var t *template.Template
	switch name {
	case Welcome:
		t = welcomeTpl
	case PasswordChanged:
		t = passwordChangedTpl
	default:
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
