package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/shandysiswandi/diarium/internal/notification/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(
	template.New("email").Option("missingkey=zero").ParseFS(templateFS, "templates/*.html"),
)

var emailSubjects = map[entity.Template]string{
	entity.TemplateSignupOTP:        "Verify your email",
	entity.TemplatePasswordResetOTP: "Reset your password",
	entity.TemplateReminder:         "Reminder: %s",
	entity.TemplateNoteExport:       "Your notes export is ready",
}

func renderEmail(tpl entity.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, tpl.String()+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", tpl, err)
	}

	return buf.String(), nil
}
