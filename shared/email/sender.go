package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"anipick/internal/models"
	"anipick/shared/config"
)

//go:embed templates/digest.html
var templates embed.FS

var digestTemplate = template.Must(template.New("digest.html").Funcs(template.FuncMap{
	"join": strings.Join,
	"percent": func(progress, total int) int {
		if total <= 0 {
			return 0
		}
		p := progress * 100 / total
		return min(max(p, 0), 100)
	},
	"duration": func(seconds int) string {
		if seconds <= 0 {
			return "?"
		}
		return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
	},
}).ParseFS(templates, "templates/digest.html"))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config *config.EmailConfig
	send   sendFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
	}
}

// SendDigest emails tonight's pick.
func (s *Sender) SendDigest(report *models.DigestReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if report.Pick == nil {
		return nil // nothing was drawn
	}

	subject := fmt.Sprintf("Tonight's anime: %s (%s)", report.Title, report.Date.Format("Jan 2, 2006"))

	body, err := generateDigestBody(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	return s.sendViaSMTP(subject, htmlBody)
}

func (s *Sender) sendViaSMTP(subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return s.send(addr, auth, s.config.FromEmail, to, msg)
}

func generateDigestBody(report *models.DigestReport) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
