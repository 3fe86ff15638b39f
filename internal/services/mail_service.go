package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"path/filepath"
	"strconv"
	"strings"

	"aitools/internal/config"
)

type MailService struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	Enabled     bool
	SiteURL     string
	SiteName    string
	TemplateDir string

	// send is swapped in tests
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(cfg *config.Config) *MailService {
	s := &MailService{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		Enabled:     cfg.SMTP.Enabled,
		SiteURL:     cfg.SiteURL,
		SiteName:    cfg.SiteName,
		TemplateDir: filepath.Join(cfg.TemplatesDir, "email"),
		send:        smtp.SendMail,
	}
	if !s.Enabled {
		log.Println("[mail] disabled: smtp.enabled is false")
	}
	return s
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	go func() {
		if err := s.deliver(to, subject, body); err != nil {
			log.Printf("[mail] failed to send to %v: %v", to, err)
		} else {
			log.Printf("[mail] sent to %v: %s", to, subject)
		}
	}()
}

func (s *MailService) deliver(to []string, subject string, body string) error {
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	addr := s.Host + ":" + strconv.Itoa(s.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.SiteName, s.From, subject, mime, body))

	return s.send(addr, auth, s.From, to, msg)
}

func (s *MailService) parseTemplate(templateName string, data interface{}) (string, error) {
	t, err := template.ParseFiles(filepath.Join(s.TemplateDir, templateName))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}

func (s *MailService) render(to, templateName, subject string, data map[string]string) {
	if s == nil || !s.Enabled || to == "" {
		return
	}
	data["SiteName"] = s.SiteName
	data["SiteURL"] = s.SiteURL
	body, err := s.parseTemplate(templateName, data)
	if err != nil {
		log.Printf("[mail] error rendering %s: %v", templateName, err)
		return
	}
	s.sendAsync([]string{to}, subject, body)
}

func (s *MailService) SendSubmissionApproved(email, toolName, toolID string) {
	s.render(email, "submission_approved.html", toolName+" is now listed", map[string]string{
		"ToolName": toolName,
		"ToolLink": s.siteURL() + "/tool/" + toolID,
	})
}

func (s *MailService) SendSubmissionRejected(email, toolName string) {
	s.render(email, "submission_rejected.html", "About your submission: "+toolName, map[string]string{
		"ToolName": toolName,
	})
}

func (s *MailService) SendNewsletterWelcome(email string) {
	s.render(email, "newsletter_welcome.html", "Welcome to the "+s.siteName()+" newsletter", map[string]string{})
}

func (s *MailService) siteURL() string {
	if s == nil {
		return ""
	}
	return s.SiteURL
}

func (s *MailService) siteName() string {
	if s == nil {
		return ""
	}
	return s.SiteName
}
