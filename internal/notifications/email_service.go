package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"showtix/internal/shared/config"
)

// EmailService interface for sending emails
type EmailService interface {
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// NewSMTPConfig builds SMTP settings from app config
func NewSMTPConfig(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		Timeout:   30 * time.Second,
	}
}

// SMTPEmailService is a real SMTP implementation of the EmailService interface
type SMTPEmailService struct {
	config *SMTPConfig
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}
	return &SMTPEmailService{config: config}, nil
}

// SendHTML sends an HTML email over SMTP with STARTTLS
func (s *SMTPEmailService) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}

	var message bytes.Buffer
	message.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	done := make(chan error, 1)
	go func() {
		done <- s.sendWithSTARTTLS(addr, auth, to, message.Bytes())
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.config.Timeout):
		return fmt.Errorf("smtp send timed out after %v", s.config.Timeout)
	}
}

// sendWithSTARTTLS dials plain, upgrades to TLS, then authenticates
func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: s.config.Host}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.config.Username != "" {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

// Email templates per notification type

var emailTemplates = map[Type]*template.Template{
	TypeBookingConfirmed: template.Must(template.New("booking_confirmed").Parse(`
<h2>Your booking is confirmed 🎉</h2>
<p>Hi {{.RecipientName}},</p>
<p>Your tickets for <strong>{{index .Data "movie_title"}}</strong> are booked.</p>
<ul>
  <li>Showtime: {{index .Data "show_time"}}</li>
  <li>Seats: {{index .Data "seats"}}</li>
  <li>Amount paid: {{index .Data "amount"}}</li>
</ul>
<p>Enjoy the show!</p>`)),

	TypeShowAdded: template.Must(template.New("show_added").Parse(`
<h2>New showtimes available</h2>
<p>Hi {{.RecipientName}},</p>
<p><strong>{{index .Data "movie_title"}}</strong>, a movie on your favorites list, just got new showtimes.</p>
<p>Book your seats before they fill up.</p>`)),

	TypeShowReminder: template.Must(template.New("show_reminder").Parse(`
<h2>Your show is coming up</h2>
<p>Hi {{.RecipientName}},</p>
<p>This is a reminder that <strong>{{index .Data "movie_title"}}</strong> starts at {{index .Data "show_time"}}.</p>
<p>See you there!</p>`)),
}

var emailSubjects = map[Type]string{
	TypeBookingConfirmed: "Booking confirmed: %s",
	TypeShowAdded:        "New showtimes for %s",
	TypeShowReminder:     "Reminder: %s is starting soon",
}

// RenderEmail renders the subject and HTML body for a notification
func RenderEmail(n *Notification) (string, string, error) {
	tmpl, ok := emailTemplates[n.Type]
	if !ok {
		return "", "", fmt.Errorf("no template for notification type %s", n.Type)
	}

	subjectFormat, ok := emailSubjects[n.Type]
	if !ok {
		return "", "", fmt.Errorf("no subject for notification type %s", n.Type)
	}
	subject := fmt.Sprintf(subjectFormat, n.Data["movie_title"])

	var body strings.Builder
	if err := tmpl.Execute(&body, n); err != nil {
		return "", "", fmt.Errorf("failed to render email template: %w", err)
	}

	return subject, body.String(), nil
}
