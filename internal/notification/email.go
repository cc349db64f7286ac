// Package notification delivers agent-facing notifications. Only email is
// supported; when SMTP is not configured the system degrades to logging.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	"leadqual_backend/internal/config"
	"leadqual_backend/internal/qualification/assignment"
	"leadqual_backend/internal/qualification/service"
	"leadqual_backend/platform/logger"
)

// SMTPNotifier notifies agents over the tenant's SMTP server via go-mail.
type SMTPNotifier struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
	log       *logger.Logger
}

var _ service.Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg *config.Config, log *logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromName:  cfg.EmailFromName,
		fromEmail: cfg.EmailFromAddress,
		log:       log,
	}
}

// LeadAssigned tells an agent a qualified lead has landed on their desk.
func (s *SMTPNotifier) LeadAssigned(ctx context.Context, agent assignment.Member, conversationID uuid.UUID, score int, tier string) error {
	subject := fmt.Sprintf("New %s lead assigned to you (score %d)", tier, score)
	body := fmt.Sprintf(
		"Hi %s,\n\nA qualified lead has been assigned to you.\n\n"+
			"Conversation: %s\nScore: %d\nTier: %s\n\n"+
			"Please follow up as soon as possible.\n",
		agent.FullName, conversationID, score, tier)

	return s.send(ctx, agent.Email, subject, body)
}

func (s *SMTPNotifier) send(ctx context.Context, toEmail, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// LogNotifier is the fallback when email is disabled. Assignments still
// happen; the notification is only written to the log.
type LogNotifier struct {
	log *logger.Logger
}

var _ service.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) LeadAssigned(_ context.Context, agent assignment.Member, conversationID uuid.UUID, score int, tier string) error {
	l.log.Info("lead assigned (email disabled)",
		"agent_id", agent.ID.String(),
		"conversation_id", conversationID.String(),
		"score", score,
		"tier", tier)
	return nil
}
