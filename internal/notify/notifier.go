package notify

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"

	"go.uber.org/zap"
)

// InterviewInvite is the payload of the invite notification sent when an
// interview is created.
type InterviewInvite struct {
	CandidateEmail string
	CandidateName  string
	JobTitle       string
	InterviewDate  string
	InterviewLink  string
}

// Notifier is a best-effort, fire-and-forget side effect: implementations
// must never block interview creation and must swallow failures into logs.
type Notifier interface {
	SendInterviewInvite(invite InterviewInvite)
}

type smtpConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func loadSMTP() (*smtpConfig, error) {
	cfg := &smtpConfig{
		Host: os.Getenv("SMTP_HOST"),
		Port: os.Getenv("SMTP_PORT"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
		From: os.Getenv("SMTP_FROM"),
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	if cfg.User == "" || cfg.Pass == "" || cfg.From == "" {
		return nil, fmt.Errorf("SMTP not configured")
	}
	return cfg, nil
}

// EmailNotifier sends invites over SMTP in a detached goroutine.
type EmailNotifier struct {
	logger *zap.Logger
}

func NewEmailNotifier(logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{logger: logger}
}

func (n *EmailNotifier) SendInterviewInvite(invite InterviewInvite) {
	if invite.CandidateEmail == "" {
		return
	}
	go func() {
		if err := n.send(invite); err != nil {
			n.logger.Warn("failed to send interview invite",
				zap.String("candidate_email", invite.CandidateEmail), zap.Error(err))
		}
	}()
}

func (n *EmailNotifier) send(invite InterviewInvite) error {
	cfg, err := loadSMTP()
	if err != nil {
		return err
	}

	subject := "Interview Invitation - " + invite.JobTitle
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nYou have been invited to an interview for %s.\r\nDate: %s\r\nJoin here: %s\r\n\r\nGood luck!\r\n",
		invite.CandidateName, invite.JobTitle, invite.InterviewDate, invite.InterviewLink,
	)

	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	msg := []byte("From: \"HireEz\" <" + cfg.From + ">\r\n" +
		"To: " + invite.CandidateEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n")

	if err := smtp.SendMail(addr, auth, cfg.From, []string{invite.CandidateEmail}, msg); err != nil {
		if cfg.Port == "465" {
			return n.sendImplicitTLS(cfg, invite.CandidateEmail, msg)
		}
		return err
	}
	return nil
}

// port 465 speaks TLS from the first byte, smtp.SendMail cannot
func (n *EmailNotifier) sendImplicitTLS(cfg *smtpConfig, to string, msg []byte) error {
	addr := cfg.Host + ":" + cfg.Port
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)); err != nil {
		return err
	}
	if err := client.Mail(cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// NopNotifier discards invites.
type NopNotifier struct{}

func (NopNotifier) SendInterviewInvite(InterviewInvite) {}
