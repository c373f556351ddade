package notify

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/vpacheco/sentinela/monitor/change"
)

// EmailConfig configures SMTP submission. Credentials come from the
// environment, never from the config file.
type EmailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	FromName   string
	Recipients []string
}

// Email sends one HTML message per batch to all recipients via
// STARTTLS SMTP submission.
type Email struct {
	cfg    EmailConfig
	logger *slog.Logger
	now    func() time.Time

	// send is swapped in tests so no SMTP connection is made.
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewEmail creates an Email notifier.
func NewEmail(cfg EmailConfig, logger *slog.Logger) (*Email, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.FromName == "" {
		cfg.FromName = "Sentinela Monitor"
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("email: new client: %w", err)
	}

	return &Email{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		send: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

var emailTmpl = template.Must(template.New("batch").Parse(`<html>
<body style="font-family: Arial, sans-serif; background:#f5f5f5;">
  <div style="max-width:600px;margin:auto;background:#ffffff;padding:20px;border-radius:8px">
    <h2 style="color:#1e88e5;">Changes detected</h2>
    <p>The following monitored pages were updated:</p>
    {{range .Events}}
    <div style="margin:15px 0;padding:15px;background:#f9f9f9;border-left:4px solid #1e88e5">
      <h3 style="margin:0 0 10px 0;color:#1e88e5">{{.Site.Name}}</h3>
      <p style="margin:5px 0"><a href="{{.Site.URL}}" style="color:#1e88e5">{{.Site.URL}}</a></p>
    </div>
    {{end}}
    <ul style="margin-top:20px">
      <li><b>Checked at:</b> {{.Timestamp}}</li>
      <li><b>Pages changed:</b> {{len .Events}}</li>
    </ul>
    <hr style="margin:20px 0">
    <small style="color:#666">Sentinela Monitor</small>
  </div>
</body>
</html>`))

func (e *Email) Notify(ctx context.Context, events []change.Event) error {
	var body strings.Builder
	err := emailTmpl.Execute(&body, struct {
		Events    []change.Event
		Timestamp string
	}{events, e.now().Format("2006-01-02 15:04:05 MST")})
	if err != nil {
		return fmt.Errorf("email: render body: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(e.cfg.FromName, e.cfg.From); err != nil {
		return fmt.Errorf("email: from address: %w", err)
	}
	if err := msg.To(e.cfg.Recipients...); err != nil {
		return fmt.Errorf("email: recipients: %w", err)
	}
	msg.Subject(e.subject(events))
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	if err := e.send(ctx, msg); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	e.logger.Info("email: notification sent",
		"recipients", len(e.cfg.Recipients), "changed", len(events))
	return nil
}

func (e *Email) subject(events []change.Event) string {
	if len(events) == 1 {
		return "Change detected: " + events[0].Site.Name
	}
	return fmt.Sprintf("%d monitored pages updated", len(events))
}

func (e *Email) Close() error { return nil }
