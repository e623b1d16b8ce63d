package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/jotbook/jotbook/internal/config"
)

// Dispatcher delivers one-time codes to an email address. A failed dispatch
// never aborts the operation that triggered it; callers degrade the response.
type Dispatcher interface {
	Send(ctx context.Context, to, code, displayName string) error
}

// FromConfig selects the dispatcher once at process start: SMTP when outbound
// credentials are configured, otherwise a log-only sandbox transport.
func FromConfig(cfg config.Config, logger *slog.Logger) (Dispatcher, error) {
	if cfg.SMTPConfigured() {
		logger.Info("using SMTP mail transport", "host", cfg.SMTPHost)
		return NewSMTPDispatcher(cfg)
	}
	logger.Info("no SMTP credentials, using log mail transport")
	return NewLogDispatcher(logger), nil
}

// LogDispatcher writes would-be deliveries to the structured logger. Useful in
// development and tests, where no real mailbox exists.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher constructs a logging dispatcher.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Send writes the dispatch to the logger and always reports success.
func (d *LogDispatcher) Send(_ context.Context, to, code, displayName string) error {
	if d == nil || d.logger == nil {
		return nil
	}
	d.logger.Info("otp dispatch", "to", to, "name", displayName, "code", code)
	return nil
}

// SMTPDispatcher delivers codes over SMTP.
type SMTPDispatcher struct {
	client *mail.Client
	from   string
}

// NewSMTPDispatcher builds an SMTP dispatcher from outbound mail configuration.
func NewSMTPDispatcher(cfg config.Config) (*SMTPDispatcher, error) {
	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPass),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("build smtp client: %w", err)
	}
	return &SMTPDispatcher{client: client, from: cfg.MailFrom}, nil
}

// Send delivers the one-time code to the recipient.
func (d *SMTPDispatcher) Send(ctx context.Context, to, code, displayName string) error {
	msg := mail.NewMsg()
	if err := msg.From(d.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject("Your one-time code")
	msg.SetBodyString(mail.TypeTextHTML, renderBody(displayName, code))

	if err := d.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func renderBody(displayName, code string) string {
	return fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #333;">Welcome %s!</h2>
        <p>Your one-time code is:</p>
        <div style="background-color: #f4f4f4; padding: 20px; text-align: center; font-size: 24px; font-weight: bold; color: #333; margin: 20px 0;">
          %s
        </div>
        <p style="color: #666;">This code will expire in 5 minutes.</p>
        <p style="color: #666;">If you didn't request this, please ignore this email.</p>
      </div>`, displayName, code)
}
