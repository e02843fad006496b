package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
)

// emailTemplates stores email templates as string constants
var emailTemplates = map[string]string{
	"payment-receipt.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Payment Receipt</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hello,</p>
    <p>Thank you for your payment of <strong>{{.amount_display}}</strong>.</p>
    <p>Subscription: <code>{{.subscription_id}}</code></p>
    <p>Receipt: <code>{{.receipt_id}}</code></p>
    <br>
    <p>— The Team</p>
</body>
</html>`,
	"payment-failed.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Subscription Payment Failed</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hello,</p>
    <p>Your recent subscription payment for <code>{{.subscription_id}}</code> could not be settled.</p>
    <p>Reason: {{.reason}}</p>
    <p>Please top up your escrow balance and try again.</p>
    <br>
    <p>— The Team</p>
</body>
</html>`,
	"low-balance.html": `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Low Subscription Balance Alert</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hello,</p>
    <p>Your subscription escrow balance for <code>{{.subscription_id}}</code> is running low and may not cover your next billing cycle.</p>
    <p>Remaining balance: <strong>{{.balance_display}}</strong></p>
    <p>Please top up your escrow to avoid service interruption.</p>
    <br>
    <p>— The Team</p>
</body>
</html>`,
}

// Email handles email operations.
type Email struct {
	client *EmailClient
	logger *zap.SugaredLogger
}

// NewEmail creates a new email service.
func NewEmail(client *EmailClient, logger *zap.SugaredLogger) *Email {
	return &Email{
		client: client,
		logger: logger,
	}
}

// SendEmailRequest is a plain text email send request.
type SendEmailRequest struct {
	ToAddress   string
	FromAddress string
	Subject     string
	Text        string
}

// SendEmailWithTemplateRequest renders a named template with data.
type SendEmailWithTemplateRequest struct {
	ToAddress    string
	FromAddress  string
	Subject      string
	TemplatePath string
	TemplateData map[string]interface{}
}

// SendEmailResponse reports the outcome of a send.
type SendEmailResponse struct {
	MessageID string
	Success   bool
	Error     string
}

// SendEmail sends a plain text email.
func (s *Email) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   "email client is disabled",
		}, nil
	}

	fromAddress := s.client.GetFromAddress()
	if fromAddress == "" {
		fromAddress = req.FromAddress
	}

	messageID, err := s.client.SendEmail(ctx, fromAddress, req.ToAddress, req.Subject, "", req.Text)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   err.Error(),
		}, err
	}

	s.logger.Infow("email sent successfully",
		"message_id", messageID,
		"to", req.ToAddress,
		"subject", req.Subject,
	)

	return &SendEmailResponse{
		MessageID: messageID,
		Success:   true,
	}, nil
}

// SendEmailWithTemplate sends an email using an HTML template.
func (s *Email) SendEmailWithTemplate(ctx context.Context, req SendEmailWithTemplateRequest) (*SendEmailResponse, error) {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", req.ToAddress,
			"subject", req.Subject,
			"template", req.TemplatePath,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   "email client is disabled",
		}, nil
	}

	fromAddress := s.client.GetFromAddress()
	if fromAddress == "" {
		fromAddress = req.FromAddress
	}

	htmlContent, err := s.readTemplate(req.TemplatePath)
	if err != nil {
		s.logger.Errorw("failed to read email template",
			"error", err,
			"template", req.TemplatePath,
		)
		return &SendEmailResponse{Success: false, Error: err.Error()}, err
	}

	tmpl, err := template.New(req.TemplatePath).Parse(htmlContent)
	if err != nil {
		return &SendEmailResponse{Success: false, Error: err.Error()}, err
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, req.TemplateData); err != nil {
		return &SendEmailResponse{Success: false, Error: err.Error()}, err
	}

	messageID, err := s.client.SendEmail(ctx, fromAddress, req.ToAddress, req.Subject, rendered.String(), "")
	if err != nil {
		s.logger.Errorw("failed to send templated email",
			"error", err,
			"to", req.ToAddress,
			"template", req.TemplatePath,
		)
		return &SendEmailResponse{Success: false, Error: err.Error()}, err
	}

	return &SendEmailResponse{
		MessageID: messageID,
		Success:   true,
	}, nil
}

func (s *Email) readTemplate(path string) (string, error) {
	content, ok := emailTemplates[path]
	if !ok {
		return "", fmt.Errorf("template not found: %s", path)
	}
	return content, nil
}
