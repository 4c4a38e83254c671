// Package notification sends transactional email
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/internal/ports/outbound"
	"go.uber.org/zap"
)

const feedbackSubject = "Thanks for your feedback"

var (
	_ outbound.Notifier = (*SESNotifier)(nil)
	_ outbound.Notifier = (*LogNotifier)(nil)
)

// SESNotifier delivers email through Amazon SES
type SESNotifier struct {
	client sesiface.SESAPI
	from   string
	logger *zap.Logger
}

// NewSESNotifier creates an SES session from the AWS settings
func NewSESNotifier(awsCfg config.AWSConfig, emailCfg config.EmailConfig, logger *zap.Logger) (*SESNotifier, error) {
	cfg := &aws.Config{Region: aws.String(awsCfg.Region)}
	if awsCfg.AccessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(awsCfg.AccessKeyID, awsCfg.SecretAccessKey, awsCfg.SessionToken)
	}
	if awsCfg.Endpoint != "" {
		cfg.Endpoint = aws.String(awsCfg.Endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewSESNotifierWithClient(ses.New(sess), emailCfg, logger), nil
}

// NewSESNotifierWithClient wraps an existing SES client
func NewSESNotifierWithClient(client sesiface.SESAPI, emailCfg config.EmailConfig, logger *zap.Logger) *SESNotifier {
	from := emailCfg.FromAddress
	if emailCfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", emailCfg.FromName, emailCfg.FromAddress)
	}
	return &SESNotifier{
		client: client,
		from:   from,
		logger: logger.Named("ses"),
	}
}

// SendFeedbackAcknowledgement thanks a visitor for their feedback
func (n *SESNotifier) SendFeedbackAcknowledgement(ctx context.Context, to, name string) error {
	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(feedbackSubject),
			},
			Body: &ses.Body{
				Text: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(feedbackBody(name)),
				},
			},
		},
		Source: aws.String(n.from),
	}

	out, err := n.client.SendEmailWithContext(ctx, input)
	if err != nil {
		n.logger.Error("SES send failed", zap.Error(err))
		return fmt.Errorf("email send failed: %w", err)
	}

	n.logger.Info("Feedback acknowledgement sent", zap.String("message_id", aws.StringValue(out.MessageId)))
	return nil
}

func feedbackBody(name string) string {
	greeting := "Hi"
	if name = strings.TrimSpace(name); name != "" {
		greeting = "Hi " + name
	}
	return greeting + ",\n\nThank you for taking the time to share your feedback with us. " +
		"Every message is read by the team.\n\nBasketful"
}

// LogNotifier writes email to the log instead of sending it
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier for development
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("mail")}
}

// SendFeedbackAcknowledgement logs the message
func (n *LogNotifier) SendFeedbackAcknowledgement(ctx context.Context, to, name string) error {
	n.logger.Info("Email not sent (log provider)",
		zap.String("to", to),
		zap.String("subject", feedbackSubject),
		zap.String("body", feedbackBody(name)),
	)
	return nil
}

// NewNotifier picks SES or the log notifier from cfg.Email.Provider
func NewNotifier(cfg *config.Config, logger *zap.Logger) (outbound.Notifier, error) {
	switch strings.ToLower(cfg.Email.Provider) {
	case "ses":
		return NewSESNotifier(cfg.AWS, cfg.Email, logger)
	case "log", "":
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}
}
