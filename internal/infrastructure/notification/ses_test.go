package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSES struct {
	sesiface.SESAPI
	mock.Mock
}

func (m *mockSES) SendEmailWithContext(ctx aws.Context, in *ses.SendEmailInput, _ ...request.Option) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESNotifier_SendFeedbackAcknowledgement(t *testing.T) {
	// Arrange
	client := &mockSES{}
	notifier := NewSESNotifierWithClient(client, config.EmailConfig{
		FromAddress: "hello@basketful.test",
		FromName:    "Basketful",
	}, zap.NewNop())

	client.On("SendEmailWithContext", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.StringValue(in.Source) == "Basketful <hello@basketful.test>" &&
			aws.StringValue(in.Destination.ToAddresses[0]) == "ana@example.com" &&
			aws.StringValue(in.Message.Subject.Data) == feedbackSubject
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil)

	// Act
	err := notifier.SendFeedbackAcknowledgement(context.Background(), "ana@example.com", "Ana")

	// Assert
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSESNotifier_PropagatesErrors(t *testing.T) {
	client := &mockSES{}
	notifier := NewSESNotifierWithClient(client, config.EmailConfig{FromAddress: "a@b.test"}, zap.NewNop())
	client.On("SendEmailWithContext", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := notifier.SendFeedbackAcknowledgement(context.Background(), "x@y.test", "")

	assert.ErrorContains(t, err, "throttled")
}

func TestFeedbackBody(t *testing.T) {
	assert.Contains(t, feedbackBody("  Ana "), "Hi Ana,")
	assert.Contains(t, feedbackBody(""), "Hi,")
}

func TestNewNotifier(t *testing.T) {
	n, err := NewNotifier(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	_, err = NewNotifier(&config.Config{Email: config.EmailConfig{Provider: "pigeon"}}, zap.NewNop())
	assert.Error(t, err)
}
