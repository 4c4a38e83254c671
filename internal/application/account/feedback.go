package account

import (
	"context"
	stderrors "errors"

	"github.com/basketful/storefront/internal/domain/feedback"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// FeedbackService stores feedback and acknowledges it by email
type FeedbackService struct {
	repo     outbound.FeedbackRepository
	notifier outbound.Notifier
	validate *validator.Validate
	logger   *zap.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(
	repo outbound.FeedbackRepository,
	notifier outbound.Notifier,
	logger *zap.Logger,
) *FeedbackService {
	return &FeedbackService{
		repo:     repo,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger.Named("feedback-service"),
	}
}

// Submit persists the feedback and sends an acknowledgement. A notifier
// failure does not fail the submission.
func (s *FeedbackService) Submit(ctx context.Context, cmd inbound.SubmitFeedbackCommand) (*inbound.FeedbackDTO, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	f, err := feedback.New(cmd.UserID, cmd.Name, cmd.Email, cmd.Message, cmd.Rating)
	if err != nil {
		if stderrors.Is(err, feedback.ErrMessageLength) || stderrors.Is(err, feedback.ErrInvalidRating) {
			return nil, errors.NewValidationError(err.Error())
		}
		return nil, errors.Wrap(err, "invalid feedback")
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, errors.NewDatabaseError("save feedback", err)
	}

	if err := s.notifier.SendFeedbackAcknowledgement(ctx, f.Email, f.Name); err != nil {
		s.logger.Warn("Failed to send feedback acknowledgement",
			zap.String("feedback_id", f.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Feedback received", zap.String("feedback_id", f.ID.String()))

	return &inbound.FeedbackDTO{ID: f.ID, CreatedAt: f.CreatedAt}, nil
}
