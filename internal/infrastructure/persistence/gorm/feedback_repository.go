package gorm

import (
	"context"

	"github.com/basketful/storefront/internal/domain/feedback"
	"github.com/basketful/storefront/internal/ports/outbound"
	"gorm.io/gorm"
)

// FeedbackRepository persists feedback
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *gorm.DB) outbound.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	model := feedbackToModel(f)
	return r.db.WithContext(ctx).Create(&model).Error
}
