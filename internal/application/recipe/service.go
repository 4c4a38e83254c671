// Package recipe provides the once-per-day AI recipe generation use case
package recipe

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/domain/shared"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const quotaType = "daily recipe generation"

// Options configures the generation gate
type Options struct {
	Calendar recipegen.Calendar
	// InFlightTTL bounds how long a running generation blocks concurrent
	// attempts for the same day.
	InFlightTTL time.Duration
}

// GenerationService implements the daily-gated recipe generation
type GenerationService struct {
	usage      outbound.RecipeUsageRepository
	generator  outbound.RecipeGenerator
	cache      outbound.CacheRepository
	dispatcher shared.EventDispatcher
	opts       Options
	validate   *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewGenerationService creates a new recipe generation service
func NewGenerationService(
	usage outbound.RecipeUsageRepository,
	generator outbound.RecipeGenerator,
	cache outbound.CacheRepository,
	dispatcher shared.EventDispatcher,
	opts Options,
	logger *zap.Logger,
) *GenerationService {
	if opts.InFlightTTL <= 0 {
		opts.InFlightTTL = 2 * time.Minute
	}
	return &GenerationService{
		usage:      usage,
		generator:  generator,
		cache:      cache,
		dispatcher: dispatcher,
		opts:       opts,
		validate:   validator.New(),
		logger:     logger.Named("recipe-generation-service"),
		now:        time.Now,
	}
}

// InFlightKey is the cache key reserving a user's generation for a day
func InFlightKey(userID uuid.UUID, day string) string {
	return fmt.Sprintf("recipegen:inflight:%s:%s", userID, day)
}

// Status reports whether the user may generate today
func (s *GenerationService) Status(ctx context.Context, userID uuid.UUID) (*inbound.GenerationStatusDTO, error) {
	now := s.now()
	day := s.opts.Calendar.Day(now)

	used, err := s.usage.ExistsForDay(ctx, userID, day)
	if err != nil {
		return nil, errors.NewDatabaseError("check recipe usage", err)
	}

	state := recipegen.StateFor(used)
	return &inbound.GenerationStatusDTO{
		State:       string(state),
		Eligible:    state == recipegen.StateEligible,
		UsageDate:   day,
		NextResetAt: s.opts.Calendar.NextReset(now),
	}, nil
}

// Generate produces a Markdown recipe if the user has not generated one today.
// A failed generation leaves the quota untouched.
func (s *GenerationService) Generate(ctx context.Context, cmd inbound.GenerateRecipeCommand) (*inbound.GeneratedRecipeDTO, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, errors.FromValidator(err)
	}

	req, err := recipegen.Request{
		Ingredients: cmd.Ingredients,
		Preferences: cmd.Preferences,
		Cuisine:     cmd.Cuisine,
		Servings:    cmd.Servings,
		Dietary:     cmd.Dietary,
	}.Normalize()
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	now := s.now()
	day := s.opts.Calendar.Day(now)
	nextReset := s.opts.Calendar.NextReset(now)

	used, err := s.usage.ExistsForDay(ctx, cmd.UserID, day)
	if err != nil {
		return nil, errors.NewDatabaseError("check recipe usage", err)
	}
	if used {
		return nil, quotaError(nextReset)
	}

	key := InFlightKey(cmd.UserID, day)
	reserved, err := s.cache.SetIfAbsent(ctx, key, []byte(now.UTC().Format(time.RFC3339)), s.opts.InFlightTTL)
	if err != nil {
		// the unique index still guards the quota
		s.logger.Warn("Failed to reserve recipe generation", zap.Error(err))
		reserved = true
	}
	if !reserved {
		return nil, quotaError(nextReset)
	}
	defer s.release(key)

	s.logger.Info("Generating recipe",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("provider", s.generator.Provider()),
		zap.Int("ingredients", len(req.Ingredients)),
	)

	out, err := s.generator.Generate(ctx, buildGenerationPrompt(req))
	if err != nil {
		s.logger.Error("Recipe generation failed",
			zap.String("user_id", cmd.UserID.String()),
			zap.String("provider", s.generator.Provider()),
			zap.Error(err),
		)
		return nil, errors.NewExternalServiceError(s.generator.Provider(), err)
	}

	usage := s.opts.Calendar.NewUsage(cmd.UserID, out.Model, now)
	if err := s.usage.Create(ctx, usage); err != nil {
		if stderrors.Is(err, recipegen.ErrQuotaExhausted) {
			return nil, quotaError(nextReset)
		}
		return nil, errors.NewDatabaseError("record recipe usage", err)
	}

	s.dispatcher.Dispatch(ctx, recipegen.GeneratedEvent{
		UserID:      cmd.UserID,
		Model:       out.Model,
		UsageDate:   day,
		GeneratedAt: now,
	})

	s.logger.Info("Recipe generated",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("model", out.Model),
		zap.Int("total_tokens", out.Usage.TotalTokens),
		zap.Duration("latency", out.Latency),
	)

	return &inbound.GeneratedRecipeDTO{
		Markdown:    out.Content,
		Model:       out.Model,
		Provider:    s.generator.Provider(),
		TotalTokens: out.Usage.TotalTokens,
		UsageDate:   day,
		NextResetAt: nextReset,
	}, nil
}

// release drops the in-flight reservation. It runs detached from the request
// context so a cancelled request still frees the slot.
func (s *GenerationService) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to release recipe generation reservation", zap.Error(err))
	}
}

func quotaError(nextReset time.Time) *errors.AppError {
	return errors.NewQuotaExceededError(quotaType, recipegen.DailyLimit).
		WithMetadata("next_reset_at", nextReset.UTC().Format(time.RFC3339))
}
