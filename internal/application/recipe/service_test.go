package recipe

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/basketful/storefront/internal/domain/recipegen"
	"github.com/basketful/storefront/internal/infrastructure/persistence/memory"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/basketful/storefront/internal/ports/outbound"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/basketful/storefront/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type GenerationServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	userID     uuid.UUID
	now        time.Time
	usage      *testutils.MockRecipeUsageRepository
	generator  *testutils.MockRecipeGenerator
	cache      *memory.CacheRepository
	dispatcher *testutils.RecordingDispatcher
	service    *GenerationService
}

func (s *GenerationServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.userID = uuid.New()
	s.now = time.Date(2026, 4, 10, 15, 30, 0, 0, time.UTC)
	s.usage = new(testutils.MockRecipeUsageRepository)
	s.generator = new(testutils.MockRecipeGenerator)
	s.cache = memory.NewCacheRepository()
	s.T().Cleanup(func() { _ = s.cache.Close() })
	s.dispatcher = &testutils.RecordingDispatcher{}

	s.service = NewGenerationService(s.usage, s.generator, s.cache, s.dispatcher, Options{
		Calendar: recipegen.NewCalendar(time.UTC),
	}, zaptest.NewLogger(s.T()))
	s.service.now = func() time.Time { return s.now }
}

func (s *GenerationServiceTestSuite) command() inbound.GenerateRecipeCommand {
	return inbound.GenerateRecipeCommand{
		UserID:      s.userID,
		Ingredients: []string{"tomato", "egg"},
		Cuisine:     "spanish",
		Servings:    2,
	}
}

func (s *GenerationServiceTestSuite) TestStatus() {
	s.usage.On("ExistsForDay", mock.Anything, s.userID, "2026-04-10").Return(true, nil).Once()

	dto, err := s.service.Status(s.ctx, s.userID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), string(recipegen.StateExhausted), dto.State)
	assert.False(s.T(), dto.Eligible)
	assert.Equal(s.T(), time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC), dto.NextResetAt)
}

func (s *GenerationServiceTestSuite) TestGenerateRecordsUsage() {
	// Arrange
	s.usage.On("ExistsForDay", mock.Anything, s.userID, "2026-04-10").Return(false, nil).Once()
	s.generator.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "- tomato") && strings.Contains(prompt, "Cuisine: spanish")
	})).Return(&outbound.GeneratedText{
		Content: "# Tomato Eggs",
		Model:   "stub-v1",
		Usage:   outbound.TokenUsage{TotalTokens: 42},
	}, nil).Once()
	s.usage.On("Create", mock.Anything, mock.MatchedBy(func(u recipegen.Usage) bool {
		return u.UserID == s.userID && u.UsageDate == "2026-04-10" && u.Model == "stub-v1"
	})).Return(nil).Once()

	// Act
	dto, err := s.service.Generate(s.ctx, s.command())

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "# Tomato Eggs", dto.Markdown)
	assert.Equal(s.T(), 42, dto.TotalTokens)
	assert.Equal(s.T(), "2026-04-10", dto.UsageDate)
	testutils.AssertEvents(s.T(), s.dispatcher, "recipe.generated")
	s.usage.AssertExpectations(s.T())

	exists, _ := s.cache.Exists(s.ctx, InFlightKey(s.userID, "2026-04-10"))
	assert.False(s.T(), exists, "reservation should be released")
}

func (s *GenerationServiceTestSuite) TestSecondGenerationSameDayIsRefused() {
	s.usage.On("ExistsForDay", mock.Anything, s.userID, "2026-04-10").Return(true, nil).Once()

	_, err := s.service.Generate(s.ctx, s.command())

	require.Error(s.T(), err)
	assert.True(s.T(), errors.Is(err, errors.CodeQuotaExceeded))
	s.generator.AssertNotCalled(s.T(), "Generate", mock.Anything, mock.Anything)
}

func (s *GenerationServiceTestSuite) TestInFlightReservationBlocks() {
	// Arrange
	s.usage.On("ExistsForDay", mock.Anything, s.userID, "2026-04-10").Return(false, nil).Once()
	_, err := s.cache.SetIfAbsent(s.ctx, InFlightKey(s.userID, "2026-04-10"), []byte("x"), time.Minute)
	require.NoError(s.T(), err)

	// Act
	_, err = s.service.Generate(s.ctx, s.command())

	// Assert
	assert.True(s.T(), errors.Is(err, errors.CodeQuotaExceeded))
	s.generator.AssertNotCalled(s.T(), "Generate", mock.Anything, mock.Anything)
}

func (s *GenerationServiceTestSuite) TestFailedGenerationKeepsQuota() {
	s.usage.On("ExistsForDay", mock.Anything, s.userID, "2026-04-10").Return(false, nil).Once()
	s.generator.On("Generate", mock.Anything, mock.Anything).Return(nil, stderrors.New("upstream 500")).Once()

	_, err := s.service.Generate(s.ctx, s.command())

	assert.True(s.T(), errors.Is(err, errors.CodeExternalServiceError))
	s.usage.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	testutils.AssertEvents(s.T(), s.dispatcher)
}

func (s *GenerationServiceTestSuite) TestConcurrentInsertLosesToUniqueIndex() {
	s.usage.On("ExistsForDay", mock.Anything, s.userID, "2026-04-10").Return(false, nil).Once()
	s.generator.On("Generate", mock.Anything, mock.Anything).
		Return(&outbound.GeneratedText{Content: "# x", Model: "m"}, nil).Once()
	s.usage.On("Create", mock.Anything, mock.Anything).Return(recipegen.ErrQuotaExhausted).Once()

	_, err := s.service.Generate(s.ctx, s.command())

	assert.True(s.T(), errors.Is(err, errors.CodeQuotaExceeded))
}

func (s *GenerationServiceTestSuite) TestValidation() {
	cmd := s.command()
	cmd.Ingredients = nil

	_, err := s.service.Generate(s.ctx, cmd)

	assert.True(s.T(), errors.Is(err, errors.CodeValidationFailed))
}

func TestGenerationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GenerationServiceTestSuite))
}

func TestBuildGenerationPrompt(t *testing.T) {
	prompt := buildGenerationPrompt(recipegen.Request{
		Ingredients: []string{"rice", "peas"},
		Servings:    4,
		Dietary:     []string{"vegan", "nut-free"},
	})

	assert.Contains(t, prompt, "- rice\n- peas\n")
	assert.Contains(t, prompt, "Servings: 4")
	assert.Contains(t, prompt, "Dietary requirements: vegan, nut-free")
	assert.NotContains(t, prompt, "Cuisine:")
}
