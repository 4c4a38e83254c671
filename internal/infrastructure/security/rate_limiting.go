package security

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/basketful/storefront/internal/infrastructure/config"
	apperrors "github.com/basketful/storefront/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitType represents different types of rate limits
type RateLimitType string

const (
	RateLimitPerIP   RateLimitType = "per_ip"
	RateLimitPerUser RateLimitType = "per_user"
	RateLimitAuth    RateLimitType = "auth"
)

// RateLimitRule is a token bucket definition
type RateLimitRule struct {
	PerMinute int
	Burst     int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitService keeps one token bucket per client key
type RateLimitService struct {
	logger  *zap.Logger
	enabled bool
	rules   map[RateLimitType]RateLimitRule

	mu       sync.Mutex
	limiters map[string]*limiterEntry
	idleTTL  time.Duration
	stop     chan struct{}
	once     sync.Once
}

// NewRateLimitService creates a rate limiter from configuration and starts
// the idle bucket sweeper.
func NewRateLimitService(cfg config.RateLimitConfig, logger *zap.Logger) *RateLimitService {
	perMin := cfg.RequestsPerMin
	if perMin <= 0 {
		perMin = 120
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 20
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 5 * time.Minute
	}

	r := &RateLimitService{
		logger:  logger.Named("rate-limit"),
		enabled: cfg.Enable,
		rules: map[RateLimitType]RateLimitRule{
			RateLimitPerIP:   {PerMinute: perMin, Burst: burst},
			RateLimitPerUser: {PerMinute: perMin, Burst: burst},
			RateLimitAuth:    {PerMinute: 10, Burst: 5},
		},
		limiters: make(map[string]*limiterEntry),
		idleTTL:  cleanup,
		stop:     make(chan struct{}),
	}

	go r.sweep(cleanup)
	return r
}

// Allow consumes one token for key under the rule for limitType
func (r *RateLimitService) Allow(limitType RateLimitType, key string) bool {
	rule, ok := r.rules[limitType]
	if !ok {
		return true
	}

	fullKey := string(limitType) + ":" + key

	r.mu.Lock()
	entry, ok := r.limiters[fullKey]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(rule.PerMinute)/60), rule.Burst),
		}
		r.limiters[fullKey] = entry
	}
	entry.lastSeen = time.Now()
	r.mu.Unlock()

	return entry.limiter.Allow()
}

// RateLimitMiddleware creates rate limiting middleware
func (r *RateLimitService) RateLimitMiddleware(limitType RateLimitType) gin.HandlerFunc {
	rule := r.rules[limitType]
	return func(c *gin.Context) {
		if !r.enabled {
			c.Next()
			return
		}

		key := r.keyFor(c, limitType)
		if !r.Allow(limitType, key) {
			r.logger.Warn("Rate limit exceeded",
				zap.String("type", string(limitType)),
				zap.String("key", key),
				zap.String("path", c.FullPath()),
			)
			c.Header("Retry-After", "60")
			c.Header("X-RateLimit-Limit", strconv.Itoa(rule.PerMinute))
			appErr := apperrors.NewAppError(apperrors.CodeTooManyRequests, "Rate limit exceeded", "")
			c.AbortWithStatusJSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, c.GetString("request_id")))
			return
		}

		c.Next()
	}
}

// Close stops the sweeper
func (r *RateLimitService) Close() {
	r.once.Do(func() { close(r.stop) })
}

func (r *RateLimitService) keyFor(c *gin.Context, limitType RateLimitType) string {
	if limitType == RateLimitPerUser {
		if v, ok := c.Get(ContextUserID); ok {
			if id, ok := v.(uuid.UUID); ok {
				return fmt.Sprintf("user:%s", id)
			}
		}
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

func (r *RateLimitService) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.mu.Lock()
			for key, entry := range r.limiters {
				if now.Sub(entry.lastSeen) > r.idleTTL {
					delete(r.limiters, key)
				}
			}
			r.mu.Unlock()
		}
	}
}
