package telegram

import (
	"time"

	"github.com/m3rciful/cotabot/core/config"
	"github.com/m3rciful/cotabot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares assembles the standard middleware chain: panic recovery
// first, then rate limiting, then request logging and latency metrics.
func DefaultMiddlewares(cfg *config.Config) []tele.MiddlewareFunc {
	chain := []tele.MiddlewareFunc{
		middleware.RecoverMiddleware,
	}

	rl := cfg.RateLimit
	if rl.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(rl.ExcludeUpdates))
		for _, kind := range rl.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		chain = append(chain, middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Interval: time.Duration(rl.IntervalMS) * time.Millisecond,
			Exclude:  exclude,
		}))
	}

	chain = append(chain,
		middleware.LoggerMiddleware,
		middleware.MessageMetricsMiddleware,
	)
	return chain
}
