package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/auth"
	"github.com/mrlokans/bookswap/internal/services"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Logger *zap.Logger

	// Services
	Auth         *auth.Service
	Users        *services.UserService
	Books        *services.BookService
	Messages     *services.MessageService
	Transactions *services.TransactionService

	// Dependencies reported by /health
	HealthChecks map[string]Pinger

	// Per-IP request limiting; nil disables it
	RateLimiter *IPRateLimiter

	// Application info
	Version string
}
