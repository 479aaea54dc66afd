package interfaces

// Compile-time checks that the concrete stores, loggers and health probes
// satisfy the interfaces their consumers declare.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookswap/internal/audit"
	"github.com/mrlokans/bookswap/internal/auth"
	"github.com/mrlokans/bookswap/internal/database"
	"github.com/mrlokans/bookswap/internal/database/books"
	"github.com/mrlokans/bookswap/internal/database/favourites"
	"github.com/mrlokans/bookswap/internal/database/messages"
	"github.com/mrlokans/bookswap/internal/database/transactions"
	"github.com/mrlokans/bookswap/internal/database/users"
	"github.com/mrlokans/bookswap/internal/http"
	"github.com/mrlokans/bookswap/internal/scheduler"
	"github.com/mrlokans/bookswap/internal/services"
	"github.com/mrlokans/bookswap/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.UserStore = (*users.Repository)(nil)
var _ services.BookStore = (*books.Repository)(nil)
var _ services.FavouriteStore = (*favourites.Repository)(nil)
var _ services.MessageStore = (*messages.Repository)(nil)
var _ services.OpenRequestStore = (*transactions.Repository)(nil)

// =============================================================================
// Activity Trail
// =============================================================================

var _ services.ActivityLog = (*audit.Service)(nil)
var _ services.ActivityReader = (*audit.Service)(nil)
var _ auth.EventLog = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Authentication
// =============================================================================

var _ auth.TokenRevoker = (*auth.MemoryTokenRevoker)(nil)
var _ auth.TokenRevoker = (*auth.RedisTokenRevoker)(nil)

// =============================================================================
// Health Checks and Background Work
// =============================================================================

var _ http.Pinger = (*database.Database)(nil)
var _ http.Pinger = (*auth.RedisTokenRevoker)(nil)
var _ http.Pinger = (*tasks.Client)(nil)

var _ scheduler.Enqueuer = scheduler.EnqueuerFunc(nil)
