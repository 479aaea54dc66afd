// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces (internal/services/interfaces.go)
//
//   - UserStore: Accounts and profiles
//   - BookStore: Listings and listing filters
//   - FavouriteStore: Bookmarked listings
//   - MessageStore: Messages and derived conversations
//
// The transaction workflow uses *transactions.Repository and *books.Repository
// directly because it needs both inside one database transaction.
//
// ## Activity Interfaces
//
//   - ActivityLog: Non-blocking activity writes (internal/services/interfaces.go)
//   - ActivityReader: Paged activity reads (internal/services/users.go)
//   - EventLog: Auth events (internal/auth/service.go)
//   - AuditEventCleaner: Retention purge (internal/tasks/cleanup_audit.go)
//
// All four are implemented by *audit.Service.
//
// ## Authentication Interfaces
//
//   - TokenRevoker: Revoked token IDs, in memory or in Redis (internal/auth/revoker.go)
//
// ## Infrastructure Interfaces
//
//   - Pinger: Dependency probe for /health (internal/http/health.go)
//   - Enqueuer: Hands scheduled purges to the task queue (internal/scheduler/audit_cleanup.go)
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., reviews):
//
//  1. Create sub-package: internal/database/reviews/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Declare the store interface in internal/services/interfaces.go and
//     implement it
//
//  4. Register the entity in database.Migrate
//
//  5. Add a compile-time check to checks.go:
//
//     var _ services.ReviewStore = (*reviews.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// Implementations are checked in checks.go rather than next to each type, so
// the store packages do not import services:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
package interfaces
