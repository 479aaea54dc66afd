// Package database provides the data access layer for the marketplace.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (SQLite or PostgreSQL), migrations
//	├── users/           # Accounts and profiles
//	├── books/           # Listings and listing filters
//	├── favourites/      # Bookmarked listings
//	├── messages/        # Messages and conversation summaries
//	├── transactions/    # Purchase and exchange requests
//	└── audit/           # Per-user activity trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type over a *gorm.DB:
//
//	db, err := database.NewDatabase(cfg.Database, logger)
//
//	booksRepo := books.NewRepository(db.DB)
//	listings, err := booksRepo.List(ctx, entities.BookFilter{Subject: "math"})
//
// Repositories return gorm errors unchanged. The connection is opened with
// TranslateError, so unique and foreign key violations surface as
// gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated on both drivers.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in Migrate
//  5. Add a compile-time check to internal/interfaces/checks.go
package database
