package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/config"
	"github.com/mrlokans/bookswap/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *entities.User {
	t.Helper()
	user := &entities.User{
		FirstName:    "Ana",
		LastName:     "Petrova",
		Email:        email,
		PasswordHash: "hash",
		Faculty:      "Science",
		Department:   "Mathematics",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestNewDatabase(t *testing.T) {
	t.Run("migrates all tables", func(t *testing.T) {
		db := setupTestDB(t)

		for _, table := range []string{"users", "books", "favorites", "messages", "transactions", "audit_events"} {
			assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
		}
		assert.NoError(t, db.Ping(context.Background()))
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := NewDatabase(config.Database{Driver: "oracle"}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("postgres requires a DSN", func(t *testing.T) {
		_, err := NewDatabase(config.Database{Driver: config.DriverPostgres}, zap.NewNop())
		assert.ErrorContains(t, err, "DSN")
	})
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?"+sqliteParams, sqliteDSN("app.db"))
	assert.Equal(t, "file:app.db?cache=shared&"+sqliteParams, sqliteDSN("file:app.db?cache=shared"))
}

func TestConstraints(t *testing.T) {
	db := setupTestDB(t)

	t.Run("duplicate email is translated", func(t *testing.T) {
		createUser(t, db.DB, "dup@uni.edu")
		err := db.DB.Create(&entities.User{
			FirstName: "B", LastName: "C", Email: "dup@uni.edu",
			PasswordHash: "x", Faculty: "F", Department: "D",
		}).Error
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("book delete cascades to dependants", func(t *testing.T) {
		seller := createUser(t, db.DB, "seller@uni.edu")
		buyer := createUser(t, db.DB, "buyer@uni.edu")
		book := &entities.Book{
			Title: "Linear Algebra", Author: "Strang", Subject: "Mathematics",
			Condition: entities.ConditionGood, SellerID: seller.ID,
		}
		require.NoError(t, db.DB.Omit("Seller").Create(book).Error)
		require.NoError(t, db.DB.Omit("User", "Book").Create(&entities.Favorite{UserID: buyer.ID, BookID: book.ID}).Error)
		require.NoError(t, db.DB.Omit("Sender", "Receiver", "Book").Create(&entities.Message{
			SenderID: buyer.ID, ReceiverID: seller.ID, BookID: book.ID, Content: "hi",
		}).Error)

		require.NoError(t, db.DB.Delete(&entities.Book{}, "id = ?", book.ID).Error)

		var favorites, messages int64
		db.DB.Model(&entities.Favorite{}).Where("book_id = ?", book.ID).Count(&favorites)
		db.DB.Model(&entities.Message{}).Where("book_id = ?", book.ID).Count(&messages)
		assert.Zero(t, favorites)
		assert.Zero(t, messages)
	})

	t.Run("book requires an existing seller", func(t *testing.T) {
		err := db.DB.Omit("Seller").Create(&entities.Book{
			Title: "Ghost", Author: "Nobody", Subject: "None",
			Condition: entities.ConditionPoor, SellerID: "missing",
		}).Error
		assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
	})
}
