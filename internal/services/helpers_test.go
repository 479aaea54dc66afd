package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/config"
	"github.com/mrlokans/bookswap/internal/database"
	"github.com/mrlokans/bookswap/internal/database/audit"
	"github.com/mrlokans/bookswap/internal/database/books"
	"github.com/mrlokans/bookswap/internal/database/favourites"
	"github.com/mrlokans/bookswap/internal/database/messages"
	"github.com/mrlokans/bookswap/internal/database/transactions"
	"github.com/mrlokans/bookswap/internal/database/users"
	"github.com/mrlokans/bookswap/internal/entities"
)

type recordedActivity struct {
	userID, action, entityID string
}

type fakeActivity struct {
	mu     sync.Mutex
	events []recordedActivity
}

func (f *fakeActivity) record(userID, action, entityID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedActivity{userID, action, entityID})
}

func (f *fakeActivity) LogListing(userID, action, bookID, _ string) {
	f.record(userID, action, bookID)
}

func (f *fakeActivity) LogProfile(userID, action, _ string) {
	f.record(userID, action, "")
}

func (f *fakeActivity) LogTransaction(userID, action, txID, _ string) {
	f.record(userID, action, txID)
}

func (f *fakeActivity) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.action)
	}
	return out
}

type testEnv struct {
	db           *gorm.DB
	users        *users.Repository
	books        *books.Repository
	favourites   *favourites.Repository
	messages     *messages.Repository
	transactions *transactions.Repository
	audit        *audit.Repository
	activity     *fakeActivity
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "services.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:           db.DB,
		users:        users.NewRepository(db.DB),
		books:        books.NewRepository(db.DB),
		favourites:   favourites.NewRepository(db.DB),
		messages:     messages.NewRepository(db.DB),
		transactions: transactions.NewRepository(db.DB),
		audit:        audit.NewRepository(db.DB),
		activity:     &fakeActivity{},
	}
}

func (e *testEnv) user(t *testing.T, first, email string) *entities.User {
	t.Helper()
	u := &entities.User{
		FirstName:    first,
		LastName:     "Tester",
		Email:        email,
		PasswordHash: "hash",
		Faculty:      "Science",
		Department:   "Mathematics",
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) book(t *testing.T, sellerID, title string, exchangeable bool) *entities.Book {
	t.Helper()
	b := &entities.Book{
		Title:          title,
		Author:         "Author",
		Subject:        "Mathematics",
		Condition:      entities.ConditionGood,
		IsExchangeable: exchangeable,
		SellerID:       sellerID,
	}
	require.NoError(t, e.books.Create(context.Background(), b))
	return b
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	require.Error(t, err)
	return KindOf(err)
}
