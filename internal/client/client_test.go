package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookswap/internal/entities"
)

func TestClient_AuthErrors(t *testing.T) {
	ctx := context.Background()
	c := New(startServer(t))

	_, err := c.Register(ctx, account("Ana", "ana@uni.edu"))
	require.NoError(t, err)

	_, err = c.Register(ctx, account("Ana", "ana@uni.edu"))
	assert.True(t, IsConflict(err))

	_, err = c.Login(ctx, "ana@uni.edu", "wrong-pass")
	assert.True(t, IsUnauthorized(err))

	_, err = c.Profile(ctx)
	assert.True(t, IsUnauthorized(err), "no token attached")

	bad := account("Bad", "not-an-email")
	_, err = c.Register(ctx, bad)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Code)
	require.NotEmpty(t, apiErr.Details)
	assert.Equal(t, "email", apiErr.Details[0].Field)
}

func TestClient_BooksAndFavorites(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	seller := signedIn(t, url, "Sam", "sam@uni.edu").Client()
	buyer := signedIn(t, url, "Bea", "bea@uni.edu").Client()

	id, err := seller.CreateBook(ctx, calculusBook())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	listing, err := buyer.GetBook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Calculus 101", listing.Title)
	assert.Equal(t, "Sam", listing.SellerFirstName)
	assert.Equal(t, entities.BookStatusAvailable, listing.Status)

	upd := calculusBook()
	upd.Price = price(15)
	_, err = buyer.UpdateBook(ctx, id, upd)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))

	book, err := seller.UpdateBook(ctx, id, upd)
	require.NoError(t, err)
	require.NotNil(t, book.Price)
	assert.Equal(t, 15.0, *book.Price)

	listings, err := New(url).ListBooks(ctx, entities.BookFilter{Subject: "MATH"})
	require.NoError(t, err)
	assert.Len(t, listings, 1)

	require.NoError(t, buyer.AddFavorite(ctx, id))
	assert.True(t, IsConflict(buyer.AddFavorite(ctx, id)))
	favs, err := buyer.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.NoError(t, buyer.RemoveFavorite(ctx, id))
	require.NoError(t, buyer.RemoveFavorite(ctx, id))

	mine, err := seller.MyBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, seller.DeleteBook(ctx, id))
	_, err = buyer.GetBook(ctx, id)
	assert.True(t, IsNotFound(err))
}

func TestClient_ProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	c := signedIn(t, url, "Ana", "ana@uni.edu").Client()

	dept := "Physics"
	user, err := c.UpdateProfile(ctx, ProfileUpdate{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Physics", user.Department)
	assert.Equal(t, "Ana", user.FirstName)

	assert.True(t, IsUnauthorized(c.ChangePassword(ctx, "nope-nope", "another1")))
	require.NoError(t, c.ChangePassword(ctx, "secret1", "another1"))
	_, err = New(url).Login(ctx, "ana@uni.edu", "another1")
	assert.NoError(t, err)

	page, err := c.Activity(ctx, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Limit)
}

func TestClient_Transactions(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	seller := signedIn(t, url, "Sam", "sam@uni.edu").Client()
	buyer := signedIn(t, url, "Bea", "bea@uni.edu").Client()

	id, err := seller.CreateBook(ctx, calculusBook())
	require.NoError(t, err)

	tx, err := buyer.RequestTransaction(ctx, id, entities.TransactionExchange)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionPending, tx.Status)

	_, err = buyer.RequestTransaction(ctx, id, entities.TransactionPurchase)
	assert.True(t, IsConflict(err))

	tx, err = seller.UpdateTransactionStatus(ctx, tx.ID, entities.TransactionAccepted)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionAccepted, tx.Status)

	views, err := seller.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Calculus 101", views[0].BookTitle)
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Conversations(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "502")
}

func TestFilterQuery(t *testing.T) {
	q := filterQuery(entities.BookFilter{Title: "calc", Condition: entities.ConditionPoor, Limit: 10})
	assert.Equal(t, "condition=poor&limit=10&title=calc", q.Encode())
	assert.Empty(t, filterQuery(entities.BookFilter{}).Encode())
}
