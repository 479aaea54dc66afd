package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookswap/internal/auth"
	"github.com/mrlokans/bookswap/internal/entities"
	"github.com/mrlokans/bookswap/internal/services"
)

type bookRequest struct {
	Title          string   `json:"title" binding:"required"`
	Author         string   `json:"author" binding:"required"`
	Subject        string   `json:"subject" binding:"required"`
	ISBN           string   `json:"isbn" binding:"max=20"`
	Condition      string   `json:"condition" binding:"required,oneof=good medium poor"`
	Price          *float64 `json:"price" binding:"omitempty,gte=0"`
	IsExchangeable bool     `json:"isExchangeable"`
	Notes          string   `json:"notes"`
	Status         string   `json:"status" binding:"omitempty,oneof=available reserved sold"`
}

func (r bookRequest) input() services.BookInput {
	return services.BookInput{
		Title:          r.Title,
		Author:         r.Author,
		Subject:        r.Subject,
		ISBN:           r.ISBN,
		Condition:      entities.BookCondition(r.Condition),
		Price:          r.Price,
		IsExchangeable: r.IsExchangeable,
		Notes:          r.Notes,
		Status:         entities.BookStatus(r.Status),
	}
}

type BooksController struct {
	books *services.BookService
}

func NewBooksController(books *services.BookService) *BooksController {
	return &BooksController{books: books}
}

// ListBooks returns listings matching the query filters, newest first.
// GET /api/books?title=&author=&subject=&faculty=&department=&condition=&sellerId=&status=&limit=&offset=
func (bc *BooksController) ListBooks(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	listings, err := bc.books.List(c.Request.Context(), entities.BookFilter{
		Title:      c.Query("title"),
		Author:     c.Query("author"),
		Subject:    c.Query("subject"),
		Faculty:    c.Query("faculty"),
		Department: c.Query("department"),
		Condition:  entities.BookCondition(c.Query("condition")),
		SellerID:   c.Query("sellerId"),
		Status:     entities.BookStatus(c.Query("status")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GetBook returns one listing with its seller's display fields.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	listing, err := bc.books.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// CreateBook lists a new book for the caller.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	book, err := bc.books.Create(c.Request.Context(), auth.GetUserID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, book.ID, "Book listing created successfully")
}

// UpdateBook replaces the caller's listing.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	book, err := bc.books.Update(c.Request.Context(), auth.GetUserID(c), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Book listing updated successfully", Data: book})
}

// DeleteBook removes the caller's listing.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	if err := bc.books.Delete(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, "Book listing deleted successfully")
}

// AddFavorite bookmarks a listing.
// POST /api/books/:id/favorite
func (bc *BooksController) AddFavorite(c *gin.Context) {
	if err := bc.books.AddFavourite(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, "Book added to favorites")
}

// RemoveFavorite drops a bookmark.
// DELETE /api/books/:id/favorite
func (bc *BooksController) RemoveFavorite(c *gin.Context) {
	if err := bc.books.RemoveFavourite(c.Request.Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, "Book removed from favorites")
}
