package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookswap/internal/auth"
	"github.com/mrlokans/bookswap/internal/entities"
	"github.com/mrlokans/bookswap/internal/services"
)

type requestTransactionRequest struct {
	BookID string `json:"bookId" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=purchase exchange"`
}

type updateTransactionRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected cancelled completed"`
}

type TransactionsController struct {
	transactions *services.TransactionService
}

func NewTransactionsController(transactions *services.TransactionService) *TransactionsController {
	return &TransactionsController{transactions: transactions}
}

// Request opens a purchase or exchange request.
// POST /api/transactions
func (tc *TransactionsController) Request(c *gin.Context) {
	var req requestTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := tc.transactions.Request(c.Request.Context(), auth.GetUserID(c), req.BookID, entities.TransactionType(req.Type))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// List returns the caller's transactions as buyer or seller.
// GET /api/transactions
func (tc *TransactionsController) List(c *gin.Context) {
	views, err := tc.transactions.List(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// UpdateStatus moves a transaction through its lifecycle.
// PUT /api/transactions/:id/status
func (tc *TransactionsController) UpdateStatus(c *gin.Context) {
	var req updateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := tc.transactions.UpdateStatus(c.Request.Context(), auth.GetUserID(c), c.Param("id"), entities.TransactionStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
