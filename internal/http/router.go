package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	registerValidators()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.Use(auth.SecurityHeadersMiddleware())

	health := NewHealthController(cfg.HealthChecks, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Handler())
	}
	requireAuth := auth.NewMiddleware(cfg.Auth).RequireAuth()

	authController := NewAuthController(cfg.Auth)
	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", authController.Register)
	authRoutes.POST("/login", authController.Login)
	authRoutes.POST("/logout", requireAuth, authController.Logout)

	users := NewUsersController(cfg.Users, cfg.Auth)
	userRoutes := api.Group("/users", requireAuth)
	userRoutes.GET("/profile", users.GetProfile)
	userRoutes.PUT("/profile", users.UpdateProfile)
	userRoutes.PUT("/password", users.ChangePassword)
	userRoutes.GET("/favorites", users.GetFavorites)
	userRoutes.GET("/books", users.GetMyBooks)
	userRoutes.GET("/activity", users.GetActivity)

	// Listings are public to browse; changes need a token.
	books := NewBooksController(cfg.Books)
	api.GET("/books", books.ListBooks)
	api.GET("/books/:id", books.GetBook)
	bookRoutes := api.Group("/books", requireAuth)
	bookRoutes.POST("", books.CreateBook)
	bookRoutes.PUT("/:id", books.UpdateBook)
	bookRoutes.DELETE("/:id", books.DeleteBook)
	bookRoutes.POST("/:id/favorite", books.AddFavorite)
	bookRoutes.DELETE("/:id/favorite", books.RemoveFavorite)

	messages := NewMessagesController(cfg.Messages)
	messageRoutes := api.Group("/messages", requireAuth)
	messageRoutes.POST("", messages.Send)
	messageRoutes.GET("/book/:bookId", messages.BookMessages)
	messageRoutes.GET("/conversations", messages.Conversations)

	transactions := NewTransactionsController(cfg.Transactions)
	txRoutes := api.Group("/transactions", requireAuth)
	txRoutes.POST("", transactions.Request)
	txRoutes.GET("", transactions.List)
	txRoutes.PUT("/:id/status", transactions.UpdateStatus)

	return router
}
