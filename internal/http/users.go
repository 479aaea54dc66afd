package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookswap/internal/auth"
	"github.com/mrlokans/bookswap/internal/entities"
	"github.com/mrlokans/bookswap/internal/services"
)

type updateProfileRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Faculty     *string `json:"faculty"`
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phoneNumber"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

type UsersController struct {
	users *services.UserService
	auth  *auth.Service
}

func NewUsersController(users *services.UserService, authService *auth.Service) *UsersController {
	return &UsersController{users: users, auth: authService}
}

// GetProfile returns the caller's profile.
// GET /api/users/profile
func (uc *UsersController) GetProfile(c *gin.Context) {
	user, err := uc.users.Profile(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile applies the supplied profile fields.
// PUT /api/users/profile
func (uc *UsersController) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.users.UpdateProfile(c.Request.Context(), auth.GetUserID(c), entities.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Faculty:     req.Faculty,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Profile updated successfully", Data: user})
}

// ChangePassword replaces the caller's password.
// PUT /api/users/password
func (uc *UsersController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := uc.auth.ChangePassword(c.Request.Context(), auth.GetUserID(c),
		req.CurrentPassword, req.NewPassword, auth.GetClientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, "Password updated successfully")
}

// GetFavorites lists the caller's bookmarked listings.
// GET /api/users/favorites
func (uc *UsersController) GetFavorites(c *gin.Context) {
	listings, err := uc.users.Favourites(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GetMyBooks lists the caller's own listings.
// GET /api/users/books
func (uc *UsersController) GetMyBooks(c *gin.Context) {
	books, err := uc.users.MyBooks(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetActivity returns the caller's audit trail.
// GET /api/users/activity?limit=&offset=
func (uc *UsersController) GetActivity(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	if limit == 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	events, total, err := uc.users.Activity(c.Request.Context(), auth.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(events, total, limit, offset))
}
