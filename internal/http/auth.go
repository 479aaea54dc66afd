package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookswap/internal/auth"
)

type registerRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
	Faculty     string `json:"faculty" binding:"required"`
	Department  string `json:"department" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	Token string `json:"token"`
}

type AuthController struct {
	service *auth.Service
}

func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

// Register creates an account.
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	token, _, err := ac.service.Register(c.Request.Context(), auth.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		Faculty:     req.Faculty,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
	}, auth.GetClientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{Token: token})
}

// Login exchanges credentials for a token.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, _, err := ac.service.Login(c.Request.Context(), req.Email, req.Password, auth.GetClientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Logout revokes the token the request was made with.
// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	err := ac.service.Logout(c.Request.Context(), auth.GetUserID(c), auth.GetToken(c), auth.GetClientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, "Logged out successfully")
}
