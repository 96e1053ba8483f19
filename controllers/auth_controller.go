package controllers

import (
	"net/http"

	"guesthouse-backend/middleware"
	"guesthouse-backend/services"
	"guesthouse-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// POST /api/v1/auth/setup
func (ac *AuthController) Setup(c *gin.Context) {
	var in services.SetupInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := ac.Auth.Setup(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, res, "Initial admin user created successfully")
}

// POST /api/v1/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in services.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := ac.Auth.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res, "Login successful")
}

// POST /api/v1/auth/register (admin only)
func (ac *AuthController) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := ac.Auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"user": user}, "User registered successfully")
}

// GET /api/v1/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.Auth.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"user": user}, "User profile retrieved successfully")
}

// PUT /api/v1/auth/update
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var in services.ProfileUpdate
	if !bindJSON(c, &in) {
		return
	}
	user, err := ac.Auth.UpdateProfile(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"user": user}, "User profile updated successfully")
}
