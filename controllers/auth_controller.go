package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedpulse/feedpulse/apperror"
	"github.com/feedpulse/feedpulse/middleware"
	"github.com/feedpulse/feedpulse/services"
	"github.com/feedpulse/feedpulse/utils"
)

// AuthController exposes signup, login, logout, and the user status text.
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController creates an AuthController.
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup registers a new account.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperror.NewValidation("Validation failed",
			apperror.FieldError{Field: "body", Message: "invalid request payload"}))
		return
	}

	userID, err := a.auth.Signup(req.Email, req.Name, req.Password)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.JSON(ctx, http.StatusCreated, "User created!", gin.H{"userId": userID})
}

// Login verifies credentials and returns a session token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperror.NewValidation("Validation failed",
			apperror.FieldError{Field: "body", Message: "invalid request payload"}))
		return
	}

	token, userID, err := a.auth.Login(req.Email, req.Password)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token, "userId": userID})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	token, ok := middleware.BearerToken(ctx)
	if !ok {
		utils.Fail(ctx, apperror.NewAuth("Not authenticated"))
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL)
	if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)

	utils.JSON(ctx, http.StatusOK, "Logged out", nil)
}

// GetStatus returns the acting user's status text.
func (a *AuthController) GetStatus(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Fail(ctx, apperror.NewAuth("Not authenticated"))
		return
	}

	status, err := a.auth.GetStatus(userID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.JSON(ctx, http.StatusOK, "User status fetched", gin.H{"status": status})
}

// PutStatus replaces the acting user's status text.
func (a *AuthController) PutStatus(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Fail(ctx, apperror.NewAuth("Not authenticated"))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperror.NewValidation("Validation failed",
			apperror.FieldError{Field: "body", Message: "invalid request payload"}))
		return
	}

	if err := a.auth.UpdateStatus(userID, req.Status); err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.JSON(ctx, http.StatusOK, "User status posted", gin.H{"status": req.Status})
}
