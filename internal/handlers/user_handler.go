package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

type userService interface {
	CreateUser(ctx context.Context, req *models.SignupRequest) (*types.SignupResponse, error)
	AuthenticateUser(ctx context.Context, email, password string) (*types.TokenResponse, error)
	GetProfile(ctx context.Context, session *helpers.Session) (*models.Profile, error)
	UpdateProfile(ctx context.Context, session *helpers.Session, fields map[string]any) (*models.Profile, error)
	ListInterests(ctx context.Context) ([]models.InterestGroup, error)
}

func CreateUser(u userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errdef.NewBadRequest("invalid request payload"))
			return
		}

		created, err := u.CreateUser(c.Request.Context(), &req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created.User, "Account created, check your email to confirm it"))
	}
}

func AuthenticateUser(u userService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errdef.NewBadRequest("invalid request payload"))
			return
		}

		tokens, err := u.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			_ = c.Error(err)
			return
		}

		helpers.SetAuthCookies(c, tokens, secureCookies)
		// Return user info but not tokens
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"user": tokens.User}, "Logged in"))
	}
}

func Logout(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		helpers.ClearAuthCookies(c, secureCookies)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out"))
	}
}

func GetProfile(u userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		profile, err := u.GetProfile(c.Request.Context(), session)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

func UpdateProfile(u userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
			_ = c.Error(errdef.NewBadRequest("invalid request payload"))
			return
		}

		profile, err := u.UpdateProfile(c.Request.Context(), session, fields)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, "Profile updated"))
	}
}

func ListInterests(u userService) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := u.ListInterests(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(groups, ""))
	}
}
