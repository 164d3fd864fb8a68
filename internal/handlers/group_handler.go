package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/joshua-takyi/gatherly/internal/services"
)

type groupService interface {
	CreateGroup(ctx context.Context, session *helpers.Session, group *models.Group) (*models.Group, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)
}

type albumService interface {
	CreateAlbum(ctx context.Context, session *helpers.Session, groupID uuid.UUID, album *models.Album) (*models.Album, error)
	GetAlbum(ctx context.Context, id uuid.UUID) (*services.AlbumView, error)
	DeleteAlbum(ctx context.Context, session *helpers.Session, id uuid.UUID) error
}

func CreateGroup(g groupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}

		var group models.Group
		if err := c.ShouldBindJSON(&group); err != nil {
			_ = c.Error(errdef.NewBadRequest("invalid request payload"))
			return
		}

		created, err := g.CreateGroup(c.Request.Context(), session, &group)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Group created successfully"))
	}
}

func GetGroup(g groupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		group, err := g.GetGroup(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(group, ""))
	}
}

func CreateAlbum(a albumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		groupID, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		var album models.Album
		if err := c.ShouldBindJSON(&album); err != nil {
			_ = c.Error(errdef.NewBadRequest("invalid request payload"))
			return
		}

		created, err := a.CreateAlbum(c.Request.Context(), session, groupID, &album)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Album created successfully"))
	}
}

func GetAlbum(a albumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		album, err := a.GetAlbum(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(album, ""))
	}
}

func DeleteAlbum(a albumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := helpers.GetSession(c)
		if err != nil {
			_ = c.Error(err)
			return
		}
		id, err := uuidParam(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}

		if err := a.DeleteAlbum(c.Request.Context(), session, id); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Album deleted"))
	}
}
