package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
)

type GroupService struct {
	groups models.GroupsRepo
}

func NewGroupService(groups models.GroupsRepo) *GroupService {
	return &GroupService{groups: groups}
}

func (gs *GroupService) CreateGroup(ctx context.Context, session *helpers.Session, group *models.Group) (*models.Group, error) {
	group.Name = strings.TrimSpace(group.Name)
	group.PaymentAccount = strings.TrimSpace(group.PaymentAccount)
	if err := models.Validate.Struct(group); err != nil {
		return nil, errdef.NewBadRequest("%v", err)
	}

	group.ID = uuid.New()
	group.OwnerID = session.UserID
	group.CreatedAt = time.Now().UTC()
	return gs.groups.CreateGroup(ctx, group, session.AccessToken)
}

func (gs *GroupService) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return gs.groups.GetGroup(ctx, id)
}

func (gs *GroupService) OwnedGroupIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return gs.groups.ListOwnedGroupIDs(ctx, userID)
}

// ResolveSession builds the per request session from validated token claims, including the
// groups the caller owns.
func (gs *GroupService) ResolveSession(ctx context.Context, claims *helpers.CustomClaims, accessToken string) (*helpers.Session, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errdef.NewUnauthorized("invalid user ID in token")
	}

	owned, err := gs.OwnedGroupIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &helpers.Session{
		UserID:        userID,
		Email:         claims.Email,
		FullName:      claims.FullName(),
		AccessToken:   accessToken,
		OwnedGroupIDs: owned,
	}, nil
}
