package helpers

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
)

const SessionKey = "session"

// Session is the caller's identity for one request. It is built by the auth middleware and
// passed to services as a parameter.
type Session struct {
	UserID        uuid.UUID   `json:"user_id"`
	Email         string      `json:"email"`
	FullName      string      `json:"full_name"`
	AccessToken   string      `json:"-"`
	OwnedGroupIDs []uuid.UUID `json:"owned_group_ids"`
}

func (s *Session) OwnsGroup(groupID uuid.UUID) bool {
	return s != nil && slices.Contains(s.OwnedGroupIDs, groupID)
}

func (s *Session) IsGroupOwner() bool {
	return s != nil && len(s.OwnedGroupIDs) > 0
}

func GetSession(c *gin.Context) (*Session, error) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, errdef.NewUnauthorized("unauthorized")
	}
	session, ok := v.(*Session)
	if !ok || session == nil {
		return nil, errdef.NewUnauthorized("invalid session")
	}
	return session, nil
}
