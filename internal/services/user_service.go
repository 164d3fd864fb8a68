package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/joshua-takyi/gatherly/internal/helpers"
	"github.com/joshua-takyi/gatherly/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

// profileFields are the columns a user may change on their own profile.
var profileFields = map[string]bool{
	"username":    true,
	"full_name":   true,
	"city":        true,
	"interests":   true,
	"avatar_path": true,
}

type UserService struct {
	userRepo  models.ProfileRepo
	interests models.InterestsRepo
}

func NewUserService(userRepo models.ProfileRepo, interests models.InterestsRepo) *UserService {
	return &UserService{
		userRepo:  userRepo,
		interests: interests,
	}
}

func (us *UserService) CreateUser(ctx context.Context, req *models.SignupRequest) (*types.SignupResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := models.Validate.Struct(req); err != nil {
		return nil, errdef.NewBadRequest("%v", err)
	}

	if !helpers.IsPasswordStrong(req.Password) {
		return nil, errdef.NewBadRequest("password is not strong enough")
	}

	return us.userRepo.Signup(ctx, req)
}

func (us *UserService) AuthenticateUser(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, errdef.NewBadRequest("invalid email format")
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, errdef.NewBadRequest("invalid password format")
	}
	return us.userRepo.Authenticate(ctx, email, password)
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, errdef.NewUnauthorized("refresh token is required")
	}
	return us.userRepo.RefreshToken(ctx, refreshToken)
}

func (us *UserService) GetProfile(ctx context.Context, session *helpers.Session) (*models.Profile, error) {
	return us.userRepo.GetProfile(ctx, session.UserID, session.AccessToken)
}

// UpdateProfile applies a partial update. Interests must exist in the reference table.
func (us *UserService) UpdateProfile(ctx context.Context, session *helpers.Session, fields map[string]any) (*models.Profile, error) {
	fields = helpers.StringTrim(fields)
	for k := range fields {
		if !profileFields[k] {
			return nil, errdef.NewBadRequest("field %q cannot be updated", k)
		}
	}

	if raw, ok := fields["interests"]; ok {
		interests, err := us.validInterests(ctx, raw)
		if err != nil {
			return nil, err
		}
		fields["interests"] = interests
	}

	fields["updated_at"] = time.Now().UTC()
	return us.userRepo.UpdateProfile(ctx, fields, session.UserID, session.AccessToken)
}

func (us *UserService) validInterests(ctx context.Context, raw any) ([]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, errdef.NewBadRequest("interests must be a list of names")
	}

	known, err := us.interests.ListInterests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load interests: %w", err)
	}
	byName := make(map[string]string, len(known))
	for _, i := range known {
		byName[strings.ToLower(i.Name)] = i.Name
	}

	out := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, item := range list {
		name, ok := item.(string)
		if !ok {
			return nil, errdef.NewBadRequest("interests must be a list of names")
		}
		canonical, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errdef.NewBadRequest("unknown interest %q", name)
		}
		if !seen[canonical] {
			seen[canonical] = true
			out = append(out, canonical)
		}
	}
	return out, nil
}

func (us *UserService) ListInterests(ctx context.Context) ([]models.InterestGroup, error) {
	interests, err := us.interests.ListInterests(ctx)
	if err != nil {
		return nil, err
	}
	return models.GroupInterests(interests), nil
}
