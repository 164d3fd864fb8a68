package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/gatherly/internal/errdef"
	"github.com/supabase-community/gotrue-go/types"
)

const profileColumns = "id,email,username,full_name,city,interests,avatar_path,created_at,updated_at"

type Profile struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	City       string    `json:"city"`
	Interests  []string  `json:"interests"`
	AvatarPath string    `json:"avatar_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	FullName string `json:"full_name" validate:"required"`
	City     string `json:"city"`
}

type ProfileRepo interface {
	Signup(ctx context.Context, req *SignupRequest) (*types.SignupResponse, error)
	Authenticate(ctx context.Context, email, password string) (*types.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error)
	UpdateProfile(ctx context.Context, fields map[string]any, id uuid.UUID, accessToken string) (*Profile, error)
}

func (su *SupabaseRepo) Signup(ctx context.Context, req *SignupRequest) (*types.SignupResponse, error) {
	res, err := su.supabaseClient.Auth.Signup(types.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Data: map[string]interface{}{
			"username":  req.Username,
			"full_name": req.FullName,
			"city":      req.City,
		},
	})
	if err != nil {
		errMsg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(errMsg, "already registered"):
			return nil, errdef.NewConflict("email already in use")
		case strings.Contains(errMsg, "unique constraint"):
			return nil, errdef.NewConflict("user already exists")
		case strings.Contains(errMsg, "null value in column"):
			return nil, errdef.NewBadRequest("required field is missing")
		case strings.Contains(errMsg, "invalid input syntax"):
			return nil, errdef.NewBadRequest("invalid input format")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return res, nil
}

func (su *SupabaseRepo) Authenticate(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, errdef.NewUnauthorized("invalid email or password")
	}
	return resp, nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, errdef.NewBadRequest("invalid UUID")
	}

	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, status, err := client.From(ProfileTable).
		Select(profileColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%w", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	// Supabase returns an array even for single results
	var profiles []Profile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile rows: %v", err)
	}
	if len(profiles) == 0 {
		return nil, errdef.NewNotFound("profile not found")
	}
	return &profiles[0], nil
}

func (su *SupabaseRepo) UpdateProfile(ctx context.Context, fields map[string]any, id uuid.UUID, accessToken string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, errdef.NewBadRequest("invalid UUID")
	}
	if len(fields) == 0 {
		return nil, errdef.NewBadRequest("no fields to update")
	}

	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, count, err := client.From(ProfileTable).
		Update(fields, "representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if count == 0 {
		return nil, errdef.NewNotFound("profile not found")
	}

	var profiles []Profile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated profile: %v", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile returned after update")
	}
	return &profiles[0], nil
}
