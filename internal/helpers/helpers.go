package helpers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Role         string                 `json:"role"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// FullName reads the name stored in the auth user's metadata at sign up.
func (c *CustomClaims) FullName() string {
	if name, ok := c.UserMetadata["full_name"].(string); ok {
		return name
	}
	return ""
}

// TokenValidator validates Supabase access tokens, either with the project's HS256 secret or
// against the project's JWKS, which is fetched once and refreshed in the background.
type TokenValidator struct {
	secret []byte
	jwks   *keyfunc.JWKS
}

func NewTokenValidator(supabaseURL, jwtSecret string) (*TokenValidator, error) {
	if jwtSecret != "" {
		return &TokenValidator{secret: []byte(jwtSecret)}, nil
	}
	if supabaseURL == "" {
		return nil, errors.New("SUPABASE_URL not set")
	}

	jwksURL := fmt.Sprintf("%s/auth/v1/.well-known/jwks.json", strings.TrimRight(supabaseURL, "/"))

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               context.Background(),
		RefreshInterval:   time.Hour,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %v", err)
	}
	return &TokenValidator{jwks: jwks}, nil
}

func (tv *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	var (
		keyFunc jwt.Keyfunc
		methods []string
	)
	if tv.jwks != nil {
		keyFunc = tv.jwks.Keyfunc
		methods = []string{"RS256", "ES256"}
	} else {
		keyFunc = func(*jwt.Token) (interface{}, error) { return tv.secret, nil }
		methods = []string{"HS256"}
	}

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, keyFunc, jwt.WithValidMethods(methods))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func (tv *TokenValidator) Close() {
	if tv.jwks != nil {
		tv.jwks.EndBackground()
	}
}

var (
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasNumber  = regexp.MustCompile(`\d`)
	hasSpecial = regexp.MustCompile(`[@$!%*?&]`)
)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	return hasLower.MatchString(password) &&
		hasUpper.MatchString(password) &&
		hasNumber.MatchString(password) &&
		hasSpecial.MatchString(password)
}

// StringTrim trims every string value of a PATCH body in place.
func StringTrim(fields map[string]any) map[string]any {
	for k, v := range fields {
		if s, ok := v.(string); ok {
			fields[k] = strings.TrimSpace(s)
		}
	}
	return fields
}
