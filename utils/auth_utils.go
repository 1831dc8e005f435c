package utils

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/property-system/tenancy-api/models"
)

// AuthContextKey is the key type for authentication values in request context
type AuthContextKey string

const authContextKeyPrincipal AuthContextKey = "principal"

// ExtractBearerToken extracts the Bearer token from the Authorization header
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}

	return token, nil
}

// SetPrincipal stores the authenticated principal in the request context
func SetPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, authContextKeyPrincipal, p)
}

// GetPrincipal retrieves the authenticated principal from the context
func GetPrincipal(ctx context.Context) (*models.Principal, error) {
	p, ok := ctx.Value(authContextKeyPrincipal).(*models.Principal)
	if !ok || p == nil {
		return nil, fmt.Errorf("no authenticated principal found in context")
	}
	return p, nil
}

// RequirePrincipal is a helper for handlers that need an authenticated caller
func RequirePrincipal(r *http.Request) (*models.Principal, error) {
	return GetPrincipal(r.Context())
}
