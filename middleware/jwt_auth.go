package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/utils"
)

// JWTAuthMiddleware verifies bearer tokens and resolves the calling principal.
// Tokens are HMAC-signed by the credential verifier; beyond the signature this
// middleware confirms the user still exists, is active, and actually holds the
// role the token (or the X-Active-Role header) claims as active.
type JWTAuthMiddleware struct {
	secret []byte
	db     *gorm.DB
}

// JWTAuthConfig contains configuration for JWT authentication
type JWTAuthConfig struct {
	Secret string
}

// NewJWTAuthMiddleware creates a new JWT authentication middleware
func NewJWTAuthMiddleware(config JWTAuthConfig, db *gorm.DB) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		secret: []byte(config.Secret),
		db:     db,
	}
}

// Authenticate returns a middleware that builds the request principal
func (j *JWTAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if j.shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := utils.ExtractBearerToken(r)
		if err != nil {
			slog.Warn("Failed to extract bearer token", "error", err, "path", r.URL.Path, "method", r.Method)
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or missing authorization header")
			return
		}

		claims, err := j.parseToken(tokenString)
		if err != nil {
			slog.Warn("Token validation failed", "error", err, "path", r.URL.Path, "method", r.Method)
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid access token")
			return
		}

		principal, status, err := j.resolvePrincipal(r, claims)
		if err != nil {
			slog.Warn("Principal resolution failed", "error", err, "userId", claims.UserID, "path", r.URL.Path)
			utils.RespondWithError(w, status, err.Error())
			return
		}

		slog.Info("Principal authenticated",
			"userId", principal.ID,
			"activeRole", principal.ActiveRole,
			"path", r.URL.Path,
			"method", r.Method)

		next.ServeHTTP(w, r.WithContext(utils.SetPrincipal(r.Context(), principal)))
	})
}

// parseToken validates signature and standard claims
func (j *JWTAuthMiddleware) parseToken(tokenString string) (*models.PrincipalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.PrincipalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.PrincipalClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("token is expired")
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("subject claim is missing")
	}

	return claims, nil
}

// resolvePrincipal cross-checks the claims against the database and builds the
// typed principal. The returned status is the HTTP code to respond with on
// error.
func (j *JWTAuthMiddleware) resolvePrincipal(r *http.Request, claims *models.PrincipalClaims) (*models.Principal, int, error) {
	var user models.User
	if err := j.db.WithContext(r.Context()).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, fmt.Errorf("user not found")
		}
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to load user")
	}
	if !user.IsActive {
		return nil, http.StatusForbidden, fmt.Errorf("account is not active")
	}

	var roleNames []string
	err := j.db.WithContext(r.Context()).
		Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", user.ID).
		Pluck("roles.role_name", &roleNames).Error
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to load roles")
	}
	if len(roleNames) == 0 {
		// A caller with zero roles must never reach the scope resolver
		return nil, http.StatusForbidden, fmt.Errorf("no role assigned")
	}

	activeRole := claims.ActiveRole
	if headerRole := r.Header.Get("X-Active-Role"); headerRole != "" {
		activeRole = headerRole
	}
	if activeRole == "" {
		activeRole = roleNames[0]
	}
	if !containsRole(roleNames, activeRole) {
		return nil, http.StatusForbidden, fmt.Errorf("role %q is not granted to this user", activeRole)
	}

	if models.NormalizeRole(activeRole) == models.RoleOfficeOperator {
		if status, err := j.checkOfficeStatus(r, user.ID); err != nil {
			return nil, status, err
		}
	}

	return &models.Principal{
		ID:         user.ID,
		Phone:      claims.Phone,
		Roles:      roleNames,
		ActiveRole: activeRole,
	}, 0, nil
}

// checkOfficeStatus blocks operators of suspended offices
func (j *JWTAuthMiddleware) checkOfficeStatus(r *http.Request, userID uint) (int, error) {
	var status string
	err := j.db.WithContext(r.Context()).
		Table("offices").
		Select("offices.status").
		Joins("LEFT JOIN office_users ON office_users.office_id = offices.id").
		Where("offices.owner_id = ? OR office_users.user_id = ?", userID, userID).
		Limit(1).
		Scan(&status).Error
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to check office status")
	}
	if status == models.OfficeStatusSuspended || status == models.OfficeStatusSuspendedLocalized {
		return http.StatusForbidden, fmt.Errorf("office is suspended")
	}
	return 0, nil
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// shouldSkipAuth determines if authentication should be skipped for this path
func (j *JWTAuthMiddleware) shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/health",
		"/favicon.ico",
	}
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}
