package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loveall/loveall-backend/internal/database"
	"github.com/loveall/loveall-backend/internal/models"
	"github.com/loveall/loveall-backend/pkg/jwt"
)

// PrincipalContextKey is the key used to store the authenticated
// principal in the Gin context
const PrincipalContextKey = "principal"

// PrincipalContext is the authenticated principal attached to the
// request context after a guard passes.
type PrincipalContext struct {
	ID       uuid.UUID
	Email    string
	Type     models.PrincipalType
	User     *models.User
	Business *models.Business
	Admin    *models.Admin
}

// Auth builds the per-role route guards. Each guard verifies the bearer
// token, checks the token's principal variant against the route's, and
// confirms the account row still exists before letting the request in.
type Auth struct {
	jwtService *jwt.Service
	users      *database.UserRepository
	businesses *database.BusinessRepository
	admins     *database.AdminRepository
	logger     *logrus.Logger
}

// NewAuth creates the auth middleware factory
func NewAuth(jwtService *jwt.Service, users *database.UserRepository, businesses *database.BusinessRepository, admins *database.AdminRepository, logger *logrus.Logger) *Auth {
	return &Auth{
		jwtService: jwtService,
		users:      users,
		businesses: businesses,
		admins:     admins,
		logger:     logger,
	}
}

// RequireUser guards consumer routes.
func (a *Auth) RequireUser() gin.HandlerFunc {
	return a.require(models.PrincipalUser)
}

// RequireBusiness guards merchant routes.
func (a *Auth) RequireBusiness() gin.HandlerFunc {
	return a.require(models.PrincipalBusiness)
}

// RequireAdmin guards admin routes.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return a.require(models.PrincipalAdmin)
}

func (a *Auth) require(want models.PrincipalType) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Authorization token is required")
			return
		}

		// Expiry is reported as its own message so clients can tell a
		// stale session from a bad token.
		if a.jwtService.IsTokenExpired(tokenString) {
			abortUnauthorized(c, "Token has expired")
			return
		}

		claims, err := a.jwtService.ValidateToken(tokenString)
		if err != nil {
			a.logger.WithFields(logrus.Fields{
				"path":  c.Request.URL.Path,
				"ip":    c.ClientIP(),
				"error": err.Error(),
			}).Warn("token validation failed")
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		got, err := models.ParsePrincipalType(claims.Type)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		if got != want {
			c.JSON(http.StatusForbidden, gin.H{
				"success":    false,
				"message":    "You do not have access to this resource",
				"redirectTo": got.RedirectPath(),
			})
			c.Abort()
			return
		}

		principal := PrincipalContext{
			ID:    claims.ID,
			Email: claims.Email,
			Type:  got,
		}

		// The row lookup makes deleted accounts lose access before the
		// token expires.
		switch want {
		case models.PrincipalUser:
			user, err := a.users.FindByID(claims.ID)
			if err != nil {
				abortUnauthorized(c, "Account no longer exists")
				return
			}
			principal.User = user
		case models.PrincipalBusiness:
			business, err := a.businesses.FindByID(claims.ID)
			if err != nil {
				abortUnauthorized(c, "Account no longer exists")
				return
			}
			principal.Business = business
		case models.PrincipalAdmin:
			admin, err := a.admins.FindByID(claims.ID)
			if err != nil {
				abortUnauthorized(c, "Account no longer exists")
				return
			}
			principal.Admin = admin
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from the Gin
// context. The boolean is false when no guard ran on the route.
func GetPrincipal(c *gin.Context) (PrincipalContext, bool) {
	value, exists := c.Get(PrincipalContextKey)
	if !exists {
		return PrincipalContext{}, false
	}
	principal, ok := value.(PrincipalContext)
	return principal, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
	c.Abort()
}
