// middleware/auth.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	af_errors "github.com/ucook/accessflow/errors"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/model"
	"github.com/ucook/accessflow/util"
)

const (
	userKey = "user"
	// DevEmailHeader identifies the caller when dev mode is on.
	DevEmailHeader = "X-User-Email"
)

// Claims only carries the caller's email; everything else about the user
// is looked up on every request.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserResolver maps an authenticated email to a stored user.
type UserResolver interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthOptions struct {
	Secret  string
	Issuer  string
	DevMode bool
}

// IssueToken signs an HS256 token for email.
func IssueToken(secret, issuer, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(tokenString string, opts AuthOptions) (*Claims, error) {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(opts.Secret), nil
	}, parserOpts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, fmt.Errorf("invalid token or wrong claims type")
	}
	return claims, nil
}

// Authenticate resolves the bearer token to a user and stores the user id
// under util.UserIDKey.
func Authenticate(users UserResolver, opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := callerEmail(c, opts)
		if err != nil {
			logger.Warn("Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			util.RespondWithDomainError(c, err)
			c.Abort()
			return
		}

		user, err := users.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			if af_errors.IsNotFound(err) {
				err = af_errors.Unauthorized("Unknown user %s", email)
			}
			util.RespondWithDomainError(c, err)
			c.Abort()
			return
		}

		c.Set(util.UserIDKey, user.ID)
		c.Set(userKey, user)
		c.Next()
	}
}

func callerEmail(c *gin.Context, opts AuthOptions) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if opts.DevMode {
			if email := strings.TrimSpace(c.GetHeader(DevEmailHeader)); email != "" {
				return email, nil
			}
		}
		return "", af_errors.ErrMissingCredential
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	claims, err := parseToken(tokenString, opts)
	if err != nil {
		logger.Debug("Token rejected", zap.Error(err))
		return "", af_errors.ErrInvalidCredential
	}
	return claims.Email, nil
}

// CurrentUser returns the user loaded by Authenticate.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// RequireRole rejects callers without an explicit role claim.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.RespondWithDomainError(c, af_errors.ErrMissingCredential)
			c.Abort()
			return
		}
		if !user.HasRole(role) {
			logger.Warn("User does not have the required role",
				zap.String("userID", user.ID),
				zap.String("role", string(role)))
			c.JSON(http.StatusForbidden, gin.H{"error": af_errors.ErrRoleRequired.Error(), "code": af_errors.ErrForbidden.Error()})
			c.Abort()
			return
		}
		c.Next()
	}
}
