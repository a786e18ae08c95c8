package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
)

const actorKey = "actor"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// roleClaim mirrors one role assignment carried in the access token.
type roleClaim struct {
	Code   string  `json:"code"`
	UnitID *string `json:"unit_id,omitempty"`
}

// accessClaims are the claims the identity service puts into access tokens.
// This service verifies tokens only, it never issues them.
type accessClaims struct {
	DisplayName string      `json:"name,omitempty"`
	Roles       []roleClaim `json:"roles"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HMAC-signed access tokens from the identity
// service and maps their claims onto a domain actor.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier builds a verifier for the shared-secret token scheme.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates a raw token and returns the actor it describes.
func (v *TokenVerifier) Verify(raw string) (domain.Actor, error) {
	var claims accessClaims

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("parse access token: %w", err)
	}
	if !token.Valid {
		return domain.Actor{}, errors.New("invalid access token")
	}
	if claims.Subject == "" {
		return domain.Actor{}, errors.New("access token missing subject")
	}

	actor := domain.Actor{
		ID:          claims.Subject,
		DisplayName: claims.DisplayName,
		Assignments: make([]domain.RoleAssignment, 0, len(claims.Roles)),
	}
	for _, rc := range claims.Roles {
		actor.Assignments = append(actor.Assignments, domain.RoleAssignment{
			Role:            domain.RoleCode(rc.Code),
			ExecutingUnitID: rc.UnitID,
		})
	}

	return actor, nil
}

// RequireAuth validates the Authorization header and stores the resolved
// actor on the request context.
func RequireAuth(verifier *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		raw := strings.TrimSpace(parts[1])
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		actor, err := verifier.Verify(raw)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token expired"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid access token"))
			}
			return
		}

		c.Set(actorKey, actor)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.ActorID = actor.ID
		}

		c.Next()
	}
}

// GetActor retrieves the authenticated actor stored by RequireAuth.
func GetActor(c *gin.Context) (domain.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}

// RequireAdmin rejects requests whose actor does not hold the system
// administrator role. Used for operational endpoints that have no
// per-resource permission semantics.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}
		if !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}
		c.Next()
	}
}
