package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// StreamClaims identify the subscriber of a real-time stream.
type StreamClaims struct {
	UserID     string
	EmployeeID *string
	Role       user.Role
}

// Service issues and verifies tokens. Access tokens are normally issued by the HR identity
// service with the same secret; GenerateAccessToken exists for local tooling and tests.
type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	GenerateSSEToken(actor user.Actor) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (StreamClaims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     actor.UserID,
		"employee_id": valueOrNil(actor.EmployeeID),
		"role":        string(actor.Role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections.
// EventSource cannot send headers, so the token travels in the query string.
func (j *JWTService) GenerateSSEToken(actor user.Actor) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     actor.UserID,
		"employee_id": valueOrNil(actor.EmployeeID),
		"role":        string(actor.Role),
		"type":        TokenTypeSSE,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its subscriber
func (j *JWTService) ValidateSSEToken(tokenString string) (StreamClaims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return StreamClaims{}, ErrInvalidToken
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return StreamClaims{}, ErrInvalidToken
	}

	userIDVal, _ := token.Get("user_id")
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return StreamClaims{}, ErrInvalidToken
	}

	claims := StreamClaims{UserID: userID}
	if v, ok := token.Get("employee_id"); ok {
		if employeeID, ok := v.(string); ok && employeeID != "" {
			claims.EmployeeID = &employeeID
		}
	}
	if v, ok := token.Get("role"); ok {
		if role, ok := v.(string); ok {
			claims.Role = user.Role(role)
		}
	}

	return claims, nil
}

func valueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
