package auth

import (
	"errors"
	"net/http"
	"time"

	"sidequest/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const SessionCookie = "sid"

const sessionUserKey = "session_user"

var (
	ErrTokenInvalid = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

type SessionAuth struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionAuth(secret string, ttl time.Duration) *SessionAuth {
	return &SessionAuth{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// SessionUser is the verified caller identity extracted from the
// session cookie. Handlers treat it as opaque and already trusted.
type SessionUser struct {
	ID    uuid.UUID
	Name  string
	Email string
}

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (a *SessionAuth) IssueToken(userID uuid.UUID, name, email string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *SessionAuth) ParseToken(tokenStr string) (*SessionUser, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &SessionUser{
		ID:    userID,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

func (a *SessionAuth) TTL() time.Duration {
	return a.ttl
}

// SessionMiddleware rejects requests without a valid session cookie and
// stores the verified user in the gin context for handlers downstream.
func (a *SessionAuth) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		tokenStr, err := c.Cookie(SessionCookie)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		sessionUser, err := a.ParseToken(tokenStr)
		if err != nil {
			log.Info("rejected session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		c.Set(sessionUserKey, sessionUser)
		c.Next()
	}
}

// SessionUserFrom retrieves the user placed in the context by
// SessionMiddleware. The second return is false only when the
// middleware did not run on the route.
func SessionUserFrom(c *gin.Context) (*SessionUser, bool) {
	v, exists := c.Get(sessionUserKey)
	if !exists {
		return nil, false
	}
	su, ok := v.(*SessionUser)
	return su, ok
}

func (a *SessionAuth) SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(a.ttl.Seconds()), "/", "", false, true)
}

func (a *SessionAuth) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
