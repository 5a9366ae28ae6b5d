package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	// JWT settings
	TokenIssuer = "cocoa-fruit-playground"
	TokenExpiry = 24 * time.Hour

	sessionContextKey = "session"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims binds a bearer token to one session id (the JWT subject).
type SessionClaims struct {
	jwt.RegisteredClaims
}

type TokenSigner struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenSigner(secret string, expiry time.Duration) *TokenSigner {
	if expiry <= 0 {
		expiry = TokenExpiry
	}
	return &TokenSigner{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Issue signs a token for sessionID.
func (s *TokenSigner) Issue(sessionID string) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse returns the session id carried by tokenString.
func (s *TokenSigner) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// bearerToken reads the token from the Authorization header, or from the
// token query parameter for clients that cannot set headers (browsers
// opening a websocket).
func bearerToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader || token == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}
		return token, nil
	}
	if token := c.QueryParam("token"); token != "" {
		return token, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
}
