package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"

	"github.com/qrdine/qrdine-server/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's identity claims into the request
// context.  The provided secret must match the one used when issuing
// tokens.  Handlers behind this middleware read `c.Get("user_id")`,
// `c.Get("role")`, `c.Get("phone")` and `c.Get("email")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; reject any other
			// signing method outright.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set("user_id", utils.ClaimUserID(claims))
			c.Set("role", utils.ParseRole(claims))
			c.Set("phone", utils.ClaimString(claims, "phone"))
			c.Set("email", utils.ClaimString(claims, "email"))
			c.Set("authenticated", true)
			return next(c)
		}
	}
}

// OptionalJWTAuth is like JWTAuth but lets requests without a token
// through as anonymous guests.  Used on endpoints that serve both the
// anonymous table flow and authenticated actors, such as order
// placement.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	authed := JWTAuth(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withToken := authed(next)
		return func(c echo.Context) error {
			if strings.HasPrefix(c.Request().Header.Get("Authorization"), "Bearer ") {
				return withToken(c)
			}
			return next(c)
		}
	}
}
