package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang-ratchet-tracker/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const userIDContextKey = "user_id"

// JWTAuth validates the bearer token and stores the user ID in the echo
// context for downstream handlers.
func JWTAuth(secret string, log *logger.Logger) echo.MiddlewareFunc {
	secretBytes := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing bearer token"})
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secretBytes, nil
			})
			if err != nil || !token.Valid {
				log.Debug("Rejected token", logger.ErrorField(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired token"})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token claims"})
			}
			sub, err := claims.GetSubject()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token subject"})
			}
			userID, err := strconv.ParseUint(sub, 10, 32)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token subject"})
			}

			c.Set(userIDContextKey, uint(userID))
			return next(c)
		}
	}
}

func userIDFromContext(c echo.Context) uint {
	id, _ := c.Get(userIDContextKey).(uint)
	return id
}
