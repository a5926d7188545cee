package middlewares

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/pkg/errors"
)

// CurrentUserContextKey is the key to retrieve the current_user from echo.Context.
const CurrentUserContextKey = "current_user"

// Authentication returns a bearer-token auth middleware.
// It validates the JWT, resolves current_user and stores it into echo.Context.
func Authentication(db database.Client, signingKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			raw := token(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return unauthorized(c)
			}

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.Errorf("unexpected signing method %s", t.Method.Alg())
				}
				return signingKey, nil
			})
			if err != nil || !tok.Valid {
				return unauthorized(c)
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c)
			}
			id, ok := claims["user_uuid"].(string)
			if !ok {
				return unauthorized(c)
			}

			user, err := db.FindUser(id)
			if err != nil {
				if db.IsNotFound(err) {
					return unauthorized(c)
				}
				return errors.Wrap(err, "could not get access to database")
			}

			// Tokens generated before the last password change are revoked.
			iat, ok := claims["iat"].(float64)
			if !ok || int64(iat) < user.PasswordUpdatedAt {
				return unauthorized(c)
			}

			c.Set(CurrentUserContextKey, user)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error": echo.Map{
			"tag":     "invalid-auth",
			"message": "Invalid login credentials.",
		},
	})
}

func token(authorization string) string {
	parts := strings.Split(authorization, " ")
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
