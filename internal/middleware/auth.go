package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

// AdminAuth accepts "Authorization: Bearer <token>" where the token is the
// base64 encoding of password. An empty password rejects every request.
func AdminAuth(password string) echo.MiddlewareFunc {
	return echoMw.KeyAuthWithConfig(echoMw.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return validAdminToken(key, password), nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized").SetInternal(err)
		},
	})
}

func validAdminToken(token, password string) bool {
	if password == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(decoded, []byte(password)) == 1
}
