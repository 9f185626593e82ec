package runtime

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/opticqa/config"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the shared admin secret.
const AdminKeyHeader = "x-admin-key"

const unauthorizedMessage = "Unauthorized: Invalid Admin Key"

// HashAdminKey returns a bcrypt hash suitable for security.admin_key_hash.
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAdminKey compares a presented key against the configured secret. A
// configured bcrypt hash wins over the plain key. With nothing configured every
// key is rejected.
func CheckAdminKey(sec config.SecurityConfig, presented string) bool {
	if presented == "" || !sec.Configured() {
		return false
	}
	if hash := strings.TrimSpace(sec.AdminKeyHash); hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(sec.AdminKey), []byte(presented)) == 1
}

// EchoAdminMiddleware rejects requests without a valid x-admin-key header.
func EchoAdminMiddleware(sec config.SecurityConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CheckAdminKey(sec, c.Request().Header.Get(AdminKeyHeader)) {
				return echo.NewHTTPError(http.StatusForbidden, unauthorizedMessage)
			}
			return next(c)
		}
	}
}
