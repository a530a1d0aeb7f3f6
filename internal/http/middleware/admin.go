package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CredentialValidator checks an admin username/password pair.
type CredentialValidator interface {
	Validate(ctx context.Context, username, password string) (bool, error)
}

// AdminBasicAuth guards a group with HTTP Basic credentials checked against
// v. Failures answer 401 with a challenge and never say whether the username
// exists. On success the username is stored for AdminFrom and the access log.
func AdminBasicAuth(v CredentialValidator, realm string) gin.HandlerFunc {
	if realm == "" {
		realm = "phone-api admin"
	}
	challenge := `Basic realm="` + realm + `", charset="UTF-8"`

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || user == "" {
			c.Header("WWW-Authenticate", challenge)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "admin authentication required")
			return
		}

		valid, err := v.Validate(c.Request.Context(), user, pass)
		if err != nil {
			LoggerFrom(c).Error().Err(err).Msg("admin credential check failed")
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		if !valid {
			c.Header("WWW-Authenticate", challenge)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "admin authentication failed")
			return
		}

		c.Set(adminKey, user)
		c.Next()
	}
}

// AdminFrom returns the authenticated admin username, or "".
func AdminFrom(c *gin.Context) string {
	v, _ := c.Get(adminKey)
	return asString(v)
}
