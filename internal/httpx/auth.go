package httpx

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/user"
)

const accountKey = "account"

// SessionResolver turns a bearer token into the account it belongs to.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*user.User, error)
}

// RequireAccount rejects requests without a valid bearer token and stores
// the resolved account for Account.
func RequireAccount(r SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			Fail(c, apperr.New(apperr.Unauthorized, "not authenticated"))
			return
		}
		u, err := r.ResolveSession(c.Request.Context(), token)
		if err != nil {
			Fail(c, err)
			return
		}
		c.Set(accountKey, u)
		c.Next()
	}
}

// Account returns the account stored by RequireAccount.
func Account(c *gin.Context) *user.User {
	u, _ := c.MustGet(accountKey).(*user.User)
	return u
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
