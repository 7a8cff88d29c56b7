package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/logger"
)

// ErrorBody is the JSON shape of every failure.
type ErrorBody struct {
	Error     string `json:"error"`
	ProductID string `json:"product_id,omitempty"`
}

// StatusOf maps a failure kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidRequest, apperr.InsufficientStock:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with the status of its kind.
func Fail(c *gin.Context, err error) {
	FailStatus(c, StatusOf(apperr.KindOf(err)), err)
}

// FailStatus writes err with an explicit status. Internal failures are logged
// and replaced by a generic message.
func FailStatus(c *gin.Context, status int, err error) {
	body := ErrorBody{Error: "internal server error"}
	e, ok := apperr.As(err)
	if ok && e.Kind != apperr.Internal {
		body.Error = e.Msg
		body.ProductID = e.ProductID
	} else {
		logger.WithCtx(c.Request.Context()).Error("request failed", "path", c.FullPath(), "err", err)
	}
	if e != nil && e.Kind == apperr.Unavailable {
		logger.WithCtx(c.Request.Context()).Warn("storage unavailable", "path", c.FullPath(), "err", err)
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// BadRequest reports a malformed body or query.
func BadRequest(c *gin.Context, msg string) {
	Fail(c, apperr.New(apperr.InvalidRequest, msg))
}
