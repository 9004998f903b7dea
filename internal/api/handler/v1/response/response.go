package response

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	HTTPStatusCode int    `json:"-"`
	Err            error  `json:"-"`
	StatusText     string `json:"status"`
	Message        string `json:"message"`
	RequestID      string `json:"request_id,omitempty"`
}

func (e *Err) Error() string {
	return e.Message
}

func RenderErr(ctx *gin.Context, e *Err) {
	e.RequestID = requestid.Get(ctx)

	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.String("request_id", e.RequestID),
			zap.Error(e.Err))
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(status int, err error, message string) *Err {
	return &Err{
		HTTPStatusCode: status,
		Err:            err,
		StatusText:     http.StatusText(status),
		Message:        message,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err, err.Error())
}

func ErrNotFound(err error) *Err {
	return newErr(http.StatusNotFound, err, err.Error())
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err, err.Error())
}

func ErrServiceUnavailable(err error) *Err {
	return newErr(http.StatusServiceUnavailable, err, err.Error())
}

func ErrInternalServerError(err error) *Err {
	return newErr(http.StatusInternalServerError, err, "internal server error")
}
