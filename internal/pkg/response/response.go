package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"

	"github.com/nextmile/chatbot/internal/pkg/errcode"
	appErr "github.com/nextmile/chatbot/internal/pkg/errors"
)

type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

func AsCodeErr(code uint32, msg string) error {
	return codeErr{code: code, msg: msg}
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, AsCodeErr(uint32(code), message))
}

// Fail maps sentinel errors onto wire error codes.
func Fail(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case appErr.IsNotFound(err):
		Error(c, errcode.ErrNotFound, "not found")
	case appErr.IsGeneration(err):
		Error(c, errcode.ErrAIUnavailable, "generation backend unavailable")
	default:
		Error(c, errcode.ErrInternal, "internal error")
	}
}
