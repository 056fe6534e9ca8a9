package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	kerrors "github.com/kochabx/authsvc/errors"
	"github.com/kochabx/authsvc/log"
	"github.com/kochabx/authsvc/transport/http"
)

// RecoveryConfig panic 恢复配置
type RecoveryConfig struct {
	Logger     *log.Logger
	StackTrace bool
}

// Recovery 将 panic 转为 500 响应，客户端断开时只记录不响应
func Recovery(cfg RecoveryConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}

	return func(c *gin.Context) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}

			err, ok := v.(error)
			if !ok {
				err = fmt.Errorf("%v", v)
			}
			e := cfg.Logger.Error().Err(err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString(RequestIDKey))

			if clientGone(err) {
				e.Msg("client connection closed")
				_ = c.Error(err)
				c.Abort()
				return
			}
			if cfg.StackTrace {
				e = e.Bytes("stack", debug.Stack())
			}
			e.Msg("panic recovered")
			http.Abort(c, kerrors.Internal("internal server error"))
		}()
		c.Next()
	}
}

func clientGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
