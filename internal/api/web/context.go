package web

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context 在 echo.Context 上附带请求级 logger
type Context struct {
	echo.Context
	L *zap.Logger
}

// HandlerFunc 使用自定义 Context 的处理函数
type HandlerFunc func(ctx Context) error

// Wrap 把 HandlerFunc 适配成 echo.HandlerFunc
func Wrap(h HandlerFunc, l *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)

		ctx := Context{
			Context: c,
			L:       l.With(zap.String("request_id", rid)),
		}

		return h(ctx)
	}
}

// Error 返回错误响应
func (c Context) Error(status int, message string) error {
	return c.JSON(status, map[string]string{
		"error": message,
	})
}

// BadRequest 400
func (c Context) BadRequest(message string) error {
	return c.Error(http.StatusBadRequest, message)
}

// NotFound 404
func (c Context) NotFound(message string) error {
	return c.Error(http.StatusNotFound, message)
}

// OK 200 并返回数据
func (c Context) OK(data any) error {
	return c.JSON(http.StatusOK, data)
}

// QueryInt 解析可选的正整数查询参数。
// 缺省时返回 def；不是正整数时第二个返回值为 false。
func (c Context) QueryInt(name string, def int) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
