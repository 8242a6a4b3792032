package health

import (
	"appforge/internal/api/web"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetResponse 健康检查响应
type GetResponse struct {
	Status string `json:"status"`
}

func Configure(e *echo.Echo, l *zap.Logger) {
	e.GET("/healthz", web.Wrap(Get, l))
}

// Get GET /healthz
func Get(c web.Context) error {
	return c.OK(GetResponse{Status: "ok"})
}
