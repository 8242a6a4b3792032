package apps

import (
	"appforge/internal/api/web"
)

// Get GET /api/apps/:owner/:repo，应用不存在时返回 404
func (h *handler) Get(c web.Context) error {
	owner, repo := c.Param("owner"), c.Param("repo")
	if owner == "" || repo == "" {
		return c.BadRequest("owner and repo are required")
	}

	detail := h.catalog.GetAppDetail(c.Request().Context(), owner, repo)
	if detail == nil {
		return c.NotFound("app not found")
	}
	return c.OK(detail)
}
