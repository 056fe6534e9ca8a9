package handler

import (
	"github.com/gin-gonic/gin"

	middleware "github.com/kochabx/authsvc/middleware/http"
	"github.com/kochabx/authsvc/transport/http"
)

// Profile GET /profile，需要认证
func (h *Handler) Profile(c *gin.Context) {
	subjectID, ok := middleware.GetClaims[int64](c.Request.Context())
	if !ok {
		http.Fail(c, errUnauthorized)
		return
	}

	profile, err := h.users.FindByID(c.Request.Context(), subjectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	http.OK(c, profile)
}
