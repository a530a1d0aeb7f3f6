package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharvsharma432199/phone-api/internal/services"
)

// StatusResponse reports store and usage figures.
type StatusResponse struct {
	// "active", or "degraded" while the record store is unavailable.
	Status  string           `json:"status" example:"active"`
	Message string           `json:"message" example:"API is running successfully"`
	Data    *services.Status `json:"data"`
}

// Status godoc
// @ID          getStatus
// @Summary     Service status
// @Description Record count, key totals and usage statistics. A missing record store is reported as degraded, not as an error.
// @Tags        Status
// @Produce     json
// @Success     200  {object}  handlers.StatusResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /api/status [get]
func (h *Handlers) Status(c *gin.Context) {
	st, err := h.status.Snapshot(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "error getting status")
		return
	}

	resp := StatusResponse{Status: "active", Message: "API is running successfully", Data: st}
	if !st.RecordStoreAvailable {
		resp.Status = "degraded"
		resp.Message = "phone database is unavailable"
	}
	ok(c, http.StatusOK, resp)
}

// Health godoc
// @ID       health
// @Summary  Liveness probe
// @Tags     Status
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
