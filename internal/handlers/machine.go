package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get machine state
// @Description  Canonical snapshot of the espresso machine; served from the replay engine while a playback runs.
// @Tags         machine
// @Produce      json
// @Success      200  {object}  models.MachineState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/machine/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.GetState())
}

// @Summary      Dispatch machine command
// @Description  Fires one zero-argument command (start, stop, tare, flush, steam, hotwater). Failures come back in the result body, not as HTTP errors.
// @Tags         machine
// @Produce      json
// @Param        name  path  string  true  "Command name"  Enums(start,stop,tare,flush,steam,hotwater)
// @Success      200  {object}  models.CommandResult
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/machine/command/{name} [post]
// @Security     BearerAuth
func (h *Handler) dispatchCommand(c *gin.Context) {
	res := h.services.Commands.Dispatch(c.Request.Context(), c.Param("name"))
	c.JSON(http.StatusOK, res)
}

// @Summary      Get live chart
// @Description  Downsampled session points, stage ranges, summary and goal overlay for the current (or last) brew.
// @Tags         chart
// @Produce      json
// @Success      200  {object}  service.ChartData
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/chart/live [get]
// @Security     BearerAuth
func (h *Handler) getChart(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.GetChart(c.Request.Context()))
}
