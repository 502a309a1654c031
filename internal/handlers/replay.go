package handlers

import (
	"errors"
	"net/http"

	"brewlink/internal/repository"
	"brewlink/internal/service"

	"github.com/gin-gonic/gin"
)

// replayError maps service-level replay failures onto HTTP codes.
func (h *Handler) replayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLiveSessionActive), errors.Is(err, service.ErrReplayRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoReplayData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrShotNotFound), errors.Is(err, repository.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to start replay", "replay_start_failed", err)
	}
}

// @Summary      Replay an archived shot
// @Description  Plays the shot's recorded samples back through the live pipeline. Rejected while a live brew or another replay runs.
// @Tags         replay
// @Produce      json
// @Param        id  path  string  true  "Shot ID"
// @Success      200  {object}  service.ReplayStatus
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/v1/replay/shot/{id} [post]
// @Security     BearerAuth
func (h *Handler) startShotReplay(c *gin.Context) {
	if err := h.services.Replay.StartShot(c.Request.Context(), c.Param("id")); err != nil {
		h.replayError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.services.Replay.Status())
}

// @Summary      Simulate a brew from a profile
// @Description  Generates a synthetic shot that follows the profile's target curve.
// @Tags         replay
// @Produce      json
// @Param        name  path  string  true  "Profile name"
// @Success      200  {object}  service.ReplayStatus
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/v1/replay/profile/{name} [post]
// @Security     BearerAuth
func (h *Handler) startProfileReplay(c *gin.Context) {
	if err := h.services.Replay.StartProfile(c.Request.Context(), c.Param("name")); err != nil {
		h.replayError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.services.Replay.Status())
}

// @Summary      Stop a running replay
// @Tags         replay
// @Produce      json
// @Success      200  {object}  service.ReplayStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/replay/stop [post]
// @Security     BearerAuth
func (h *Handler) stopReplay(c *gin.Context) {
	h.services.Replay.Stop(c.Request.Context())
	c.JSON(http.StatusOK, h.services.Replay.Status())
}

// @Summary      Replay status
// @Tags         replay
// @Produce      json
// @Success      200  {object}  service.ReplayStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/replay/status [get]
// @Security     BearerAuth
func (h *Handler) replayStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Replay.Status())
}
