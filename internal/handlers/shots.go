package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"brewlink/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	defaultShotLimit = 50
	maxShotLimit     = 500
	maxImportBytes   = 4 << 20 // 4 MB
)

// @Summary      List archived shots
// @Tags         shots
// @Produce      json
// @Param        limit  query  int  false  "Max shots to return (newest first)"  default(50)
// @Success      200  {object}  map[string]interface{}  "count, shots"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/shots [get]
// @Security     BearerAuth
func (h *Handler) listShots(c *gin.Context) {
	limit := defaultShotLimit
	if qs := c.Query("limit"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 && v <= maxShotLimit {
			limit = v
		}
	}
	shots, err := h.services.Shots.List(c.Request.Context(), limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list shots", "shots_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(shots), "shots": shots})
}

// @Summary      Get archived shot
// @Tags         shots
// @Produce      json
// @Param        id  path  string  true  "Shot ID"
// @Success      200  {object}  models.ShotRecord
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/shots/{id} [get]
// @Security     BearerAuth
func (h *Handler) getShot(c *gin.Context) {
	rec, err := h.services.Shots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrShotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "shot not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load shot", "shot_get_failed", err, "id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Import a shot recording
// @Description  Body is a JSON array of samples with relative timestamps. Timestamps are re-based so the first sample sits at zero.
// @Tags         shots
// @Accept       json
// @Produce      json
// @Param        profile  query  string  false  "Profile name to attach"
// @Success      200  {object}  models.ShotRecord
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/shots/import [post]
// @Security     BearerAuth
func (h *Handler) importShot(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	rec, err := h.services.Shots.Import(c.Request.Context(), raw, c.Query("profile"))
	if err != nil {
		if h.log != nil {
			h.log.Infow("shot_import_rejected", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
