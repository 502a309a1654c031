package handlers

import (
	"errors"
	"net/http"

	"brewlink/internal/models"
	"brewlink/internal/repository"

	"github.com/gin-gonic/gin"
)

// @Summary      List profile names
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, profiles"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/profiles [get]
// @Security     BearerAuth
func (h *Handler) listProfiles(c *gin.Context) {
	names, err := h.services.Profiles.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to list profiles", "profiles_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(names), "profiles": names})
}

// @Summary      Get a profile's target curve
// @Tags         profiles
// @Produce      json
// @Param        name  path  string  true  "Profile name"
// @Success      200  {object}  map[string]interface{}  "name, curve"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/profiles/{name} [get]
// @Security     BearerAuth
func (h *Handler) getProfile(c *gin.Context) {
	name := c.Param("name")
	curve, err := h.services.Profiles.Get(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load profile", "profile_get_failed", err, "name", name)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "curve": curve})
}

// @Summary      Save a profile's target curve
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        name  path  string            true  "Profile name"
// @Param        body  body  []models.TargetCurvePoint  true  "Target curve anchors"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/profiles/{name} [put]
// @Security     BearerAuth
func (h *Handler) saveProfile(c *gin.Context) {
	name := c.Param("name")
	var curve []models.TargetCurvePoint
	if err := c.ShouldBindJSON(&curve); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if len(curve) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "curve must have at least one anchor"})
		return
	}
	if err := h.services.Profiles.Save(c.Request.Context(), name, curve); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to save profile", "profile_save_failed", err, "name", name)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved", "name": name})
}
