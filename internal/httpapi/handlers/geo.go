package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RehanAnsari17/Qloooooooo/internal/common"
	"github.com/RehanAnsari17/Qloooooooo/internal/geo"
)

// GeocodeSearch validates free-text location input during registration.
func (h *Handler) GeocodeSearch(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "q required")
		return
	}
	if h.Geo == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "geocoding not configured")
		return
	}

	place, err := h.Geo.Search(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "location not found")
			return
		}
		common.Fail(c, http.StatusBadGateway, 50201, "geocoding service unavailable")
		return
	}
	common.OK(c, place)
}

// GeocodeReverse resolves device coordinates to a display address.
func (h *Handler) GeocodeReverse(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "lat and lon required")
		return
	}
	if h.Geo == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "geocoding not configured")
		return
	}

	place, err := h.Geo.Reverse(c.Request.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "no place at these coordinates")
			return
		}
		common.Fail(c, http.StatusBadGateway, 50201, "geocoding service unavailable")
		return
	}
	common.OK(c, place)
}

func (h *Handler) Health(c *gin.Context) {
	common.OK(c, gin.H{"status": "healthy"})
}
