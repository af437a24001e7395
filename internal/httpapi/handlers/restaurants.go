package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RehanAnsari17/Qloooooooo/internal/common"
	"github.com/RehanAnsari17/Qloooooooo/internal/feedback"
)

type preferenceReq struct {
	SessionID      string  `json:"session_id" binding:"required"`
	RestaurantID   string  `json:"restaurant_id" binding:"required"`
	RestaurantName string  `json:"restaurant_name"`
	Preference     string  `json:"preference" binding:"required"`
	Comment        *string `json:"comment"`
}

// SaveRestaurantPreference upserts a like/dislike for one restaurant card.
// Comment is optional ("skip" sends none) and capped at 500 characters.
func (h *Handler) SaveRestaurantPreference(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req preferenceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.ChatSvc.ValidateSessionOwner(c.Request.Context(), uid, req.SessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "chat session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	pref, err := h.FeedbackSvc.Submit(c.Request.Context(), feedback.Submission{
		UserID:         uid,
		SessionID:      req.SessionID,
		RestaurantID:   req.RestaurantID,
		RestaurantName: req.RestaurantName,
		Preference:     req.Preference,
		Comment:        req.Comment,
	})
	if err != nil {
		if errors.Is(err, feedback.ErrBadPreference) {
			common.Fail(c, http.StatusBadRequest, 10006, err.Error())
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50006, "failed to save preference")
		return
	}

	common.OK(c, gin.H{
		"message":    "preference saved successfully",
		"preference": pref,
	})
}

// ListFeedback returns the caller's stored preferences, optionally scoped to
// one session.
func (h *Handler) ListFeedback(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var (
		prefs []feedback.Preference
		err   error
	)
	if sessionID := c.Query("session_id"); sessionID != "" {
		prefs, err = h.FeedbackSvc.ListBySession(c.Request.Context(), uid, sessionID)
	} else {
		prefs, err = h.FeedbackSvc.ListByUser(c.Request.Context(), uid)
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50007, "failed to load feedback")
		return
	}
	common.OK(c, gin.H{"feedback": prefs})
}

// RestaurantDetails proxies the insights details lookup through a Redis
// cache. Failures come back as an error payload, not a 5xx: the client falls
// back to the basic fields it already has.
func (h *Handler) RestaurantDetails(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	if restaurantID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "restaurant_id required")
		return
	}

	ctx := c.Request.Context()

	if h.Redis != nil {
		if cached, hit, err := h.Redis.GetRestaurantDetails(ctx, restaurantID); err != nil {
			log.Printf("details: cache read: %v", err)
		} else if hit {
			common.OK(c, gin.H{"details": json.RawMessage(cached)})
			return
		}
	}

	details, err := h.Recs.Details(ctx, restaurantID)
	if err != nil {
		log.Printf("details: fetch restaurant=%s err=%v", restaurantID, err)
		common.OK(c, gin.H{"error": "could not fetch restaurant details"})
		return
	}

	if h.Redis != nil {
		if err := h.Redis.SetRestaurantDetails(ctx, restaurantID, string(details)); err != nil {
			log.Printf("details: cache write: %v", err)
		}
	}
	common.OK(c, gin.H{"details": details})
}
