package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RehanAnsari17/Qloooooooo/internal/auth"
	"github.com/RehanAnsari17/Qloooooooo/internal/common"
	"github.com/RehanAnsari17/Qloooooooo/internal/geo"
	"github.com/RehanAnsari17/Qloooooooo/internal/httpapi/middleware"
	"github.com/RehanAnsari17/Qloooooooo/internal/models"
)

const (
	minAge = 13
	maxAge = 120

	tokenTTL = 24 * time.Hour
)

type registerReq struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Age      int      `json:"age"`
	Location string   `json:"location"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

// resolveLocation validates the submitted location: coordinates go through
// reverse lookup, free text through forward lookup. With no geocoder wired,
// the text is accepted as-is.
func (h *Handler) resolveLocation(c *gin.Context, text string, lat, lon *float64) (string, bool) {
	if lat != nil && lon != nil {
		if h.Geo == nil {
			common.Fail(c, http.StatusBadRequest, 10013, "coordinate lookup not available")
			return "", false
		}
		place, err := h.Geo.Reverse(c.Request.Context(), *lat, *lon)
		if err != nil {
			if errors.Is(err, geo.ErrNotFound) {
				common.Fail(c, http.StatusBadRequest, 10011, "could not determine a place for these coordinates")
				return "", false
			}
			common.Fail(c, http.StatusBadGateway, 50201, "location lookup failed, please enter your location manually")
			return "", false
		}
		return place.DisplayName, true
	}

	if text == "" {
		common.Fail(c, http.StatusBadRequest, 10012, "location is required")
		return "", false
	}
	if h.Geo == nil {
		return text, true
	}
	place, err := h.Geo.Search(c.Request.Context(), text)
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			common.Fail(c, http.StatusBadRequest, 10011, "location not found, please check the spelling")
			return "", false
		}
		common.Fail(c, http.StatusBadGateway, 50201, "location lookup failed, please try again")
		return "", false
	}
	return place.DisplayName, true
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "email, password and name are required")
		return
	}
	if req.Age < minAge || req.Age > maxAge {
		common.Fail(c, http.StatusBadRequest, 10004, "age must be between 13 and 120")
		return
	}

	location, ok := h.resolveLocation(c, req.Location, req.Lat, req.Lon)
	if !ok {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	user := models.User{
		Email:           req.Email,
		PasswordHash:    hash,
		Name:            req.Name,
		Age:             req.Age,
		DefaultLocation: location,
		CurrentLocation: location,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10003, "failed to create account (email may already exist)")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}

	common.OK(c, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"age":      user.Age,
		"location": user.CurrentLocation,
		"token":    token,
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "email and password are required")
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// same message whether the account exists or not
		common.Fail(c, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}

	common.OK(c, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"age":      user.Age,
		"location": user.CurrentLocation,
		"token":    token,
	})
}

// Logout denylists the presented token until its natural expiry. Idempotent;
// without Redis it still succeeds (the client drops the token either way).
func (h *Handler) Logout(c *gin.Context) {
	tokenVal, _ := c.Get(middleware.TokenKey)
	token, _ := tokenVal.(string)

	if h.Redis != nil && token != "" {
		if exp, err := auth.TokenExpiry(token); err == nil {
			if err := h.Redis.DenyToken(c.Request.Context(), token, time.Until(exp)); err != nil {
				log.Printf("logout: denylist token: %v", err)
			}
		}
	}
	common.OK(c, gin.H{"message": "logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, user)
}

type updateLocationReq struct {
	Location string   `json:"location"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req updateLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	location, ok := h.resolveLocation(c, req.Location, req.Lat, req.Lon)
	if !ok {
		return
	}

	if err := h.DB.Model(&models.User{}).
		Where("id = ?", uid).
		Update("current_location", location).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"location": location})
}
