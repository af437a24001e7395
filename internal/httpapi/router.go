package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RehanAnsari17/Qloooooooo/internal/chat"
	"github.com/RehanAnsari17/Qloooooooo/internal/common"
	"github.com/RehanAnsari17/Qloooooooo/internal/config"
	"github.com/RehanAnsari17/Qloooooooo/internal/httpapi/handlers"
	"github.com/RehanAnsari17/Qloooooooo/internal/httpapi/middleware"
	"github.com/RehanAnsari17/Qloooooooo/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, publisher chat.ArchivePublisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, rds, publisher)

	api := r.Group("/api")

	api.GET("/health", h.Health)

	// auth gate
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	// location acquisition
	api.GET("/geocode/search", h.GeocodeSearch)
	api.GET("/geocode/reverse", h.GeocodeReverse)

	var denylist middleware.TokenDenylist
	if rds != nil {
		denylist = rds
	}

	authed := api.Group("/")
	authed.Use(middleware.AuthRequired(cfg.JWTSecret, denylist))

	authed.POST("/auth/logout", h.Logout)
	authed.GET("/me", h.Me)
	authed.PUT("/me/location", h.UpdateLocation)

	// chat
	authed.POST("/register-user", h.RegisterProfile)
	authed.POST("/chat", h.SendChatMessage)
	authed.POST("/end-chat/:session_id", h.EndChat)
	authed.GET("/chat-session/:session_id", h.GetChatSession)
	authed.GET("/chat-history", h.ChatHistory)

	// restaurant cards
	authed.POST("/restaurant-preference", h.SaveRestaurantPreference)
	authed.GET("/restaurant-details/:restaurant_id", h.RestaurantDetails)
	authed.GET("/feedback", h.ListFeedback)

	return r
}
