package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/RehanAnsari17/Qloooooooo/internal/bot"
	"github.com/RehanAnsari17/Qloooooooo/internal/chat"
	"github.com/RehanAnsari17/Qloooooooo/internal/config"
	"github.com/RehanAnsari17/Qloooooooo/internal/feedback"
	"github.com/RehanAnsari17/Qloooooooo/internal/geo"
	"github.com/RehanAnsari17/Qloooooooo/internal/recs"
	"github.com/RehanAnsari17/Qloooooooo/internal/store/redisstore"
)

// CacheStore is the redis-backed surface the handlers touch: the logout
// denylist and the restaurant-details cache. nil means run without redis.
type CacheStore interface {
	DenyToken(ctx context.Context, token string, ttl time.Duration) error
	GetRestaurantDetails(ctx context.Context, restaurantID string) (string, bool, error)
	SetRestaurantDetails(ctx context.Context, restaurantID, payload string) error
}

type Handler struct {
	DB          *gorm.DB
	Cfg         config.Config
	Redis       CacheStore
	ChatSvc     *chat.Service
	FeedbackSvc *feedback.Service
	Recs        *recs.Client
	Geo         *geo.Client
}

// NewHandler wires the domain services. publisher may be nil, which disables
// the write-behind transcript archive but keeps every chat operation working.
func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, publisher chat.ArchivePublisher) *Handler {
	repo := chat.NewRepo(db)

	reg := bot.NewRegistry()
	reg.Register("scripted", func(ctx context.Context, model string) (bot.Provider, error) {
		_, _ = ctx, model
		return bot.NewScriptedProvider(), nil
	})
	reg.Register("gemini", func(ctx context.Context, model string) (bot.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.GeminiModel
		}
		return bot.NewGeminiProvider(ctx, cfg.GeminiAPIKey, m)
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (bot.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return bot.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	provider, err := reg.Get(context.Background(), cfg.BotProvider, "")
	if err != nil {
		panic(fmt.Sprintf("bot provider %q: %v", cfg.BotProvider, err))
	}

	recsClient := recs.NewClient(cfg.InsightsBaseURL, cfg.InsightsAPIKey)

	var archiver chat.Archiver
	if publisher != nil {
		archiver = chat.NewArchiveScheduler(repo, publisher, cfg.ArchiveDebounce)
	}

	chatSvc := chat.NewService(repo, provider, recsClient, archiver, cfg.ChatContextWindowSize)
	feedbackSvc := feedback.NewService(feedback.NewRepo(db), feedback.NewLocalLog(cfg.FeedbackLogPath))

	// keep the interface nil when redis is absent, so `!= nil` checks work
	var cache CacheStore
	if rds != nil {
		cache = rds
	}

	return &Handler{
		DB:          db,
		Cfg:         cfg,
		Redis:       cache,
		ChatSvc:     chatSvc,
		FeedbackSvc: feedbackSvc,
		Recs:        recsClient,
		Geo:         geo.NewClient(cfg.GeocodeBaseURL),
	}
}
