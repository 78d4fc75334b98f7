package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duncan19760605/GenAI-Kid/internal/providers"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
	"github.com/duncan19760605/GenAI-Kid/internal/service"
	"github.com/duncan19760605/GenAI-Kid/internal/ws"
)

func NewRouter(
	authService *service.AuthService,
	childService *service.ChildService,
	providerService *service.ProviderService,
	usageService *service.UsageService,
	conversations *repository.ConversationRepository,
	resolver *providers.Resolver,
	voice *ws.Handler,
	logger *slog.Logger,
) http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := &API{
		auth:          authService,
		children:      childService,
		providers:     providerService,
		usage:         usageService,
		conversations: conversations,
		resolver:      resolver,
		logger:        logger,
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	api.registerRoutes(v1)

	r.GET("/ws/voice/:child_id", voice.Handle)

	return r
}
