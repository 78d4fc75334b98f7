package httpapi

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
	"github.com/duncan19760605/GenAI-Kid/internal/providers"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
	"github.com/duncan19760605/GenAI-Kid/internal/service"
)

type API struct {
	auth          *service.AuthService
	children      *service.ChildService
	providers     *service.ProviderService
	usage         *service.UsageService
	conversations *repository.ConversationRepository
	resolver      *providers.Resolver
	logger        *slog.Logger
}

func (api *API) registerRoutes(r *gin.RouterGroup) {
	parent := r.Group("/parent")
	parent.POST("/auth/register", api.register)
	parent.POST("/auth/login", api.login)
	parent.POST("/auth/logout", api.logout)
	parent.GET("/auth/me", api.me)

	parent.POST("/children", api.createChild)
	parent.GET("/children", api.listChildren)
	parent.PUT("/children/:id", api.updateChild)
	parent.DELETE("/children/:id", api.deleteChild)

	parent.GET("/conversations", api.listConversations)
	parent.GET("/conversations/:id", api.getConversation)

	parent.GET("/providers", api.listProviders)
	parent.POST("/providers", api.upsertProvider)
	parent.DELETE("/providers/:modality/:vendor", api.deleteProvider)

	parent.GET("/usage/daily", api.dailyUsage)
	parent.GET("/usage/summary", api.usageSummary)

	kid := r.Group("/kid")
	kid.POST("/auth/login", api.kidLogin)
	kid.GET("/character/:child_id", api.getCharacter)
	kid.POST("/sticker", api.createSticker)
}

// createSticker generates a reward image for the child. The session token is
// parent-bound, so provider credentials and billing resolve per parent.
func (api *API) createSticker(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	var payload struct {
		Prompt string `json:"prompt" binding:"required"`
		Style  string `json:"style"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "prompt is required")
		return
	}
	image, err := api.resolver.Image(c.Request.Context(), user.ID)
	if err != nil {
		api.handleError(c, err)
		return
	}
	result, err := image.Generate(c.Request.Context(), payload.Prompt, payload.Style)
	if err != nil {
		api.handleError(c, err)
		return
	}
	if err := api.usage.Record(c.Request.Context(), user.ID, repository.UsageDelta{CostUSD: result.CostUSD}); err != nil {
		api.logger.Warn("usage record failed for sticker", slog.Any("error", err))
	}
	c.JSON(http.StatusOK, gin.H{
		"image_url": result.ImageURL,
		"cost_usd":  result.CostUSD,
	})
}

func (api *API) register(c *gin.Context) {
	var payload struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "email, password, and name are required")
		return
	}
	user, session, err := api.auth.Register(c.Request.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email_taken"})
			return
		}
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tokenResponse(user, session))
}

func (api *API) login(c *gin.Context) {
	var payload struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "email and password are required")
		return
	}
	user, session, err := api.auth.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(user, session))
}

func (api *API) logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		_ = api.auth.Logout(c.Request.Context(), token)
	}
	c.Status(http.StatusNoContent)
}

func (api *API) me(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (api *API) kidLogin(c *gin.Context) {
	var payload struct {
		LoginCode string `json:"login_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "login_code is required")
		return
	}
	child, session, err := api.auth.LoginChild(c.Request.Context(), payload.LoginCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLoginCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_code"})
			return
		}
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": session.Token,
		"token_type":   "bearer",
		"child_id":     child.ID,
		"child_name":   child.Name,
		"character_id": child.CharacterID,
	})
}

func (api *API) getCharacter(c *gin.Context) {
	profile, err := api.children.Character(c.Request.Context(), c.Param("child_id"))
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"character_id": profile.CharacterID,
		"name":         profile.Name,
		"personality":  profile.Personality,
		"emotions":     profile.Emotions,
	})
}

func (api *API) createChild(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	var payload struct {
		Name              string   `json:"name" binding:"required"`
		Age               int      `json:"age" binding:"required"`
		PrimaryLanguage   string   `json:"primary_language"`
		LearningLanguages []string `json:"learning_languages"`
		CharacterID       string   `json:"character_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "name and age are required")
		return
	}
	child, err := api.children.Create(c.Request.Context(), user.ID, service.ChildInput{
		Name:              payload.Name,
		Age:               payload.Age,
		PrimaryLanguage:   payload.PrimaryLanguage,
		LearningLanguages: payload.LearningLanguages,
		CharacterID:       payload.CharacterID,
	})
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toChildResponse(child))
}

func (api *API) listChildren(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	children, err := api.children.List(c.Request.Context(), user.ID)
	if err != nil {
		api.handleError(c, err)
		return
	}
	resp := make([]childResponse, 0, len(children))
	for _, child := range children {
		resp = append(resp, toChildResponse(child))
	}
	c.JSON(http.StatusOK, resp)
}

func (api *API) updateChild(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	var payload struct {
		Name              string   `json:"name"`
		Age               int      `json:"age"`
		PrimaryLanguage   string   `json:"primary_language"`
		LearningLanguages []string `json:"learning_languages"`
		CharacterID       string   `json:"character_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "invalid payload")
		return
	}
	child, err := api.children.Update(c.Request.Context(), c.Param("id"), user.ID, service.ChildInput{
		Name:              payload.Name,
		Age:               payload.Age,
		PrimaryLanguage:   payload.PrimaryLanguage,
		LearningLanguages: payload.LearningLanguages,
		CharacterID:       payload.CharacterID,
	})
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChildResponse(child))
}

func (api *API) deleteChild(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	if err := api.children.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		api.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (api *API) listConversations(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	limit := parseLimit(c.Query("limit"), 20, 100)

	var (
		conversations []domain.Conversation
		err           error
	)
	if childID := c.Query("child_id"); childID != "" {
		if _, err := api.children.Get(c.Request.Context(), childID, user.ID); err != nil {
			api.handleError(c, err)
			return
		}
		conversations, err = api.conversations.ListByChild(c.Request.Context(), childID, limit)
	} else {
		conversations, err = api.conversations.ListByUser(c.Request.Context(), user.ID, limit)
	}
	if err != nil {
		api.handleError(c, err)
		return
	}
	resp := make([]gin.H, 0, len(conversations))
	for _, conv := range conversations {
		resp = append(resp, toConversationResponse(conv))
	}
	c.JSON(http.StatusOK, resp)
}

func (api *API) getConversation(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	conv, err := api.conversations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.handleError(c, err)
		return
	}
	// Ownership runs through the child.
	if _, err := api.children.Get(c.Request.Context(), conv.ChildID, user.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	messages, err := api.conversations.ListMessages(c.Request.Context(), conv.ID)
	if err != nil {
		api.handleError(c, err)
		return
	}
	detail := toConversationResponse(conv)
	msgResp := make([]gin.H, 0, len(messages))
	for _, msg := range messages {
		msgResp = append(msgResp, gin.H{
			"id":                msg.ID,
			"role":              msg.Role,
			"content":           msg.Content,
			"language":          msg.Language,
			"emotion":           msg.Emotion,
			"audio_duration_ms": msg.AudioDurationMS,
			"tokens_used":       msg.TokensUsed,
			"cost_usd":          msg.CostUSD,
			"created_at":        msg.CreatedAt,
		})
	}
	detail["messages"] = msgResp
	c.JSON(http.StatusOK, detail)
}

func (api *API) listProviders(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	configs, err := api.providers.List(c.Request.Context(), user.ID)
	if err != nil {
		api.handleError(c, err)
		return
	}
	resp := make([]gin.H, 0, len(configs))
	for _, cfg := range configs {
		resp = append(resp, toProviderResponse(cfg))
	}
	c.JSON(http.StatusOK, resp)
}

func (api *API) upsertProvider(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	var payload struct {
		Modality  string `json:"modality" binding:"required"`
		Vendor    string `json:"vendor" binding:"required"`
		APIKey    string `json:"api_key"`
		ModelName string `json:"model_name"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.validationError(c, "modality and vendor are required")
		return
	}
	cfg, err := api.providers.Upsert(c.Request.Context(), user.ID, service.ProviderConfigInput{
		Modality:  domain.Modality(payload.Modality),
		Vendor:    payload.Vendor,
		APIKey:    payload.APIKey,
		ModelName: payload.ModelName,
		Active:    true,
	})
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProviderResponse(cfg))
}

func (api *API) deleteProvider(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	err := api.providers.Delete(c.Request.Context(), user.ID, domain.Modality(c.Param("modality")), c.Param("vendor"))
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (api *API) dailyUsage(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	days := parseLimit(c.Query("days"), 7, 90)
	entries, err := api.usage.Daily(c.Request.Context(), user.ID, days)
	if err != nil {
		api.handleError(c, err)
		return
	}
	resp := make([]gin.H, 0, len(entries))
	for _, usage := range entries {
		resp = append(resp, gin.H{
			"day":               usage.Day,
			"total_sessions":    usage.TotalSessions,
			"total_duration_ms": usage.TotalDurationMS,
			"total_tokens":      usage.TotalTokens,
			"total_cost_usd":    usage.TotalCostUSD,
			"llm_tokens":        usage.LLMTokens,
			"tts_chars":         usage.TTSChars,
			"stt_seconds":       usage.STTSeconds,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (api *API) usageSummary(c *gin.Context) {
	user, ok := api.requireUser(c)
	if !ok {
		return
	}
	summary, err := api.usage.Summary(c.Request.Context(), user.ID)
	if err != nil {
		api.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_sessions":    summary.TotalSessions,
		"total_duration_ms": summary.TotalDurationMS,
		"total_tokens":      summary.TotalTokens,
		"total_cost_usd":    summary.TotalCostUSD,
		"days_active":       summary.DaysActive,
	})
}

func (api *API) requireUser(c *gin.Context) (domain.User, bool) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return domain.User{}, false
	}
	user, err := api.auth.Verify(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session_expired"})
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		default:
			api.handleError(c, err)
		}
		return domain.User{}, false
	}
	return user, true
}

func (api *API) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, service.ErrInvalidAge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_age"})
	case errors.Is(err, providers.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider_not_configured"})
	default:
		api.logger.Error("request failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func (api *API) validationError(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": msg})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func tokenResponse(u domain.User, s domain.UserSession) gin.H {
	return gin.H{
		"access_token": s.Token,
		"token_type":   "bearer",
		"user":         toUserResponse(u),
	}
}

type childResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Age               int       `json:"age"`
	PrimaryLanguage   string    `json:"primary_language"`
	LearningLanguages []string  `json:"learning_languages"`
	CharacterID       string    `json:"character_id"`
	LoginCode         string    `json:"login_code"`
	CreatedAt         time.Time `json:"created_at"`
}

func toChildResponse(child domain.Child) childResponse {
	return childResponse{
		ID:                child.ID,
		Name:              child.Name,
		Age:               child.Age,
		PrimaryLanguage:   child.PrimaryLanguage,
		LearningLanguages: child.LearningLanguages,
		CharacterID:       child.CharacterID,
		LoginCode:         child.LoginCode,
		CreatedAt:         child.CreatedAt,
	}
}

func toConversationResponse(conv domain.Conversation) gin.H {
	return gin.H{
		"id":                 conv.ID,
		"child_id":           conv.ChildID,
		"started_at":         conv.StartedAt,
		"ended_at":           conv.EndedAt,
		"language":           conv.Language,
		"total_tokens":       conv.TotalTokens,
		"estimated_cost_usd": conv.EstimatedCostUSD,
	}
}

func toProviderResponse(cfg domain.ProviderConfig) gin.H {
	return gin.H{
		"id":          cfg.ID,
		"modality":    cfg.Modality,
		"vendor":      cfg.VendorName,
		"model_name":  cfg.ModelName,
		"is_active":   cfg.Active,
		"has_api_key": cfg.APIKeyEncrypted != "",
	}
}

func parseLimit(value string, fallback, max int) int {
	if value == "" {
		return fallback
	}
	if n, err := strconv.Atoi(value); err == nil && n > 0 && n <= max {
		return n
	}
	return fallback
}
