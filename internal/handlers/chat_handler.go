package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hexsmith/hexsmith/backend/internal/models"
	"github.com/hexsmith/hexsmith/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ChatHandler handles AI tutor chat requests
type ChatHandler struct {
	generator services.ContentGenerator
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(generator services.ContentGenerator) *ChatHandler {
	return &ChatHandler{generator: generator}
}

// RegisterChatRoutes registers the chat route
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.POST("/chat", h.Chat)
}

// Chat forwards a tutor question to the AI model and returns its reply
func (h *ChatHandler) Chat(c echo.Context) error {
	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Message is required")
	}

	reply, err := h.generator.Chat(c.Request().Context(), req.Message)
	if err != nil {
		log.Error().Err(err).Msg("AI chat failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong")
	}

	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}
