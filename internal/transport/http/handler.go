package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/domvito55/skillsladder-api/internal/domain"
	"github.com/domvito55/skillsladder-api/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		service: svc,
	}
}

// RegisterRoutes registers all routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Ideation chatbot
	e.POST("/api/ideation", h.RunIdeationChat)
	e.POST("/api/ideation/", h.RunIdeationChat)

	// 1-page business plan
	e.POST("/api/pagebp", h.GenerateBusinessPlan)
	e.POST("/api/pagebp/", h.GenerateBusinessPlan)

	// Chat history CRUD
	e.POST("/api/chathistory/:collectionName", h.CreateChatHistory)
	e.GET("/api/chathistory/:collectionName/:field/:value", h.GetChatHistoryByField)
	e.PUT("/api/chathistory/:collectionName/:field/:value", h.UpdateChatHistory)
	e.DELETE("/api/chathistory/:collectionName/:field/:value", h.DeleteChatHistory)

	// Message list (FILO)
	e.POST("/api/messages/push/:collectionName/:sessionId", h.PushMessages)
	e.DELETE("/api/messages/pop/:collectionName/:sessionId", h.PopMessage)

	e.GET("/check", h.Check)
}

// Check is the liveness probe.
// GET /check
func (h *Handler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Response{
		Message: "Welcome to the Skills Ladder API!",
		Code:    http.StatusOK,
	})
}

// collectionAllowed evaluates the collection-access policy. When access is
// not allowed the response has already been written and the caller should
// return the accompanying error as-is.
func (h *Handler) collectionAllowed(c echo.Context, collection, operation string) (bool, error) {
	allowed, err := h.service.AllowCollection(c.Request().Context(), collection, operation)
	if err != nil {
		return false, c.JSON(http.StatusInternalServerError, domain.Response{
			Message: "Policy evaluation failed",
			Code:    http.StatusInternalServerError,
		})
	}
	if !allowed {
		return false, c.JSON(http.StatusForbidden, domain.Response{
			Message: "Access to collection denied",
			Code:    http.StatusForbidden,
		})
	}
	return true, nil
}
