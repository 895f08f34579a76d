package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/domvito55/skillsladder-api/internal/domain"
	"github.com/domvito55/skillsladder-api/internal/store"
)

// PushMessages appends messages to the tail of a chat session's message list.
// POST /api/messages/push/:collectionName/:sessionId
func (h *Handler) PushMessages(c echo.Context) error {
	collection := c.Param("collectionName")
	if ok, err := h.collectionAllowed(c, collection, "write"); !ok {
		return err
	}

	var msgs []domain.Message
	if err := c.Bind(&msgs); err != nil {
		return c.JSON(http.StatusBadRequest, domain.Response{
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
	}
	if len(msgs) == 0 {
		return c.JSON(http.StatusBadRequest, domain.Response{
			Message: "No messages to push",
			Code:    http.StatusBadRequest,
		})
	}
	for i := range msgs {
		if err := msgs[i].Validate(); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, domain.Response{
				Message: err.Error(),
				Code:    http.StatusUnprocessableEntity,
			})
		}
	}

	if err := h.service.PushMessages(c.Request().Context(), collection, c.Param("sessionId"), msgs); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, domain.Response{
				Message: "Chat session not found",
				Code:    http.StatusNotFound,
			})
		}
		return c.JSON(http.StatusInternalServerError, domain.Response{
			Message: "Failed to push messages",
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusCreated, domain.Response{
		Message: "Messages pushed successfully",
		Code:    http.StatusCreated,
	})
}

// PopMessage removes and returns the last message of a chat session's message
// list.
// DELETE /api/messages/pop/:collectionName/:sessionId
func (h *Handler) PopMessage(c echo.Context) error {
	collection := c.Param("collectionName")
	if ok, err := h.collectionAllowed(c, collection, "write"); !ok {
		return err
	}

	msg, err := h.service.PopMessage(c.Request().Context(), collection, c.Param("sessionId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, domain.Response{
				Message: "Chat session not found",
				Code:    http.StatusNotFound,
			})
		}
		return c.JSON(http.StatusInternalServerError, domain.Response{
			Message: "Failed to pop message",
			Code:    http.StatusInternalServerError,
		})
	}
	if msg == nil {
		return c.JSON(http.StatusNotFound, domain.Response{
			Message: "No message to pop",
			Code:    http.StatusNotFound,
		})
	}

	return c.JSON(http.StatusOK, domain.Response{
		Message: msg,
		Code:    http.StatusOK,
	})
}
