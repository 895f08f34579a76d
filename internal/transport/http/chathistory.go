package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/domvito55/skillsladder-api/internal/domain"
	"github.com/domvito55/skillsladder-api/internal/store"
)

// CreateChatHistory creates a new chat history document.
// POST /api/chathistory/:collectionName
func (h *Handler) CreateChatHistory(c echo.Context) error {
	collection := c.Param("collectionName")
	if ok, err := h.collectionAllowed(c, collection, "write"); !ok {
		return err
	}

	var doc domain.ChatHistory
	if err := c.Bind(&doc); err != nil {
		return c.JSON(http.StatusBadRequest, domain.Response{
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
	}
	if err := doc.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, domain.Response{
			Message: err.Error(),
			Code:    http.StatusUnprocessableEntity,
		})
	}

	created, err := h.service.CreateChatHistory(c.Request().Context(), collection, &doc)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSession) {
			return c.JSON(http.StatusConflict, domain.Response{
				Message: "Chat history already exists",
				Code:    http.StatusConflict,
			})
		}
		return c.JSON(http.StatusInternalServerError, domain.Response{
			Message: "Failed to create chat history",
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusCreated, domain.Response{
		Message: created,
		Code:    http.StatusCreated,
	})
}

// GetChatHistoryByField retrieves a chat history document by a field and its
// value.
// GET /api/chathistory/:collectionName/:field/:value
func (h *Handler) GetChatHistoryByField(c echo.Context) error {
	collection := c.Param("collectionName")
	if ok, err := h.collectionAllowed(c, collection, "read"); !ok {
		return err
	}

	doc, err := h.service.GetChatHistoryByField(c.Request().Context(), collection, c.Param("field"), c.Param("value"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusNotFound, domain.Response{
				Message: "Chat history not found",
				Code:    http.StatusNotFound,
			})
		case errors.Is(err, store.ErrUnknownField):
			return c.JSON(http.StatusBadRequest, domain.Response{
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		}
		return c.JSON(http.StatusInternalServerError, domain.Response{
			Message: "Failed to retrieve chat history",
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusOK, domain.Response{
		Message: doc,
		Code:    http.StatusOK,
	})
}

// UpdateChatHistory replaces a chat history document matched by a field and
// its value.
// PUT /api/chathistory/:collectionName/:field/:value
func (h *Handler) UpdateChatHistory(c echo.Context) error {
	collection := c.Param("collectionName")
	if ok, err := h.collectionAllowed(c, collection, "write"); !ok {
		return err
	}

	var doc domain.ChatHistory
	if err := c.Bind(&doc); err != nil {
		return c.JSON(http.StatusBadRequest, domain.Response{
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
	}
	if err := doc.Validate(); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, domain.Response{
			Message: err.Error(),
			Code:    http.StatusUnprocessableEntity,
		})
	}

	updated, err := h.service.UpdateChatHistory(c.Request().Context(), collection, c.Param("field"), c.Param("value"), &doc)
	if err != nil {
		if errors.Is(err, store.ErrUnknownField) {
			return c.JSON(http.StatusBadRequest, domain.Response{
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		}
		return c.JSON(http.StatusInternalServerError, domain.Response{
			Message: "Failed to update chat history",
			Code:    http.StatusInternalServerError,
		})
	}
	if !updated {
		return c.JSON(http.StatusNotFound, domain.Response{
			Message: "Chat history not found",
			Code:    http.StatusNotFound,
		})
	}

	return c.JSON(http.StatusOK, domain.Response{
		Message: "Chat history updated successfully",
		Code:    http.StatusOK,
	})
}

// DeleteChatHistory deletes a chat history document matched by a field and
// its value.
// DELETE /api/chathistory/:collectionName/:field/:value
func (h *Handler) DeleteChatHistory(c echo.Context) error {
	collection := c.Param("collectionName")
	if ok, err := h.collectionAllowed(c, collection, "delete"); !ok {
		return err
	}

	deleted, err := h.service.DeleteChatHistory(c.Request().Context(), collection, c.Param("field"), c.Param("value"))
	if err != nil {
		if errors.Is(err, store.ErrUnknownField) {
			return c.JSON(http.StatusBadRequest, domain.Response{
				Message: err.Error(),
				Code:    http.StatusBadRequest,
			})
		}
		return c.JSON(http.StatusInternalServerError, domain.Response{
			Message: "Failed to delete chat history",
			Code:    http.StatusInternalServerError,
		})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, domain.Response{
			Message: "Chat history not found",
			Code:    http.StatusNotFound,
		})
	}

	return c.JSON(http.StatusOK, domain.Response{
		Message: "Chat history deleted successfully",
		Code:    http.StatusOK,
	})
}
