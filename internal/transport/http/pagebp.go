package http

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/domvito55/skillsladder-api/internal/domain"
)

// GenerateBusinessPlan streams a one-page business plan in Markdown.
// POST /api/pagebp/
//
// Requires a non-empty businessInfo; without it no generation call is made.
func (h *Handler) GenerateBusinessPlan(c echo.Context) error {
	var req domain.BusinessPlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.Response{
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
	}
	if req.BusinessInfo == "" {
		return c.JSON(http.StatusBadRequest, domain.Response{
			Message: "Missing 'businessInfo' in request data",
			Code:    http.StatusBadRequest,
		})
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, domain.Response{
			Message: "Streaming not supported",
			Code:    http.StatusInternalServerError,
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)

	write := func(fragment string) error {
		if _, err := io.WriteString(c.Response().Writer, fragment); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	ctx := c.Request().Context()
	if err := h.service.GenerateBusinessPlan(ctx, req.BusinessInfo, write); err != nil {
		log.Printf("ERROR: business plan stream failed: %v", err)
		fmt.Fprintf(c.Response().Writer, "Error: %s\n", err)
		flusher.Flush()
	}

	return nil
}
