package http

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/domvito55/skillsladder-api/internal/domain"
)

// RunIdeationChat runs one ideation chat exchange and streams the reply.
// POST /api/ideation/
//
// The response is a text/plain chunked stream of generated fragments. Internal
// failures never drop the connection; they are emitted as a final
// "Error: <message>" fragment so the consumer can tell a graceful end of
// stream from truncation.
func (h *Handler) RunIdeationChat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.Response{
			Message: "Invalid request body",
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
	if err := h.service.RunIdeationChat(ctx, req.Message, req.SessionName, write); err != nil {
		log.Printf("ERROR: ideation chat stream failed: %v", err)
		fmt.Fprintf(c.Response().Writer, "Error: %s\n", err)
		flusher.Flush()
	}

	return nil
}
