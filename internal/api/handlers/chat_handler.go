package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qcbot/backend/internal/engine"
	"github.com/qcbot/backend/internal/metrics"
	"github.com/qcbot/backend/internal/storage/sqlite"
	"github.com/qcbot/backend/pkg/logger"
)

type ChatHandler struct {
	engine engine.Engine
	mode   string
	audit  *sqlite.Client
}

// NewChatHandler wires the selected engine behind the chat routes. The audit
// client may be nil; message logging is then skipped.
func NewChatHandler(eng engine.Engine, mode string, audit *sqlite.Client) *ChatHandler {
	return &ChatHandler{engine: eng, mode: mode, audit: audit}
}

// HandleInitialize creates (or re-seeds) a session and returns the opening
// suggestions.
func (h *ChatHandler) HandleInitialize(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	suggestions, greeting, err := h.engine.InitialSuggestions(c.Context(), sessionID)
	if err != nil {
		logger.Error("Failed to initialize chat", zap.Error(err), zap.String("session_id", sessionID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to initialize chat session",
		})
	}

	metrics.SessionsInitialized.Inc()

	return c.JSON(fiber.Map{
		"session_id":  sessionID,
		"suggestions": suggestions,
		"message":     greeting,
	})
}

// HandleMessage processes one chat turn.
func (h *ChatHandler) HandleMessage(c *fiber.Ctx) error {
	var req struct {
		SessionID    string `json:"session_id"`
		Message      string `json:"message"`
		IsSuggestion bool   `json:"is_suggestion"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	}

	start := time.Now()

	reply, err := h.engine.ProcessMessage(c.Context(), req.SessionID, req.Message, req.IsSuggestion)
	if err != nil {
		metrics.MessageTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to process message", zap.Error(err), zap.String("session_id", req.SessionID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	elapsed := time.Since(start)
	metrics.MessageTotal.WithLabelValues("success").Inc()
	metrics.MessageDuration.WithLabelValues(h.mode).Observe(elapsed.Seconds())
	if reply.Chart != nil {
		metrics.ChartGenerated.Inc()
	}
	if reply.Table != nil {
		metrics.TableGenerated.Inc()
	}

	if h.audit != nil {
		level, _ := reply.Metadata["current_level"].(string)
		h.audit.LogMessage(sqlite.MessageLog{
			ID:        uuid.NewString(),
			SessionID: req.SessionID,
			Message:   req.Message,
			Level:     level,
			HasChart:  reply.Chart != nil,
			HasTable:  reply.Table != nil,
			LatencyMs: elapsed.Milliseconds(),
		})
	}

	return c.JSON(fiber.Map{
		"session_id":   req.SessionID,
		"response":     reply.Response,
		"suggestions":  reply.Suggestions,
		"context_path": reply.ContextPath,
		"chart_data":   reply.Chart,
		"table_data":   reply.Table,
		"metadata":     reply.Metadata,
	})
}

// HandleHistory returns the stored conversation turns.
func (h *ChatHandler) HandleHistory(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session id is required",
		})
	}

	turns, err := h.engine.History(c.Context(), sessionID)
	if err != nil {
		logger.Error("Failed to load history", zap.Error(err), zap.String("session_id", sessionID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"messages":   turns,
	})
}

// HandleTree returns the raw navigation path for a session.
func (h *ChatHandler) HandleTree(c *fiber.Ctx) error {
	sessionID := c.Params("sessionID")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session id is required",
		})
	}

	path, err := h.engine.TreePath(c.Context(), sessionID)
	if err != nil {
		logger.Error("Failed to load tree path", zap.Error(err), zap.String("session_id", sessionID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load tree path",
		})
	}
	if path == nil {
		path = []string{}
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID,
		"tree_path":  path,
	})
}

// HandleReset drops all session state.
func (h *ChatHandler) HandleReset(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	if err := h.engine.Reset(c.Context(), req.SessionID); err != nil {
		logger.Error("Failed to reset session", zap.Error(err), zap.String("session_id", req.SessionID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset session",
		})
	}

	metrics.SessionsReset.Inc()

	return c.JSON(fiber.Map{
		"session_id": req.SessionID,
		"status":     "reset",
	})
}
