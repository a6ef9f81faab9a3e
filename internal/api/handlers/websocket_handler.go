package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qcbot/backend/internal/engine"
	"github.com/qcbot/backend/pkg/logger"
)

// WebSocketHandler streams chat replies word by word over a persistent
// connection, for frontends that render a typing effect.
type WebSocketHandler struct {
	engine engine.Engine
}

func NewWebSocketHandler(eng engine.Engine) *WebSocketHandler {
	return &WebSocketHandler{engine: eng}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	for {
		var msg struct {
			Type         string `json:"type"`
			Content      string `json:"content"`
			IsSuggestion bool   `json:"is_suggestion"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "message" {
			continue
		}

		if err := h.streamReply(c, sessionID, msg.Content, msg.IsSuggestion); err != nil {
			logger.Error("Failed to stream reply", zap.Error(err))
			h.sendError(c, "Failed to process message")
		}
	}
}

func (h *WebSocketHandler) streamReply(c *websocket.Conn, sessionID, message string, isSuggestion bool) error {
	ctx := context.Background()

	h.sendChunk(c, "status", "Processing message...")

	reply, err := h.engine.ProcessMessage(ctx, sessionID, message, isSuggestion)
	if err != nil {
		return err
	}

	words := splitIntoWords(reply.Response)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.sendChunk(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":         "complete",
		"session_id":   sessionID,
		"suggestions":  reply.Suggestions,
		"context_path": reply.ContextPath,
		"chart_data":   reply.Chart,
		"table_data":   reply.Table,
		"metadata":     reply.Metadata,
	})
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
