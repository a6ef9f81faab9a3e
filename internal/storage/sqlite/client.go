package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/qcbot/backend/pkg/logger"
)

// Client is the message audit log. Writes are best-effort: a failed insert
// is logged, never surfaced to the chat request.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS message_log (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		message TEXT NOT NULL,
		question_type TEXT,
		level TEXT,
		has_chart INTEGER DEFAULT 0,
		has_table INTEGER DEFAULT 0,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_message_session ON message_log(session_id);
	CREATE INDEX IF NOT EXISTS idx_message_created ON message_log(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// MessageLog is one audited chat turn.
type MessageLog struct {
	ID           string
	SessionID    string
	Message      string
	QuestionType string
	Level        string
	HasChart     bool
	HasTable     bool
	LatencyMs    int64
}

func (c *Client) LogMessage(entry MessageLog) {
	_, err := c.db.Exec(
		`INSERT INTO message_log (id, session_id, message, question_type, level, has_chart, has_table, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SessionID,
		entry.Message,
		entry.QuestionType,
		entry.Level,
		boolToInt(entry.HasChart),
		boolToInt(entry.HasTable),
		entry.LatencyMs,
		time.Now().Unix(),
	)
	if err != nil {
		logger.Error("Failed to log message", zap.Error(err), zap.String("session_id", entry.SessionID))
	}
}

// RecentMessages returns the latest audited turns for a session, newest
// first.
func (c *Client) RecentMessages(sessionID string, limit int) ([]MessageLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.db.Query(
		`SELECT id, session_id, message, question_type, level, has_chart, has_table, latency_ms
		 FROM message_log WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query message log: %w", err)
	}
	defer rows.Close()

	var entries []MessageLog
	for rows.Next() {
		var entry MessageLog
		var hasChart, hasTable int
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Message, &entry.QuestionType,
			&entry.Level, &hasChart, &hasTable, &entry.LatencyMs); err != nil {
			return nil, fmt.Errorf("failed to scan message log row: %w", err)
		}
		entry.HasChart = hasChart != 0
		entry.HasTable = hasTable != 0
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
