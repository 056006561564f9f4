package db

import (
	"database/sql"
	"time"

	"github.com/greenroom-app/greenroom/internal/types"
)

// NotificationRecord is one locally surfaced notification.
type NotificationRecord struct {
	MessageID      string
	ConversationID string
	SenderID       string
	Body           string
	CreatedAt      time.Time
	ReadAt         *time.Time
}

// RecordNotification stores a surfaced notification. Re-recording the
// same message id is a no-op.
func RecordNotification(conn *sql.DB, msg types.Message) error {
	_, err := conn.Exec(`
		INSERT OR IGNORE INTO notification_records
			(message_id, conversation_id, sender_id, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.CreatedAt.Unix())
	return err
}

// UnreadNotificationCount returns how many surfaced notifications for a
// conversation have not been cleared.
func UnreadNotificationCount(conn *sql.DB, conversationID string) (int, error) {
	var count int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM notification_records
		WHERE conversation_id = ? AND read_at IS NULL
	`, conversationID).Scan(&count)
	return count, err
}

// MarkConversationNotificationsRead clears all unread notification
// records for a conversation. Called when its view opens.
func MarkConversationNotificationsRead(conn *sql.DB, conversationID string) error {
	_, err := conn.Exec(`
		UPDATE notification_records SET read_at = ?
		WHERE conversation_id = ? AND read_at IS NULL
	`, time.Now().Unix(), conversationID)
	return err
}

// UnreadNotifications returns unread records for a conversation, oldest
// first.
func UnreadNotifications(conn *sql.DB, conversationID string) ([]NotificationRecord, error) {
	rows, err := conn.Query(`
		SELECT message_id, conversation_id, sender_id, body, created_at, read_at
		FROM notification_records
		WHERE conversation_id = ? AND read_at IS NULL
		ORDER BY created_at ASC, message_id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []NotificationRecord
	for rows.Next() {
		var record NotificationRecord
		var createdAt int64
		var readAt *int64
		if err := rows.Scan(&record.MessageID, &record.ConversationID, &record.SenderID, &record.Body, &createdAt, &readAt); err != nil {
			return nil, err
		}
		record.CreatedAt = time.Unix(createdAt, 0)
		if readAt != nil {
			t := time.Unix(*readAt, 0)
			record.ReadAt = &t
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Store wraps a database handle with the interfaces the chat engine
// consumes.
type Store struct {
	conn *sql.DB
}

// NewStore wraps an open database connection.
func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

// RecordNotification implements chat.NotificationRecorder.
func (s *Store) RecordNotification(msg types.Message) error {
	return RecordNotification(s.conn, msg)
}

// MarkConversationNotificationsRead implements chat.NotificationStore.
func (s *Store) MarkConversationNotificationsRead(conversationID string) error {
	return MarkConversationNotificationsRead(s.conn, conversationID)
}
