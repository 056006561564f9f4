package db

import "database/sql"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notification_records (
	message_id      TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	sender_id       TEXT NOT NULL,
	body            TEXT NOT NULL,
	created_at      INTEGER NOT NULL,
	read_at         INTEGER
);

CREATE INDEX IF NOT EXISTS idx_notification_records_conversation
	ON notification_records(conversation_id, read_at);
`

func ensureSchema(conn *sql.DB) error {
	_, err := conn.Exec(schemaSQL)
	return err
}
