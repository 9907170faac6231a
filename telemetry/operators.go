package telemetry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Operator is a web console account.
type Operator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (db *SQLStore) GetOperator(username string) (*Operator, error) {
	row := db.QueryRow(db.Q(`SELECT id, username, password_hash, created_at FROM operators WHERE username=?`), username)

	var op Operator
	var createdAt any
	err := row.Scan(&op.ID, &op.Username, &op.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("operator %q not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("get operator: %w", err)
	}
	op.CreatedAt = parseTime(createdAt)
	return &op, nil
}

func (db *SQLStore) OperatorExists() (bool, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM operators`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *SQLStore) CreateOperator(username, passwordHash string) error {
	_, err := db.Exec(db.Q(`INSERT INTO operators (username, password_hash) VALUES (?, ?)`), username, passwordHash)
	if err != nil {
		return fmt.Errorf("create operator: %w", err)
	}
	return nil
}
