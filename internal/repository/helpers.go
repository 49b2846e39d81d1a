package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// profileColumns selects a model.Profile from users aliased as u.
const profileColumns = `
	u.id, u.username, u.display_name, u.bio,
	(SELECT p.url FROM photos p WHERE p.user_id = u.id AND p.is_main) AS image,
	(SELECT COUNT(*) FROM user_followings f WHERE f.target_id = u.id) AS followers_count,
	(SELECT COUNT(*) FROM user_followings f WHERE f.observer_id = u.id) AS following_count
`

func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// uniqueViolation returns the violated constraint for unique errors.
// SQLite reports it only in the message, e.g. "UNIQUE constraint failed: users.email".
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		return msg, true
	}
	return "", false
}
