package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/aaaravM/PathLearn/pkg/model"
)

// InsertInteraction writes one interaction row and returns its id.
func (d *Database) InsertInteraction(ctx context.Context, learnerID string, ev model.InteractionEvent) (string, error) {
	if learnerID == "" {
		return "", errors.New("learner id is required")
	}
	id := uuid.NewString()
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}

	_, err = d.db.ExecContext(ctx, `
        INSERT INTO interactions(id, learner_id, timestamp, payload)
        VALUES(?, ?, ?, ?);
    `, id, learnerID, ev.Timestamp, string(payload))
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecentInteractions returns up to n of the learner's most recent events in
// chronological order.
func (d *Database) RecentInteractions(ctx context.Context, learnerID string, n int) ([]model.InteractionEvent, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT payload FROM interactions
        WHERE learner_id = ?
        ORDER BY timestamp DESC
        LIMIT ?;
    `, learnerID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.InteractionEvent
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ev model.InteractionEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			d.logger.Warn("skipping undecodable interaction row", "learner", learnerID, "err", err)
			continue
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive newest-first; flip to chronological.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// SaveSnapshot upserts a model parameter blob under its version tag.
func (d *Database) SaveSnapshot(ctx context.Context, tag string, blob []byte) error {
	if tag == "" {
		return errors.New("snapshot tag is required")
	}
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO model_snapshots(tag, params, updated_at)
        VALUES(?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(tag) DO UPDATE SET params = excluded.params, updated_at = CURRENT_TIMESTAMP;
    `, tag, blob)
	return err
}

// LoadSnapshot returns the blob stored under tag, or nil when absent. A
// missing snapshot is not an error: callers fresh-initialize instead.
func (d *Database) LoadSnapshot(ctx context.Context, tag string) ([]byte, error) {
	var blob []byte
	err := d.db.QueryRowContext(ctx, `SELECT params FROM model_snapshots WHERE tag = ?;`, tag).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}
