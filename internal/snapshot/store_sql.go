package snapshot

import (
	"context"
	"database/sql"
	"time"
)

// SQLCache persists the snapshot in the local cache DB (sqlite by
// default, postgres when configured). Placeholders use the $n form,
// which both engines accept.
type SQLCache struct {
	db *sql.DB
}

func NewSQLCache(db *sql.DB) *SQLCache { return &SQLCache{db: db} }

func (c *SQLCache) SaveCollection(ctx context.Context, name string, payload []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO snapshot_cache (collection, payload, fetched_at)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (collection) DO UPDATE SET payload=EXCLUDED.payload, fetched_at=EXCLUDED.fetched_at`,
		name, string(payload), time.Now().Unix())
	return err
}

func (c *SQLCache) LoadCollections(ctx context.Context) (map[string][]byte, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT collection, payload FROM snapshot_cache`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]byte{}
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, err
		}
		out[name] = []byte(payload)
	}
	return out, rows.Err()
}

func (c *SQLCache) MarkRead(ctx context.Context, actorID, notificationID string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO notification_reads (notification_id, actor_id, read_at)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (notification_id, actor_id) DO NOTHING`,
		notificationID, actorID, time.Now().Unix())
	return err
}

func (c *SQLCache) ReadIDs(ctx context.Context, actorID string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT notification_id FROM notification_reads WHERE actor_id = $1`, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (c *SQLCache) Purge(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM snapshot_cache`); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM notification_reads`)
	return err
}
