// persistence/postgresql.go
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/wfunc/bomberman/models"
)

// PostgreSQL is the raw database/sql match archive, kept alongside the GORM
// implementation behind the same interface.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS matches (
            id SERIAL PRIMARY KEY,
            room_id TEXT NOT NULL,
            players JSONB NOT NULL,
            started_at TIMESTAMPTZ NOT NULL,
            duration INTEGER NOT NULL DEFAULT 0
        );
        CREATE INDEX IF NOT EXISTS idx_matches_room_id ON matches (room_id);
    `)
	return err
}

func (p *PostgreSQL) SaveMatch(record *models.MatchRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(
		`INSERT INTO matches (room_id, players, started_at, duration) VALUES ($1, $2, $3, $4)`,
		record.RoomID, players, record.StartedAt, record.Duration,
	)
	return err
}

func (p *PostgreSQL) FinishMatch(roomID string, durationSeconds int) error {
	result, err := p.db.Exec(`
        UPDATE matches SET duration = $1
        WHERE id = (
            SELECT id FROM matches
            WHERE room_id = $2 AND duration = 0
            ORDER BY started_at DESC
            LIMIT 1
        )`,
		durationSeconds, roomID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *PostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	rows, err := p.db.Query(
		`SELECT room_id, players, started_at, duration FROM matches ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var rec models.MatchRecord
		var players []byte
		if err := rows.Scan(&rec.RoomID, &players, &rec.StartedAt, &rec.Duration); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &rec.Players); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
