package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
)

const (
	connectTimeout = 10 * time.Second

	readingColumns = `id, session_id, mode, ambient, red, green, blue, proximity, gesture, timestamp_ns`
)

// ReadingRepository implements domain.ReadingRepository with MySQL
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository connects to MySQL and creates the readings table if needed.
// dsn uses the go-sql-driver format, e.g. "user:pass@tcp(localhost:3306)/apds".
func NewReadingRepository(dsn string) (*ReadingRepository, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = connectTimeout
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create MySQL connector: %w", err)
	}
	db := sql.OpenDB(connector)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging MySQL at %s: %w", cfg.Addr, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		session_id VARCHAR(64) NOT NULL,
		mode VARCHAR(16) NOT NULL,
		ambient INT NOT NULL DEFAULT 0,
		red INT NOT NULL DEFAULT 0,
		green INT NOT NULL DEFAULT 0,
		blue INT NOT NULL DEFAULT 0,
		proximity INT NOT NULL DEFAULT 0,
		gesture VARCHAR(8) NOT NULL DEFAULT '',
		timestamp_ns BIGINT NOT NULL,
		INDEX idx_mode_timestamp (mode, timestamp_ns)
	)`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &ReadingRepository{db: db}, nil
}

// SaveReading stores a reading in MySQL
func (r *ReadingRepository) SaveReading(ctx context.Context, reading *domain.Reading) error {
	query := `INSERT INTO sensor_readings
		(session_id, mode, ambient, red, green, blue, proximity, gesture, timestamp_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	v := reading.Values
	result, err := r.db.ExecContext(ctx, query,
		reading.SessionID, reading.Mode.String(),
		v.Ambient, v.Red, v.Green, v.Blue, v.Proximity, string(v.Gesture),
		reading.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}

	reading.ID = id
	return nil
}

// GetReading retrieves a reading by ID
func (r *ReadingRepository) GetReading(ctx context.Context, id int64) (*domain.Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM sensor_readings WHERE id = ?`

	reading, err := scanReading(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReadingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reading: %w", err)
	}
	return reading, nil
}

// GetReadingsInRange returns the readings of a mode within [start, end)
func (r *ReadingRepository) GetReadingsInRange(ctx context.Context, mode domain.Mode, start, end time.Time) ([]*domain.Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		WHERE (? = '' OR mode = ?) AND timestamp_ns >= ? AND timestamp_ns < ?
		ORDER BY timestamp_ns ASC, id ASC
	`

	filter := modeFilter(mode)
	rows, err := r.db.QueryContext(ctx, query, filter, filter, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []*domain.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}
	return readings, nil
}

// GetLatestReading returns the most recent reading of a mode
func (r *ReadingRepository) GetLatestReading(ctx context.Context, mode domain.Mode) (*domain.Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM sensor_readings
		WHERE (? = '' OR mode = ?)
		ORDER BY timestamp_ns DESC, id DESC
		LIMIT 1
	`

	filter := modeFilter(mode)
	reading, err := scanReading(r.db.QueryRowContext(ctx, query, filter, filter))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReadingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest reading: %w", err)
	}
	return reading, nil
}

// DeleteOldReadings removes readings older than specified duration
func (r *ReadingRepository) DeleteOldReadings(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	if _, err := r.db.ExecContext(ctx, `DELETE FROM sensor_readings WHERE timestamp_ns < ?`, cutoff.UnixNano()); err != nil {
		return fmt.Errorf("failed to delete old readings: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *ReadingRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("error while disconnecting from MySQL: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(row scanner) (*domain.Reading, error) {
	var (
		reading domain.Reading
		mode    string
		gesture string
		ts      int64
	)

	v := &reading.Values
	if err := row.Scan(&reading.ID, &reading.SessionID, &mode,
		&v.Ambient, &v.Red, &v.Green, &v.Blue, &v.Proximity, &gesture, &ts); err != nil {
		return nil, err
	}

	m, err := domain.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	reading.Mode = m
	reading.Values.Gesture = domain.Direction(gesture)
	reading.Timestamp = time.Unix(0, ts).UTC()
	return &reading, nil
}

func modeFilter(mode domain.Mode) string {
	if mode == domain.ModeIdle {
		return ""
	}
	return mode.String()
}
