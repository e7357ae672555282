package recording

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/tebeka/atexit"
)

// SQLiteBackend stores records in the run_records table of a SQLite
// database.
type SQLiteBackend struct {
	*sql.DB
	statement *sql.Stmt

	path      string
	records   []Record
	batchSize int
	closed    bool
}

// NewSQLiteBackend creates a new SQLiteBackend.
func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{
		path:      path,
		batchSize: 10000,
	}
}

// Init opens the database and creates the table if needed. Records are
// flushed and the database closed when the program exits through atexit.
func (b *SQLiteBackend) Init() error {
	db, err := sql.Open("sqlite3", b.path)
	if err != nil {
		return err
	}
	b.DB = db

	_, err = b.Exec(`
		CREATE TABLE IF NOT EXISTS run_records (
			run_id  TEXT NOT NULL,
			time    REAL NOT NULL,
			kind    TEXT NOT NULL,
			src     INTEGER,
			dst     INTEGER,
			bits    REAL,
			what    TEXT
		)`)
	if err != nil {
		return fmt.Errorf("creating run_records: %w", err)
	}

	b.statement, err = b.Prepare(`
		INSERT INTO run_records (run_id, time, kind, src, dst, bits, what)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	atexit.Register(func() {
		err := b.Close()
		if err != nil {
			panic(err)
		}
	})

	return nil
}

// Write buffers a record.
func (b *SQLiteBackend) Write(r Record) {
	b.records = append(b.records, r)
	if len(b.records) >= b.batchSize {
		b.Flush()
	}
}

// Flush writes the buffered records in a single transaction.
func (b *SQLiteBackend) Flush() {
	if b.closed || len(b.records) == 0 {
		return
	}

	tx, err := b.Begin()
	if err != nil {
		panic(err)
	}

	stmt := tx.Stmt(b.statement)
	for _, r := range b.records {
		_, err := stmt.Exec(r.RunID, r.Time, r.Kind, r.From, r.To, r.Bits, r.What)
		if err != nil {
			_ = tx.Rollback()
			panic(err)
		}
	}

	err = tx.Commit()
	if err != nil {
		panic(err)
	}

	b.records = nil
}

// Close flushes the remaining records and closes the database.
func (b *SQLiteBackend) Close() error {
	if b.closed {
		return nil
	}

	b.Flush()
	b.closed = true

	err := b.statement.Close()
	if err != nil {
		return err
	}

	return b.DB.Close()
}
