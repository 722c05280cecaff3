// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb indexes engine events in sqlite for filtered queries.
package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"sync/atomic"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/compute/compute"
)

const (
	refreshIndexInterval = 10000 // refresh query planner stats every 10k committed events
	maxLimit             = 10000
)

type LogDB struct {
	path          string
	driverVersion string
	db            *sql.DB
	stmtCache     *stmtCache
}

var memSeq atomic.Uint64

// New creates or opens the log db at the given path.
func New(path string) (*LogDB, error) {
	return open(path, path+"?_journal=wal&cache=shared")
}

// NewMem creates a log db in memory.
func NewMem() (*LogDB, error) {
	return open(":memory:", fmt.Sprintf("file:logdb-%d?mode=memory&cache=shared", memSeq.Add(1)))
}

func open(path, dsn string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}
	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		driverVersion: driverVer,
		db:            db,
		stmtCache:     newStmtCache(db),
	}, nil
}

// Close closes the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// FilterEvents returns the events matching filter. A nil filter returns up to maxLimit events.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	metricsHandleEventsFilter(filter)

	var (
		args  []any
		query = "SELECT seq, time, name, ref, actor, amount, attrs FROM event WHERE 1"
	)
	if r := filter.Range; r != nil {
		if r.Unit == Time {
			query += " AND time >= ? AND time <= ?"
			args = append(args, r.From, min(r.To, math.MaxInt64))
		} else {
			if r.From > MaxHeight {
				return nil, nil
			}
			from, _ := newSequence(uint32(r.From), 0)
			to, _ := newSequence(uint32(min(r.To, MaxHeight)), math.MaxInt32)
			query += " AND seq >= ? AND seq <= ?"
			args = append(args, from, to)
		}
	}

	for i, c := range filter.CriteriaSet {
		if i == 0 {
			query += " AND (( 1"
		} else {
			query += " OR ( 1"
		}
		if c.Name != nil {
			query += " AND name = ?"
			args = append(args, *c.Name)
		}
		if c.Ref != nil {
			query += " AND ref = ?"
			args = append(args, c.Ref.Bytes())
		}
		if c.Actor != nil {
			query += " AND actor = ?"
			args = append(args, c.Actor.Bytes())
		}
		if i == len(filter.CriteriaSet)-1 {
			query += " ))"
		} else {
			query += " )"
		}
	}

	if filter.Order == DESC {
		query += " ORDER BY seq DESC"
	} else {
		query += " ORDER BY seq ASC"
	}

	offset, limit := uint64(0), uint64(maxLimit)
	if filter.Options != nil {
		offset = filter.Options.Offset
		limit = min(filter.Options.Limit, maxLimit)
	}
	if offset > math.MaxInt64 {
		return nil, nil
	}
	query += " LIMIT ?, ?"
	args = append(args, offset, limit)

	return db.queryEvents(ctx, query, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			seq    sequence
			time   uint64
			name   string
			ref    []byte
			actor  []byte
			amount []byte
			attrs  []byte
		)
		if err := rows.Scan(&seq, &time, &name, &ref, &actor, &amount, &attrs); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		decoded, err := decodeAttrs(attrs)
		if err != nil {
			return nil, errors.Wrap(err, "decode attrs")
		}
		events = append(events, &Event{
			Height: seq.Height(),
			Index:  seq.Index(),
			Time:   time,
			Name:   name,
			Ref:    compute.BytesToBytes32(ref),
			Actor:  compute.BytesToAddress(actor),
			Amount: new(big.Int).SetBytes(amount),
			Attrs:  decoded,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// NewestHeight returns the height of the newest indexed event.
func (db *LogDB) NewestHeight() (uint64, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, errors.Wrap(err, "newest height")
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(sequence(seq.Int64).Height()), nil
}

// NewWriter creates an event writer.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db}
}

// Writer writes events inside one sqlite transaction until committed.
type Writer struct {
	db      *LogDB
	tx      *sql.Tx
	len     int
	written int
}

// Write appends the events emitted by the operation at height, numbering them in order.
func (w *Writer) Write(height, time uint64, events []*Event) error {
	if height > MaxHeight {
		return errors.Errorf("height %d exceeds index range", height)
	}
	for i, ev := range events {
		seq, err := newSequence(uint32(height), uint32(i))
		if err != nil {
			return err
		}
		ev.Height, ev.Index, ev.Time = uint32(height), uint32(i), time

		attrs, err := encodeAttrs(ev.Attrs)
		if err != nil {
			return errors.Wrap(err, "encode attrs")
		}
		var amount []byte
		if ev.Amount != nil {
			amount = ev.Amount.Bytes()
		}
		if err := w.exec(
			"INSERT OR REPLACE INTO event(seq, time, name, ref, actor, amount, attrs) VALUES(?, ?, ?, ?, ?, ?, ?)",
			seq, time, ev.Name, ev.Ref.Bytes(), ev.Actor.Bytes(), amount, attrs,
		); err != nil {
			return err
		}
		w.len++
	}
	return nil
}

// Truncate deletes the events at and above height.
func (w *Writer) Truncate(height uint64) error {
	if height > MaxHeight {
		return nil
	}
	seq, _ := newSequence(uint32(height), 0)
	return w.exec("DELETE FROM event WHERE seq >= ?", seq)
}

// Commit commits the written events.
func (w *Writer) Commit() error {
	if w.tx == nil {
		return nil
	}
	if err := w.tx.Commit(); err != nil {
		return errors.Wrap(err, "commit events")
	}
	metricEventsWritten().Add(int64(w.len))

	w.written += w.len
	if w.written >= refreshIndexInterval {
		if _, err := w.db.db.Exec("ANALYZE"); err != nil {
			logger.Warn("failed to analyze event index", "err", err)
		}
		w.written = 0
	}
	w.tx, w.len = nil, 0
	return nil
}

// Rollback drops the uncommitted events.
func (w *Writer) Rollback() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Rollback()
	w.tx, w.len = nil, 0
	return err
}

// UncommittedCount returns the number of written but uncommitted events.
func (w *Writer) UncommittedCount() int {
	return w.len
}

func (w *Writer) exec(query string, args ...any) error {
	if w.tx == nil {
		tx, err := w.db.db.Begin()
		if err != nil {
			return errors.Wrap(err, "begin")
		}
		w.tx = tx
	}
	stmt, err := w.db.stmtCache.Prepare(query)
	if err != nil {
		return errors.Wrap(err, "prepare")
	}
	if _, err := w.tx.Stmt(stmt).Exec(args...); err != nil {
		return errors.Wrap(err, "exec")
	}
	return nil
}
