// Package indexdb keeps a queryable sqlite index of sessions and per-frame
// stats. The journal stays the source of truth; the index may drop rows when
// the writer falls behind.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"broodlink/internal/protocol"
)

const queueCapacity = 4096

type SQLiteIndex struct {
	db *sql.DB
	st *statements

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropFrame   atomic.Uint64
	dropSession atomic.Uint64
}

type reqKind int

const (
	reqFrame reqKind = iota + 1
	reqSession
	reqSync
)

type req struct {
	kind reqKind

	frame   protocol.FrameStats
	session sessionRow
	done    chan struct{}
}

type sessionRow struct {
	ID            string
	LatencyFrames int
	LatCom        bool
	TuningJSON    string
	StartedAt     string
}

type Stats struct {
	QueueDepth       int
	QueueCapacity    int
	DropFrameTotal   uint64
	DropSessionTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	return openSQLite(path, queueCapacity)
}

func openSQLite(path string, capacity int) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st, err := prepareStatements(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{db: db, st: st, ch: make(chan req, capacity)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			latency_frames INTEGER NOT NULL,
			latcom INTEGER NOT NULL,
			tuning_json TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS frames (
			session_id TEXT NOT NULL,
			frame INTEGER NOT NULL,
			issued INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			flushed INTEGER NOT NULL,
			dropped INTEGER NOT NULL,
			minerals INTEGER NOT NULL,
			gas INTEGER NOT NULL,
			supply_used INTEGER NOT NULL,
			supply_total INTEGER NOT NULL,
			units INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (session_id, frame)
		);`,
		`CREATE TABLE IF NOT EXISTS rejections (
			session_id TEXT NOT NULL,
			frame INTEGER NOT NULL,
			reason TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (session_id, frame, reason)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rejections_reason ON rejections(reason, session_id);`,
		`CREATE TABLE IF NOT EXISTS commands (
			session_id TEXT NOT NULL,
			frame INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			unit INTEGER NOT NULL,
			grouped INTEGER NOT NULL,
			verdict TEXT NOT NULL,
			PRIMARY KEY (session_id, frame, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_unit ON commands(session_id, unit, frame);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:       len(s.ch),
		QueueCapacity:    cap(s.ch),
		DropFrameTotal:   s.dropFrame.Load(),
		DropSessionTotal: s.dropSession.Load(),
	}
}

// WriteFrame queues st without blocking the frame loop.
func (s *SQLiteIndex) WriteFrame(_ context.Context, st protocol.FrameStats) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqFrame, frame: st}:
	default:
		s.dropFrame.Add(1)
	}
	return nil
}

// RecordSession stores the session's settings once at startup.
func (s *SQLiteIndex) RecordSession(id string, latencyFrames int, latCom bool, tun any) {
	if s == nil || s.closed.Load() {
		return
	}
	b, _ := json.Marshal(tun)
	r := sessionRow{
		ID:            id,
		LatencyFrames: latencyFrames,
		LatCom:        latCom,
		TuningJSON:    string(b),
		StartedAt:     time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqSession, session: r}:
	default:
		s.dropSession.Add(1)
	}
}

// Sync blocks until everything queued before it is committed.
func (s *SQLiteIndex) Sync(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqSync, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type ReasonTotal struct {
	Reason string
	Count  int
}

// RejectionTotals sums a session's rejections per reason, most frequent first.
func (s *SQLiteIndex) RejectionTotals(ctx context.Context, sessionID string) ([]ReasonTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT reason, SUM(count) FROM rejections WHERE session_id=? GROUP BY reason`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReasonTotal
	for rows.Next() {
		var r ReasonTotal
		if err := rows.Scan(&r.Reason, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out, nil
}

type FrameSpan struct {
	First, Last int
	Frames      int
	Issued      int
	Rejected    int
	Dropped     int
}

// Span summarises the frames indexed for a session.
func (s *SQLiteIndex) Span(ctx context.Context, sessionID string) (FrameSpan, error) {
	var sp FrameSpan
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(frame),0), COALESCE(MAX(frame),0), COUNT(*),
			COALESCE(SUM(issued),0), COALESCE(SUM(rejected),0), COALESCE(SUM(dropped),0)
		FROM frames WHERE session_id=?`, sessionID,
	).Scan(&sp.First, &sp.Last, &sp.Frames, &sp.Issued, &sp.Rejected, &sp.Dropped)
	return sp, err
}

// Sessions lists indexed session ids in start order.
func (s *SQLiteIndex) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM sessions ORDER BY started_at, session_id`)
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

type statements struct {
	frame, rejection, command, session *sql.Stmt
}

func prepareStatements(db *sql.DB) (*statements, error) {
	var st statements
	for _, p := range []struct {
		dst   **sql.Stmt
		query string
	}{
		{&st.frame, `INSERT OR REPLACE INTO frames(session_id,frame,issued,rejected,flushed,dropped,minerals,gas,supply_used,supply_total,units,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`},
		{&st.rejection, `INSERT OR REPLACE INTO rejections(session_id,frame,reason,count) VALUES(?,?,?,?)`},
		{&st.command, `INSERT OR REPLACE INTO commands(session_id,frame,seq,kind,unit,grouped,verdict) VALUES(?,?,?,?,?,?,?)`},
		{&st.session, `INSERT OR REPLACE INTO sessions(session_id,latency_frames,latcom,tuning_json,started_at) VALUES(?,?,?,?,?)`},
	} {
		stmt, err := db.Prepare(p.query)
		if err != nil {
			st.close()
			return nil, fmt.Errorf("indexdb: prepare: %w", err)
		}
		*p.dst = stmt
	}
	return &st, nil
}

func (st *statements) close() {
	for _, stmt := range []*sql.Stmt{st.frame, st.rejection, st.command, st.session} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()
	defer s.st.close()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil || tx == nil {
			return false
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		if r.kind == reqSync {
			commit()
			close(r.done)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqFrame:
			f := r.frame
			raw, _ := json.Marshal(f)
			if !exec(s.st.frame, f.SessionID, f.Frame, f.Issued, f.RejectedTotal(), f.Flushed, f.Dropped,
				f.Minerals, f.Gas, f.SupplyUsed, f.SupplyTotal, f.Units, string(raw)) {
				continue
			}
			for reason, n := range f.Rejected {
				if !exec(s.st.rejection, f.SessionID, f.Frame, reason, n) {
					break
				}
			}
			for i, c := range f.Commands {
				if !exec(s.st.command, f.SessionID, f.Frame, i, c.Kind, c.Unit, c.Grouped, c.Verdict) {
					break
				}
			}

		case reqSession:
			se := r.session
			exec(s.st.session, se.ID, se.LatencyFrames, se.LatCom, se.TuningJSON, se.StartedAt)
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
