// store.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the relational session store on PostgreSQL.
// One row per session carries the entire round state machine; all
// coordination between request handlers and the scoring workers goes
// through exclusive row locks on that row, never through in-process
// state. Players, submissions and words hang off the session with
// cascading deletes, so destroying a session dissolves the subtree.

package boggle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS boggle_session (
  id               BIGSERIAL PRIMARY KEY,
  created          TIMESTAMPTZ NOT NULL DEFAULT now(),
  dice_config      TEXT NOT NULL,
  dictionary       TEXT,
  round_minutes    INTEGER NOT NULL,
  use_mild_scoring BOOLEAN NOT NULL DEFAULT FALSE,
  round_no         INTEGER NOT NULL DEFAULT 0,
  round_start      TIMESTAMPTZ,
  round_scored     BOOLEAN
);

CREATE TABLE IF NOT EXISTS player (
  id         BIGSERIAL PRIMARY KEY,
  session_id BIGINT NOT NULL
             REFERENCES boggle_session(id) ON DELETE CASCADE,
  name       VARCHAR(250) NOT NULL
);
CREATE INDEX IF NOT EXISTS player_session_idx ON player (session_id);

CREATE TABLE IF NOT EXISTS submission (
  id        BIGSERIAL PRIMARY KEY,
  player_id BIGINT NOT NULL
            REFERENCES player(id) ON DELETE CASCADE,
  round_no  INTEGER NOT NULL,
  UNIQUE (player_id, round_no)
);

CREATE TABLE IF NOT EXISTS word (
  id               BIGSERIAL PRIMARY KEY,
  submission_id    BIGINT NOT NULL
                   REFERENCES submission(id) ON DELETE CASCADE,
  word             VARCHAR(20) NOT NULL,
  score            INTEGER,
  duplicate        BOOLEAN,
  dictionary_valid BOOLEAN,
  path_array       TEXT,
  UNIQUE (submission_id, word)
);
`

// Session is one boggle_session row. RoundStart is nil before the
// first advance; RoundScored is the tri-state scoring flag (nil: no
// scoring job claimed, false: scoring in progress, true: scored).
type Session struct {
	ID             int64
	Created        time.Time
	DiceConfig     string
	Dictionary     *string
	RoundMinutes   int
	UseMildScoring bool
	RoundNo        int
	RoundStart     *time.Time
	RoundScored    *bool
}

// RoundEnd computes the end of the current round, if one has started
func (s *Session) RoundEnd() *time.Time {
	if s.RoundStart == nil {
		return nil
	}
	end := s.RoundStart.Add(time.Duration(s.RoundMinutes) * time.Minute)
	return &end
}

// Player is one player row
type Player struct {
	ID        int64
	SessionID int64
	Name      string
}

// Word is one word row. The scoring columns are nil until the round
// has been scored.
type Word struct {
	ID              int64
	SubmissionID    int64
	Word            string
	Score           *int
	Duplicate       *bool
	DictionaryValid *bool
	PathJSON        *string
}

// PlayerWords groups one player's words for a round, in the order
// they come back from the store
type PlayerWords struct {
	PlayerID int64
	Name     string
	Words    []*Word
}

// Store wraps the connection pool
type Store struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

// OpenStore connects to the database
func OpenStore(ctx context.Context, url string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{db: pool, log: log}, nil
}

// Close releases the pool
func (st *Store) Close() {
	st.db.Close()
}

// InitSchema creates the tables as necessary and truncates all
// sessions. Sessions cannot outlive a process restart: the token key
// is ephemeral and any in-flight worker state is gone.
func (st *Store) InitSchema(ctx context.Context) error {
	if _, err := st.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	_, err := st.db.Exec(ctx,
		"TRUNCATE boggle_session RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("truncate sessions: %w", err)
	}
	return nil
}

const sessionColumns = `id, created, dice_config, dictionary,
	round_minutes, use_mild_scoring, round_no, round_start, round_scored`

func scanSession(row pgx.Row) (*Session, error) {
	var sess Session
	err := row.Scan(
		&sess.ID, &sess.Created, &sess.DiceConfig, &sess.Dictionary,
		&sess.RoundMinutes, &sess.UseMildScoring,
		&sess.RoundNo, &sess.RoundStart, &sess.RoundScored,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// CreateSession inserts a fresh session row
func (st *Store) CreateSession(
	ctx context.Context,
	diceConfig string,
	dictionary *string,
	roundMinutes int,
	mildScoring bool,
) (*Session, error) {
	row := st.db.QueryRow(ctx, `
		INSERT INTO boggle_session
			(dice_config, dictionary, round_minutes, use_mild_scoring)
		VALUES ($1, $2, $3, $4)
		RETURNING `+sessionColumns,
		diceConfig, dictionary, roundMinutes, mildScoring,
	)
	return scanSession(row)
}

// GetSession loads a session without locking it. Returns (nil, nil)
// when the session does not exist.
func (st *Store) GetSession(ctx context.Context, id int64) (*Session, error) {
	row := st.db.QueryRow(ctx,
		"SELECT "+sessionColumns+" FROM boggle_session WHERE id = $1", id)
	return scanSession(row)
}

// sessionForUpdate loads a session under an exclusive row lock within
// tx. Returns (nil, nil) when the session does not exist.
func sessionForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*Session, error) {
	row := tx.QueryRow(ctx,
		"SELECT "+sessionColumns+
			" FROM boggle_session WHERE id = $1 FOR UPDATE", id)
	return scanSession(row)
}

// DeleteSession destroys a session, cascading to its subtree
func (st *Store) DeleteSession(ctx context.Context, id int64) error {
	_, err := st.db.Exec(ctx,
		"DELETE FROM boggle_session WHERE id = $1", id)
	return err
}

// ListPlayers returns the session's players in join order
func (st *Store) ListPlayers(ctx context.Context, sessionID int64) ([]Player, error) {
	rows, err := st.db.Query(ctx, `
		SELECT id, session_id, name FROM player
		WHERE session_id = $1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Name); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// PendingSubmissions reports whether any player in the session still
// lacks a submission for the given round
func (st *Store) PendingSubmissions(
	ctx context.Context, sessionID int64, roundNo int,
) (bool, error) {
	var pending bool
	err := st.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM player p
			LEFT JOIN submission s
				ON s.player_id = p.id AND s.round_no = $2
			WHERE p.session_id = $1 AND s.id IS NULL
		)`, sessionID, roundNo).Scan(&pending)
	return pending, err
}

// SubmittedWords loads all words for one round, grouped by player in
// a single sequential scan
func (st *Store) SubmittedWords(
	ctx context.Context, sessionID int64, roundNo int,
) ([]PlayerWords, error) {
	rows, err := st.db.Query(ctx, `
		SELECT w.id, w.submission_id, w.word,
		       w.score, w.duplicate, w.dictionary_valid, w.path_array,
		       p.id, p.name
		FROM word w
		JOIN submission s ON w.submission_id = s.id
		JOIN player p ON s.player_id = p.id
		WHERE p.session_id = $1 AND s.round_no = $2
		ORDER BY p.id, w.id`, sessionID, roundNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []PlayerWords
	for rows.Next() {
		var w Word
		var playerID int64
		var playerName string
		err := rows.Scan(
			&w.ID, &w.SubmissionID, &w.Word,
			&w.Score, &w.Duplicate, &w.DictionaryValid, &w.PathJSON,
			&playerID, &playerName,
		)
		if err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].PlayerID != playerID {
			groups = append(groups, PlayerWords{
				PlayerID: playerID,
				Name:     playerName,
			})
		}
		last := &groups[len(groups)-1]
		last.Words = append(last.Words, &w)
	}
	return groups, rows.Err()
}

// updateWordScores bulk-persists the scorer's results within tx
func updateWordScores(ctx context.Context, tx pgx.Tx, groups []PlayerWords) error {
	batch := &pgx.Batch{}
	for _, g := range groups {
		for _, w := range g.Words {
			batch.Queue(`
				UPDATE word
				SET score = $2, duplicate = $3,
				    dictionary_valid = $4, path_array = $5
				WHERE id = $1`,
				w.ID, w.Score, w.Duplicate, w.DictionaryValid, w.PathJSON,
			)
		}
	}
	return tx.SendBatch(ctx, batch).Close()
}

// isUniqueViolation detects unique-constraint integrity errors
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation detects inserts against a vanished parent row
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
