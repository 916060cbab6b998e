// session.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the session state machine transitions. Every
// transition reads and writes the session row inside one transaction
// holding an exclusive row lock, so concurrent advances, submits and
// worker claims serialise on that lock. Precondition failures come
// back as APIErrors carrying the HTTP status from the error table.

package boggle

import (
	"context"
	"time"
)

// AdvanceRound starts the next round: resets the scoring flag, arms
// the round start at now+countdown and increments the round number.
// Rejected while a scoring computation is running, and on sessions
// without players.
func (st *Store) AdvanceRound(
	ctx context.Context, sessionID int64, countdown time.Duration,
) (roundNo int, roundStart time.Time, err error) {
	tx, err := st.db.Begin(ctx)
	if err != nil {
		return 0, time.Time{}, err
	}
	defer tx.Rollback(ctx)

	sess, err := sessionForUpdate(ctx, tx, sessionID)
	if err != nil {
		return 0, time.Time{}, err
	}
	if sess == nil {
		return 0, time.Time{}, errSessionGone
	}

	var hasPlayers bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM player WHERE session_id = $1)",
		sessionID).Scan(&hasPlayers)
	if err != nil {
		return 0, time.Time{}, err
	}
	if !hasPlayers {
		return 0, time.Time{}, apiErr(409, "Cannot advance round without players")
	}
	// round_scored being unset is not an issue; only an actual
	// in-progress computation blocks the advance
	if sess.RoundScored != nil && !*sess.RoundScored {
		return 0, time.Time{}, apiErr(409, "Round cannot be advanced mid-scoring")
	}

	roundStart = time.Now().UTC().Add(countdown)
	err = tx.QueryRow(ctx, `
		UPDATE boggle_session
		SET round_scored = NULL, round_start = $2, round_no = round_no + 1
		WHERE id = $1
		RETURNING round_no`,
		sessionID, roundStart).Scan(&roundNo)
	if err != nil {
		return 0, time.Time{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, time.Time{}, err
	}
	return roundNo, roundStart, nil
}

// JoinSession admits a new player. Joining is allowed in any state,
// including mid-round. The foreign key is the existence check: a
// separate lookup would leave a window in which the session can be
// destroyed before the insert lands.
func (st *Store) JoinSession(
	ctx context.Context, sessionID int64, name string,
) (*Player, error) {
	p := Player{SessionID: sessionID, Name: TruncateName(name)}
	err := st.db.QueryRow(ctx, `
		INSERT INTO player (session_id, name)
		VALUES ($1, $2) RETURNING id`,
		p.SessionID, p.Name).Scan(&p.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, errSessionGone
		}
		return nil, err
	}
	return &p, nil
}

// SubmitWords records one player's word list for the round. The
// player's own duplicates collapse silently on the equality form;
// a second submission in the same round trips the unique constraint
// and is rejected.
func (st *Store) SubmitWords(
	ctx context.Context,
	sessionID, playerID int64,
	roundNo int,
	words []string,
	grace time.Duration,
) error {
	tx, err := st.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sess, err := sessionForUpdate(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return errSessionGone
	}

	var playerExists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM player WHERE id = $1 AND session_id = $2)",
		playerID, sessionID).Scan(&playerExists)
	if err != nil {
		return err
	}
	if !playerExists {
		return errPlayerGone
	}

	if sess.RoundStart == nil {
		return apiErr(409, "Round not started")
	}
	deadline := sess.RoundEnd().Add(grace)
	if sess.RoundScored != nil || time.Now().UTC().After(deadline) {
		return apiErr(409, "Round already ended")
	}
	if roundNo != sess.RoundNo {
		return apiErr(409, "Wrong round %d, currently round %d",
			roundNo, sess.RoundNo)
	}

	var submissionID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO submission (player_id, round_no)
		VALUES ($1, $2) RETURNING id`,
		playerID, roundNo).Scan(&submissionID)
	if err != nil {
		if isUniqueViolation(err) {
			// due to row locking, a session kill cannot have
			// occurred in the meantime; this is a double submit
			return apiErr(409, "You can only submit once")
		}
		return err
	}

	seen := make(map[string]struct{})
	for _, raw := range words {
		bw := NewBoggleWord(raw)
		if bw.Display == "" || len(bw.Display) > MaxWordLength {
			continue
		}
		if _, dup := seen[bw.Key]; dup {
			continue
		}
		seen[bw.Key] = struct{}{}
		_, err := tx.Exec(ctx,
			"INSERT INTO word (submission_id, word) VALUES ($1, $2)",
			submissionID, bw.Display)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// LeavePlayer removes a player from the session. Not allowed while
// scores for the current round are being computed.
func (st *Store) LeavePlayer(ctx context.Context, sessionID, playerID int64) error {
	tx, err := st.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sess, err := sessionForUpdate(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return errSessionGone
	}
	if sess.RoundScored != nil && !*sess.RoundScored {
		return apiErr(409, "Cannot leave mid-scoring")
	}
	_, err = tx.Exec(ctx,
		"DELETE FROM player WHERE id = $1 AND session_id = $2",
		playerID, sessionID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ApproveWords marks the given words (display form) of the current
// round as dictionary-valid, overriding the scorer's verdict.
// Idempotent on words that are already valid.
func (st *Store) ApproveWords(
	ctx context.Context, sessionID int64, words []string,
) (roundNo int, err error) {
	tx, err := st.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	sess, err := sessionForUpdate(ctx, tx, sessionID)
	if err != nil {
		return 0, err
	}
	if sess == nil {
		return 0, errSessionGone
	}
	if sess.RoundScored == nil || !*sess.RoundScored {
		return 0, apiErr(409, "No scored round to approve words for")
	}

	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		if c := CleanWord(w); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return 0, apiErr(400, "No words to approve")
	}

	_, err = tx.Exec(ctx, `
		UPDATE word SET dictionary_valid = TRUE
		FROM submission s, player p
		WHERE word.submission_id = s.id
		  AND s.player_id = p.id
		  AND p.session_id = $1
		  AND s.round_no = $2
		  AND word.word = ANY($3)`,
		sessionID, sess.RoundNo, cleaned)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return sess.RoundNo, nil
}
