// state.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the read path: projecting the stored session
// row and the wall clock into the client-visible status and payload.
// Reads take no lock; when a read notices that the round is over it
// opportunistically dispatches a scoring job and relies on the
// worker's own locked idempotency check to resolve races.

package boggle

import (
	"context"
	"time"
)

// Status is the client-visible session state
type Status int

const (
	// StatusInitial: waiting for the first round announcement
	StatusInitial Status = iota
	// StatusPreStart: round armed, countdown running
	StatusPreStart
	// StatusPlaying: round is ongoing
	StatusPlaying
	// StatusScoring: waiting for stragglers or for the scorer
	StatusScoring
	// StatusScored: scores are in
	StatusScored
)

// timestampFormat is the wire format for timestamps, always UTC
const timestampFormat = "2006-01-02 15:04:05"

func formatTS(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// BoardJSON is the board payload
type BoardJSON struct {
	Rows int        `json:"rows"`
	Cols int        `json:"cols"`
	Dice [][]string `json:"dice"`
}

// StateResponse is the payload of every state read. Fields beyond
// the status are filled in as the session progresses.
type StateResponse struct {
	Created    string            `json:"created"`
	Players    []PlayerJSON      `json:"players"`
	Status     Status            `json:"status"`
	RoundNo    *int              `json:"round_no,omitempty"`
	RoundStart *string           `json:"round_start,omitempty"`
	RoundEnd   *string           `json:"round_end,omitempty"`
	Board      *BoardJSON        `json:"board,omitempty"`
	Scores     []PlayerScoreJSON `json:"scores,omitempty"`
}

// roundSeed returns the board seed for the session's current round
func (srv *Server) roundSeed(roundNo int, pepper string) []byte {
	if srv.cfg.TestingSeed != nil {
		return srv.cfg.TestingSeed
	}
	return RoundSeed(roundNo, pepper, srv.vault.ServerKey())
}

// sessionState builds the state projection for one session
func (srv *Server) sessionState(
	ctx context.Context, sessionID int64, pepper string,
) (*StateResponse, error) {
	sess, err := srv.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errSessionGone
	}

	players, err := srv.store.ListPlayers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := &StateResponse{
		Created: formatTS(sess.Created),
		Players: make([]PlayerJSON, len(players)),
	}
	for i, p := range players {
		resp.Players[i] = PlayerJSON{PlayerID: p.ID, Name: p.Name}
	}

	if sess.RoundStart == nil {
		resp.Status = StatusInitial
		return resp, nil
	}

	roundNo := sess.RoundNo
	seed := srv.roundSeed(roundNo, pepper)
	roundStart := *sess.RoundStart
	roundEnd := *sess.RoundEnd()
	now := time.Now().UTC()

	startStr, endStr := formatTS(roundStart), formatTS(roundEnd)
	resp.RoundNo = &roundNo
	resp.RoundStart = &startStr
	resp.RoundEnd = &endStr

	if now.Before(roundStart) {
		resp.Status = StatusPreStart
		return resp, nil
	}

	dice, ok := srv.dice.Get(sess.DiceConfig)
	if !ok {
		return nil, apiErr(404, "The dice config %s is not available",
			sess.DiceConfig)
	}
	board, err := Roll(seed, dice, 0, 0)
	if err != nil {
		return nil, err
	}
	resp.Board = &BoardJSON{
		Rows: board.Rows,
		Cols: board.Cols,
		Dice: board.Cells,
	}

	pending, err := srv.store.PendingSubmissions(ctx, sessionID, roundNo)
	if err != nil {
		return nil, err
	}
	allSubmitted := !pending

	if now.Before(roundEnd) && !allSubmitted {
		resp.Status = StatusPlaying
		return resp, nil
	}

	graceOver := now.After(roundEnd.Add(srv.cfg.GracePeriod))
	if (allSubmitted || graceOver) && sess.RoundScored == nil {
		srv.dispatcher.Dispatch(ctx, ScoreJob{
			SessionID:  sessionID,
			RoundNo:    roundNo,
			Seed:       seed,
			DiceConfig: sess.DiceConfig,
		})
		// a synchronous dispatcher may have scored by now
		sess, err = srv.store.GetSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, errSessionGone
		}
	}

	if sess.RoundScored != nil && *sess.RoundScored {
		groups, err := srv.store.SubmittedWords(ctx, sessionID, roundNo)
		if err != nil {
			return nil, err
		}
		resp.Status = StatusScored
		resp.Scores = EffectiveScores(groups, sess.UseMildScoring)
		return resp, nil
	}

	// either the scoring computation is running, or not everyone
	// has submitted yet and the grace period is still in effect
	resp.Status = StatusScoring
	return resp, nil
}
