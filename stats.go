// stats.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the aggregate statistics read. Old rounds'
// word rows stay around until the session is destroyed, so totals
// can be computed across every scored round by replaying the same
// effective-score projection the play view uses.

package boggle

import "context"

// PlayerStatsJSON is one player's aggregate line
type PlayerStatsJSON struct {
	Player        PlayerJSON `json:"player"`
	RoundsPlayed  int        `json:"rounds_played"`
	TotalScore    int        `json:"total_score"`
	BestWord      string     `json:"best_word,omitempty"`
	BestWordScore int        `json:"best_word_score"`
}

// StatsResponse is the statistics payload
type StatsResponse struct {
	RoundsScored int               `json:"rounds_scored"`
	Players      []PlayerStatsJSON `json:"players"`
}

// SubmittedRounds lists the rounds of a session that have at least
// one submission, in ascending order
func (st *Store) SubmittedRounds(
	ctx context.Context, sessionID int64,
) ([]int, error) {
	rows, err := st.db.Query(ctx, `
		SELECT DISTINCT s.round_no
		FROM submission s
		JOIN player p ON s.player_id = p.id
		WHERE p.session_id = $1
		ORDER BY s.round_no`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

// sessionStats aggregates effective scores over all scored rounds
func (srv *Server) sessionStats(
	ctx context.Context, sessionID int64,
) (*StatsResponse, error) {
	sess, err := srv.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errSessionGone
	}

	rounds, err := srv.store.SubmittedRounds(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := &StatsResponse{Players: []PlayerStatsJSON{}}
	index := make(map[int64]int)

	for _, roundNo := range rounds {
		groups, err := srv.store.SubmittedWords(ctx, sessionID, roundNo)
		if err != nil {
			return nil, err
		}
		// only rounds the worker has finished count
		scored := make([]PlayerWords, 0, len(groups))
		for _, g := range groups {
			if len(g.Words) > 0 && g.Words[0].Score != nil {
				scored = append(scored, g)
			}
		}
		if len(scored) == 0 {
			continue
		}
		resp.RoundsScored++

		for _, ps := range EffectiveScores(scored, sess.UseMildScoring) {
			i, ok := index[ps.Player.PlayerID]
			if !ok {
				i = len(resp.Players)
				index[ps.Player.PlayerID] = i
				resp.Players = append(resp.Players, PlayerStatsJSON{
					Player: ps.Player,
				})
			}
			line := &resp.Players[i]
			line.RoundsPlayed++
			for _, w := range ps.Words {
				line.TotalScore += w.Score
				if w.Score > line.BestWordScore {
					line.BestWord = w.Word
					line.BestWordScore = w.Score
				}
			}
		}
	}
	return resp, nil
}
