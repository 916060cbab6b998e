// worker.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the scoring worker. Scoring runs outside the
// request path: a read that notices the round is over dispatches a
// job, and a pool of workers claims jobs under the session row lock.
// The claim protocol makes scoring idempotent no matter how many
// reads dispatch the same round: the first worker to take the lock
// flips round_scored to false, and everyone else backs off.

package boggle

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScoreJob asks for one round of one session to be scored. The seed
// travels with the job so the worker regenerates the exact board the
// players saw.
type ScoreJob struct {
	SessionID  int64
	RoundNo    int
	Seed       []byte
	DiceConfig string
}

// Dispatcher hands scoring jobs to whatever executes them
type Dispatcher interface {
	Dispatch(ctx context.Context, job ScoreJob)
}

// WorkerPool runs scoring jobs on a fixed set of goroutines fed by
// a buffered channel
type WorkerPool struct {
	store *Store
	dice  *DiceRegistry
	dicts *DictionaryCache
	log   *zap.Logger
	jobs  chan ScoreJob
}

// NewWorkerPool wires a pool; Run starts the workers
func NewWorkerPool(
	store *Store,
	dice *DiceRegistry,
	dicts *DictionaryCache,
	log *zap.Logger,
	queueSize int,
) *WorkerPool {
	return &WorkerPool{
		store: store,
		dice:  dice,
		dicts: dicts,
		log:   log,
		jobs:  make(chan ScoreJob, queueSize),
	}
}

// Dispatch queues a job without blocking the caller. When the queue
// is full the job is dropped: round_scored is still unset, so the
// next read of the session will dispatch again.
func (p *WorkerPool) Dispatch(ctx context.Context, job ScoreJob) {
	select {
	case p.jobs <- job:
	default:
		p.log.Warn("scoring queue full, dropping job",
			zap.Int64("session", job.SessionID),
			zap.Int("round", job.RoundNo))
	}
}

// Run operates the pool until the context is cancelled
func (p *WorkerPool) Run(ctx context.Context, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case job := <-p.jobs:
					if err := p.ScoreRound(ctx, job); err != nil {
						p.log.Error("scoring failed",
							zap.Int64("session", job.SessionID),
							zap.Int("round", job.RoundNo),
							zap.Error(err))
					}
				}
			}
		})
	}
	return g.Wait()
}

// SyncDispatcher runs jobs inline on Dispatch. Used when async
// scoring is disabled, mainly in tests.
type SyncDispatcher struct {
	Pool *WorkerPool
}

// Dispatch scores the round before returning
func (d SyncDispatcher) Dispatch(ctx context.Context, job ScoreJob) {
	if err := d.Pool.ScoreRound(ctx, job); err != nil {
		d.Pool.log.Error("scoring failed",
			zap.Int64("session", job.SessionID),
			zap.Int("round", job.RoundNo),
			zap.Error(err))
	}
}

// ScoreRound executes one scoring job. Known deficiency: if the
// process dies between claiming the round (round_scored = false) and
// committing the results, the session stays in SCORING until the
// next round advance; there is no watchdog reclaiming stale claims.
func (p *WorkerPool) ScoreRound(ctx context.Context, job ScoreJob) error {
	sess, claimed, err := p.claimRound(ctx, job.SessionID)
	if err != nil {
		return err
	}
	if !claimed {
		p.log.Debug("scoring already underway or finished",
			zap.Int64("session", job.SessionID),
			zap.Int("round", job.RoundNo))
		return nil
	}

	groups, err := p.store.SubmittedWords(ctx, job.SessionID, job.RoundNo)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		// nothing to score; mark the round done right away
		return p.finishRound(ctx, job.SessionID, nil)
	}

	dice, ok := p.dice.Get(job.DiceConfig)
	if !ok {
		return fmt.Errorf("unknown dice config %q", job.DiceConfig)
	}
	board, err := Roll(job.Seed, dice, 0, 0)
	if err != nil {
		return err
	}

	var dict Dictionary
	if sess.Dictionary != nil {
		dict, err = p.dicts.Get(*sess.Dictionary)
		if err != nil {
			// proceed without gating rather than stall the round
			p.log.Warn("dictionary load failed, scoring without it",
				zap.String("dictionary", *sess.Dictionary),
				zap.Error(err))
			dict = nil
		}
	}

	ScorePlayers(groups, board, dict, StandardScoring)

	if err := p.finishRound(ctx, job.SessionID, groups); err != nil {
		return err
	}
	p.log.Info("scored round",
		zap.Int64("session", job.SessionID),
		zap.Int("round", job.RoundNo))
	return nil
}

// claimRound takes the row lock and flips round_scored to false.
// claimed is false when another worker already claimed the round,
// when it is already scored, or when the session is gone.
func (p *WorkerPool) claimRound(
	ctx context.Context, sessionID int64,
) (*Session, bool, error) {
	tx, err := p.store.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	sess, err := sessionForUpdate(ctx, tx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if sess == nil || sess.RoundScored != nil {
		// relinquish the lock either way
		return nil, false, tx.Commit(ctx)
	}
	_, err = tx.Exec(ctx,
		"UPDATE boggle_session SET round_scored = FALSE WHERE id = $1",
		sessionID)
	if err != nil {
		return nil, false, err
	}
	// committing publishes the in-progress state and releases the
	// lock while the actual scoring runs
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// finishRound reacquires the lock, persists the scored words (if
// any) and marks the round scored. A session destroyed mid-scoring
// is not an error; the results simply have nowhere to go.
func (p *WorkerPool) finishRound(
	ctx context.Context, sessionID int64, groups []PlayerWords,
) error {
	tx, err := p.store.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sess, err := sessionForUpdate(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		p.log.Info("session destroyed mid-scoring",
			zap.Int64("session", sessionID))
		return nil
	}
	if groups != nil {
		if err := updateWordScores(ctx, tx, groups); err != nil {
			return err
		}
	}
	_, err = tx.Exec(ctx,
		"UPDATE boggle_session SET round_scored = TRUE WHERE id = $1",
		sessionID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
