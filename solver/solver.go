package solver

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/gamesolver/game"
)

// ErrParallelRequiresHasher is returned by New when WithParallelism is
// combined with a table backend that has no Hasher: the concurrent table
// always needs a uint64 key and cannot be built from bare equality.
var ErrParallelRequiresHasher = errors.New("solver: WithParallelism requires WithHasher or WithFastHash")

type config[T comparable, M any] struct {
	hasher        Hasher[T]
	workers       int
	cacheFraction float64
}

// Option configures a Solver at construction time.
type Option[T comparable, M any] func(*config[T, M])

// WithHasher selects a Hasher-backed transposition table instead of the
// default plain map keyed by the state's own equality. Required before
// WithParallelism can be used.
func WithHasher[T comparable, M any](h Hasher[T]) Option[T, M] {
	return func(c *config[T, M]) {
		c.hasher = h
	}
}

// WithFastHash is WithHasher specialized to states that implement Keyer,
// hashing their canonical encoding with XXHash.
func WithFastHash[T interface {
	comparable
	Keyer
}, M any]() Option[T, M] {
	return func(c *config[T, M]) {
		c.hasher = XXHash[T]
	}
}

// WithParallelism shards root-move exploration across workers goroutines,
// each consulting a shared concurrent transposition table. It requires a
// Hasher to already be configured (WithHasher or WithFastHash).
func WithParallelism[T comparable, M any](workers int) Option[T, M] {
	return func(c *config[T, M]) {
		c.workers = workers
	}
}

// WithCacheFraction overrides the share of system memory the concurrent
// table (used when parallel) is allowed to claim. Ignored in serial mode.
func WithCacheFraction[T comparable, M any](fraction float64) Option[T, M] {
	return func(c *config[T, M]) {
		c.cacheFraction = fraction
	}
}

// Solver analyzes games of a single concrete type T (with move type M),
// caching transposition-table entries across calls to Solve, MoveScores,
// and ParallelMoveScores until Clear is called.
type Solver[T game.Game[T, M], M any] struct {
	cfg config[T, M]
	tt  Table[T]
}

// New constructs a Solver from the given options. It fails when the
// options request parallelism without a hasher, or when the concurrent
// table cannot be created.
func New[T game.Game[T, M], M any](opts ...Option[T, M]) (*Solver[T, M], error) {
	var cfg config[T, M]
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers > 0 && cfg.hasher == nil {
		return nil, ErrParallelRequiresHasher
	}

	s := &Solver[T, M]{cfg: cfg}
	tt, err := s.newTable()
	if err != nil {
		return nil, err
	}
	s.tt = tt
	return s, nil
}

func (s *Solver[T, M]) newTable() (Table[T], error) {
	if s.cfg.workers > 0 {
		return newConcurrentTable[T](s.cfg.hasher, s.cfg.cacheFraction)
	}
	if s.cfg.hasher != nil {
		return newHashedTable[T](s.cfg.hasher), nil
	}
	return newHashMapTable[T](), nil
}

// Clear discards every cached transposition-table entry, freeing memory
// and forcing the next call to recompute everything from scratch. Safe
// to call between unrelated games played against the same Solver.
func (s *Solver[T, M]) Clear() error {
	if c, ok := s.tt.(*concurrentTable[T]); ok {
		c.Close()
	}
	tt, err := s.newTable()
	if err != nil {
		return err
	}
	s.tt = tt
	return nil
}

// Solve returns the game-theoretic value of g from the perspective of the
// player to move: positive means that player forces a win, negative means
// the opponent does, zero means best play draws.
func (s *Solver[T, M]) Solve(g T) (int, error) {
	return converge[T, M](g.Clone(), s.tt)
}

// MoveScore pairs a legal move with the value the position has after it
// is played, from the mover's perspective before the move (so a higher
// score is always better for whoever is choosing among these moves).
type MoveScore[M any] struct {
	Move  M
	Score int
}

// MoveScores evaluates every legal move from g serially and returns one
// MoveScore per move, in the order PossibleMoves yielded them.
func (s *Solver[T, M]) MoveScores(g T) ([]MoveScore[M], error) {
	g = g.Clone()
	horizon := horizonFor[T, M](g)
	var scores []MoveScore[M]
	for m := range g.PossibleMoves() {
		if g.IsWinningMove(m) {
			scores = append(scores, MoveScore[M]{Move: m, Score: horizon - g.MoveCount()})
			continue
		}
		child, err := g.MakeMove(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
		}
		v, err := converge[T, M](child, s.tt)
		if err != nil {
			return nil, err
		}
		scores = append(scores, MoveScore[M]{Move: m, Score: -v})
	}
	return scores, nil
}

// ParallelMoveScores is MoveScores with each root move explored by its own
// goroutine against the shared concurrent table. It requires the Solver
// to have been constructed with WithParallelism; the returned slice's
// order is not guaranteed to match PossibleMoves.
func (s *Solver[T, M]) ParallelMoveScores(g T) ([]MoveScore[M], error) {
	if s.cfg.workers == 0 {
		return nil, errors.New("solver: ParallelMoveScores requires WithParallelism")
	}

	g = g.Clone()
	horizon := horizonFor[T, M](g)
	var moves []M
	for m := range g.PossibleMoves() {
		moves = append(moves, m)
	}

	results := make([]MoveScore[M], len(moves))
	eg := errgroup.Group{}
	eg.SetLimit(s.cfg.workers)

	for i, m := range moves {
		i, m := i, m
		if g.IsWinningMove(m) {
			results[i] = MoveScore[M]{Move: m, Score: horizon - g.MoveCount()}
			continue
		}
		eg.Go(func() error {
			child, err := g.MakeMove(m)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrIllegalMove, err)
			}
			v, err := converge[T, M](child, s.tt)
			if err != nil {
				return err
			}
			results[i] = MoveScore[M]{Move: m, Score: -v}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Int("moves", len(moves)).Int("workers", s.cfg.workers).Msg("parallel-move-scores-done")
	return results, nil
}

// BestMoves filters scores down to the subset sharing the maximum score,
// the set of equally-best moves at the root.
func BestMoves[M any](scores []MoveScore[M]) []MoveScore[M] {
	if len(scores) == 0 {
		return nil
	}
	best := lo.MaxBy(scores, func(a, b MoveScore[M]) bool {
		return a.Score > b.Score
	})
	return lo.Filter(scores, func(s MoveScore[M], _ int) bool {
		return s.Score == best.Score
	})
}
