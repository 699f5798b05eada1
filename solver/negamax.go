package solver

import (
	"fmt"
	"math"

	"github.com/hailam/gamesolver/game"
)

// DefaultHorizon is the sentinel used in place of MAX = maxMoves+1 when
// a game reports no MaxMoves bound. Scores built from it still carry the
// correct sign, but lose the "prefer a faster win" ordering once a game
// plays out longer than this many moves — games that can run arbitrarily
// long should implement MaxMoves rather than rely on this.
const DefaultHorizon = math.MaxInt32 / 2

// ErrIllegalMove is wrapped around a MakeMove failure encountered while
// the solver was applying a move it obtained from PossibleMoves. This is a programmer-contract violation in the caller's
// Game implementation, not a recoverable condition; it aborts the whole
// Solve/MoveScores/ParallelMoveScores call.
var ErrIllegalMove = fmt.Errorf("gamesolver: illegal move applied during search")

func horizonFor[T game.Game[T, M], M any](g T) int {
	if limit, ok := g.MaxMoves(); ok {
		return limit + 1
	}
	return DefaultHorizon
}

// negamax is the recursive alpha-beta/PVS search core. It returns the
// state's negamax value from the perspective of the player to move. A
// result at or beyond either edge of [alpha, beta] is only a bound on
// that value and may lie outside the window (fail-soft).
func negamax[T game.Game[T, M], M any](g T, alpha, beta int, tt Table[T], horizon int) (int, error) {
	if g.IsDraw() {
		return 0, nil
	}

	moveCount := g.MoveCount()

	// Immediate-win shortcut: avoid expanding children when a winning
	// move is sitting right there.
	for m := range g.PossibleMoves() {
		if g.IsWinningMove(m) {
			return horizon - moveCount, nil
		}
	}

	if entry, ok := tt.Probe(g); ok {
		switch entry.Bound {
		case UpperBound:
			if beta > entry.Value {
				beta = entry.Value
				if alpha >= beta {
					return beta, nil
				}
			}
		case LowerBound:
			if alpha < entry.Value {
				alpha = entry.Value
				if alpha >= beta {
					return alpha, nil
				}
			}
		}
	}

	// No child can score higher than "a win starting right now" would;
	// tighten beta against that theoretical ceiling.
	if ceiling := horizon - moveCount - 1; beta > ceiling {
		beta = ceiling
		if alpha >= beta {
			return beta, nil
		}
	}

	first := true
	for m := range g.PossibleMoves() {
		child, err := g.MakeMove(m)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrIllegalMove, err)
		}

		var v int
		if first {
			v, err = negamax[T, M](child, -beta, -alpha, tt, horizon)
			v = -v
			first = false
		} else {
			// Principal Variation Search: a cheap null-window probe
			// first, re-searched with the full window only if it
			// suggests this move beats alpha.
			v, err = negamax[T, M](child, -alpha-1, -alpha, tt, horizon)
			v = -v
			if err == nil && alpha < v && v < beta {
				v, err = negamax[T, M](child, -beta, -v, tt, horizon)
				v = -v
			}
		}
		if err != nil {
			return 0, err
		}

		if v > alpha {
			alpha = v
		}
		if alpha >= beta {
			tt.Store(g, Entry{Bound: LowerBound, Value: alpha})
			return alpha, nil
		}
	}

	tt.Store(g, Entry{Bound: UpperBound, Value: alpha})
	return alpha, nil
}

// converge is the iterative-deepening driver: it narrows a closed [lo, hi]
// bracket around the state's true value using a sequence of null-window
// negamax probes, reusing the same transposition table across probes so
// each one benefits from the last.
func converge[T game.Game[T, M], M any](g T, tt Table[T]) (int, error) {
	horizon := horizonFor[T, M](g)
	lo, hi := -horizon, horizon

	for lo < hi {
		mid := lo + (hi-lo)/2
		midLower, midUpper := mid, mid+1

		r, err := negamax[T, M](g, midLower, midUpper, tt, horizon)
		if err != nil {
			return 0, err
		}

		if r <= midLower {
			hi = r
		} else {
			lo = r
		}
	}

	return lo, nil
}
