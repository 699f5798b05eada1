package solver

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hailam/gamesolver/game"
)

// chompState is 2-row Chomp. The board is a staircase shape recorded as
// each row's remaining width; eating (row, col) removes that cell,
// every cell to its right in the same row, and the same columns in
// every row below. Cell (0, 0) is poisoned: a player who runs out of any
// other choice and is left facing only the poison square has lost, so it
// is never offered as a move — reaching that state is equivalent to
// having no legal moves at all.
type chompMove struct {
	Row, Col int
}

type chompState struct {
	rowLen    [2]int
	moveCount int
	maxMoves  int
}

func newChomp(rowLen [2]int) chompState {
	remaining := rowLen[0] + rowLen[1]
	maxMoves := 0
	if remaining > 0 {
		maxMoves = remaining - 1
	}
	return chompState{rowLen: rowLen, maxMoves: maxMoves}
}

func (c chompState) apply(m chompMove) [2]int {
	next := c.rowLen
	for r := m.Row; r < len(next); r++ {
		if next[r] > m.Col {
			next[r] = m.Col
		}
	}
	return next
}

func (c chompState) MaxMoves() (int, bool) { return c.maxMoves, true }

func (c chompState) MoveCount() int { return c.moveCount }

func (c chompState) PlayerToMove() game.Player { return game.PlayerToMove(c.moveCount) }

func (c chompState) PossibleMoves() iter.Seq[chompMove] {
	return func(yield func(chompMove) bool) {
		for r, n := range c.rowLen {
			for col := 0; col < n; col++ {
				if r == 0 && col == 0 {
					continue
				}
				if !yield(chompMove{Row: r, Col: col}) {
					return
				}
			}
		}
	}
}

func (c chompState) IsWinningMove(m chompMove) bool {
	next := c.apply(m)
	return next[0]+next[1] == 1
}

func (c chompState) IsDraw() bool { return false }

var errIllegalChompMove = errors.New("chomp: illegal move")

func (c chompState) MakeMove(m chompMove) (chompState, error) {
	if m.Row < 0 || m.Row >= len(c.rowLen) || m.Col < 0 || m.Col >= c.rowLen[m.Row] || (m.Row == 0 && m.Col == 0) {
		return chompState{}, fmt.Errorf("%w: %+v", errIllegalChompMove, m)
	}
	next := c
	next.rowLen = c.apply(m)
	next.moveCount++
	return next, nil
}

func (c chompState) Clone() chompState { return c }
