package solver

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hailam/gamesolver/game"
)

// nimState is multi-heap Nim: a move takes Amount objects (Amount >= 1)
// from heap Heap. Taking the last object in the last non-empty heap wins.
type nimMove struct {
	Heap, Amount int
}

type nimState struct {
	heaps     [4]int
	moveCount int
	maxMoves  int
}

func newNim(heaps ...int) nimState {
	var n nimState
	copy(n.heaps[:], heaps)
	for _, h := range n.heaps {
		n.maxMoves += h
	}
	return n
}

func (n nimState) MaxMoves() (int, bool) { return n.maxMoves, true }

func (n nimState) MoveCount() int { return n.moveCount }

func (n nimState) PlayerToMove() game.Player { return game.PlayerToMove(n.moveCount) }

func (n nimState) PossibleMoves() iter.Seq[nimMove] {
	return func(yield func(nimMove) bool) {
		for h, size := range n.heaps {
			for amt := 1; amt <= size; amt++ {
				if !yield(nimMove{Heap: h, Amount: amt}) {
					return
				}
			}
		}
	}
}

func (n nimState) IsWinningMove(m nimMove) bool {
	if n.heaps[m.Heap] != m.Amount {
		return false
	}
	for h, size := range n.heaps {
		if h != m.Heap && size != 0 {
			return false
		}
	}
	return true
}

func (n nimState) IsDraw() bool { return false }

var errIllegalNimMove = errors.New("nim: illegal move")

func (n nimState) MakeMove(m nimMove) (nimState, error) {
	if m.Heap < 0 || m.Heap >= len(n.heaps) || m.Amount < 1 || m.Amount > n.heaps[m.Heap] {
		return nimState{}, fmt.Errorf("%w: %+v", errIllegalNimMove, m)
	}
	next := n
	next.heaps[m.Heap] -= m.Amount
	next.moveCount++
	return next, nil
}

func (n nimState) Clone() nimState { return n }

// Key gives nimState a canonical byte encoding so it can be used with
// XXHash, exercising the Hasher/Keyer path alongside the default table.
func (n nimState) Key() []byte {
	key := make([]byte, 0, len(n.heaps)*4+4)
	for _, h := range n.heaps {
		key = append(key, byte(h>>24), byte(h>>16), byte(h>>8), byte(h))
	}
	mc := n.moveCount
	key = append(key, byte(mc>>24), byte(mc>>16), byte(mc>>8), byte(mc))
	return key
}
