package entity

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/seabattle-backend/internal/apperror"
)

const (
	CellEmpty = "empty"
	CellShip  = "ship"
	CellHit   = "hit"
	CellMiss  = "miss"
)

// BoardSize - the grid is fixed at 10x10 for the life of a room.
const BoardSize = 10

// StandardFleet - ship lengths every player must place, 17 cells total.
var StandardFleet = []int{5, 4, 3, 3, 2}

// TotalShipCells - the score threshold for winning a battle.
const TotalShipCells = 17

type Cell struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Status string `json:"status"`
}

type Ship struct {
	Length int  `json:"length"`
	Placed bool `json:"placed"`
}

// NewFleet - the placement requirements for one player.
func NewFleet() []Ship {
	fleet := make([]Ship, len(StandardFleet))
	for i, length := range StandardFleet {
		fleet[i] = Ship{Length: length}
	}

	return fleet
}

// Board - a row-major 10x10 grid; Board[y][x] addresses a cell.
type Board [][]Cell

func NewEmptyBoard() Board {
	board := make(Board, BoardSize)
	for y := range board {
		board[y] = make([]Cell, BoardSize)
		for x := range board[y] {
			board[y][x] = Cell{X: x, Y: y, Status: CellEmpty}
		}
	}

	return board
}

func (that Board) InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// CanPlaceShip - reports whether a ship of the given length fits at
// (x, y) without leaving the grid or overlapping another ship.
func (that Board) CanPlaceShip(x, y, length int, vertical bool) bool {
	for i := 0; i < length; i++ {
		cx, cy := x, y
		if vertical {
			cy += i
		} else {
			cx += i
		}

		if !that.InBounds(cx, cy) {
			return false
		}

		if that[cy][cx].Status == CellShip {
			return false
		}
	}

	return true
}

// PlaceShip - marks the path cells as ship. Callers are expected to
// validate via CanPlaceShip first; the check is repeated here so a
// violated precondition fails instead of corrupting the grid.
func (that Board) PlaceShip(x, y, length int, vertical bool) error {
	if !that.CanPlaceShip(x, y, length, vertical) {
		return fmt.Errorf("%w: ship of length %d at (%d,%d)", apperror.ErrInvalidPlacement, length, x, y)
	}

	for i := 0; i < length; i++ {
		if vertical {
			that[y+i][x].Status = CellShip
		} else {
			that[y][x+i].Status = CellShip
		}
	}

	return nil
}

// ResolveAttack - applies an attack to the cell at (x, y) and reports
// whether it was a hit. Cells already hit or missed reject the attack:
// a repeat means a stale client or a replayed move, never a no-op.
func (that Board) ResolveAttack(x, y int) (bool, error) {
	if !that.InBounds(x, y) {
		return false, fmt.Errorf("%w: (%d,%d)", apperror.ErrOutOfBounds, x, y)
	}

	switch that[y][x].Status {
	case CellShip:
		that[y][x].Status = CellHit
		return true, nil
	case CellEmpty:
		that[y][x].Status = CellMiss
		return false, nil
	default:
		return false, fmt.Errorf("%w: (%d,%d)", apperror.ErrCellAlreadyAttacked, x, y)
	}
}

// ShipCellCount - number of cells still marked as ship.
func (that Board) ShipCellCount() int {
	count := 0
	for y := range that {
		for x := range that[y] {
			if that[y][x].Status == CellShip {
				count++
			}
		}
	}

	return count
}

// ValidateFleet - checks that the submitted board contains exactly the
// standard fleet: every ship cell belongs to a straight horizontal or
// vertical run, and the run lengths match {5,4,3,3,2}.
func (that Board) ValidateFleet() error {
	if len(that) != BoardSize {
		return fmt.Errorf("%w: board has %d rows", apperror.ErrIncompleteFleet, len(that))
	}

	for y := range that {
		if len(that[y]) != BoardSize {
			return fmt.Errorf("%w: row %d has %d cells", apperror.ErrIncompleteFleet, y, len(that[y]))
		}

		for x := range that[y] {
			if status := that[y][x].Status; status != CellEmpty && status != CellShip {
				return fmt.Errorf("%w: unexpected cell status %q at (%d,%d)", apperror.ErrIncompleteFleet, status, x, y)
			}
		}
	}

	// overlapping runs share cells and would still produce the right
	// segment multiset, so the cell total is checked separately
	if count := that.ShipCellCount(); count != TotalShipCells {
		return fmt.Errorf("%w: %d ship cells placed, want %d", apperror.ErrIncompleteFleet, count, TotalShipCells)
	}

	segments := that.shipSegments()
	sort.Ints(segments)

	fleet := NewFleet()
	if len(segments) != len(fleet) {
		return fmt.Errorf("%w: %d ships placed, want %d", apperror.ErrIncompleteFleet, len(segments), len(fleet))
	}

	// match each segment against an unplaced requirement of its length
	for _, length := range segments {
		matched := false
		for i := range fleet {
			if !fleet[i].Placed && fleet[i].Length == length {
				fleet[i].Placed = true
				matched = true
				break
			}
		}

		if !matched {
			return fmt.Errorf("%w: unexpected ship of length %d", apperror.ErrIncompleteFleet, length)
		}
	}

	return nil
}

// shipSegments - collects the lengths of maximal horizontal and
// vertical runs of ship cells. A lone cell belongs to no multi-cell
// run and counts as a length-1 segment.
func (that Board) shipSegments() []int {
	var segments []int

	isShip := func(x, y int) bool {
		return that.InBounds(x, y) && that[y][x].Status == CellShip
	}

	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if !isShip(x, y) {
				continue
			}

			// horizontal run start
			if !isShip(x-1, y) && isShip(x+1, y) {
				length := 0
				for cx := x; isShip(cx, y); cx++ {
					length++
				}
				segments = append(segments, length)
			}

			// vertical run start
			if !isShip(x, y-1) && isShip(x, y+1) {
				length := 0
				for cy := y; isShip(x, cy); cy++ {
					length++
				}
				segments = append(segments, length)
			}

			// isolated single cell
			if !isShip(x-1, y) && !isShip(x+1, y) && !isShip(x, y-1) && !isShip(x, y+1) {
				segments = append(segments, 1)
			}
		}
	}

	return segments
}

// Clone - deep copy, so broadcast payloads never alias live state.
func (that Board) Clone() Board {
	board := make(Board, len(that))
	for y := range that {
		board[y] = make([]Cell, len(that[y]))
		copy(board[y], that[y])
	}

	return board
}
