package tictactoe

// Line - three tiles that win when they hold the same sign.
type Line [3]Tile

// Lines - rows top to bottom, columns left to right, then both diagonals.
var Lines = [8]Line{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// WinningLine - first line in Lines order fully occupied by one sign.
func WinningLine(board Board) (Line, bool) {
	for _, line := range Lines {
		if isWinningTrio(board, line) {
			return line, true
		}
	}

	return Line{}, false
}

func isWinningTrio(board Board, line Line) bool {
	first := board.cell(line[0])

	return !first.IsEmpty() &&
		first == board.cell(line[1]) &&
		first == board.cell(line[2])
}

// Evaluate - status of the board right after mover placed a sign.
// A completed line is always credited to the mover.
func Evaluate(board Board, mover PlayerID) Status {
	if _, ok := WinningLine(board); ok {
		return Won{Winner: mover}
	}

	// the game goes on while any tile is free
	if !board.IsFull() {
		return Active{}
	}

	return Tie{}
}
