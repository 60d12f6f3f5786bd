package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

var ErrInputClosed = errors.New("input closed before the game ended")

// Run - plays a hot-seat game: both players type "row column" on the same input.
func Run(in io.Reader, out io.Writer) (tictactoe.Status, error) {
	players := [2]tictactoe.PlayerID{{1}, {2}}

	game := tictactoe.New()
	if err := game.Start(players); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(in)

	for game.IsActive() {
		current, err := game.CurrentPlayer()
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(out, "%s\n%s to play (row column): ", game.Board(), tictactoe.SignOf(game.Turn()))

		if !scanner.Scan() {
			if err = scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read move: %w", err)
			}
			return nil, ErrInputClosed
		}

		tile, err := parseTile(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}

		if err = game.Play(tile, current); err != nil {
			fmt.Fprintf(out, "%v\n", err)
		}
	}

	fmt.Fprintf(out, "%s\n", game.Board())

	status := game.Status()
	if winner, ok := tictactoe.WinnerOf(status); ok {
		fmt.Fprintf(out, "player %d wins\n", winner[0])
	} else {
		fmt.Fprintln(out, "tie")
	}

	return status, nil
}

func parseTile(line string) (tictactoe.Tile, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return tictactoe.Tile{}, fmt.Errorf("expected two numbers, got %q", line)
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return tictactoe.Tile{}, fmt.Errorf("invalid row %q", fields[0])
	}

	column, err := strconv.Atoi(fields[1])
	if err != nil {
		return tictactoe.Tile{}, fmt.Errorf("invalid column %q", fields[1])
	}

	return tictactoe.Tile{Row: row, Column: column}, nil
}
