package tictactoe

import (
	"errors"
	"fmt"
)

// EncodedSize - length of the binary form of a Game:
// players (2 * 32), turn (1), board (9), status tag (1), winner (32).
const EncodedSize = 2*playerIDSize + 1 + boardSize*boardSize + 1 + playerIDSize

var ErrCorruptGame = errors.New("corrupt game encoding")

const (
	tagActive byte = iota
	tagTie
	tagWon
)

const (
	cellEmpty byte = iota
	cellX
	cellO
)

// MarshalBinary - fixed-size encoding of every field of the game.
func (that *Game) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, EncodedSize)

	for _, player := range that.players {
		buf = append(buf, player[:]...)
	}

	buf = append(buf, that.turn)

	for _, row := range that.board {
		for _, cell := range row {
			buf = append(buf, encodeCell(cell))
		}
	}

	var winner PlayerID

	switch status := that.Status().(type) {
	case Active:
		buf = append(buf, tagActive)
	case Tie:
		buf = append(buf, tagTie)
	case Won:
		buf = append(buf, tagWon)
		winner = status.Winner
	}

	buf = append(buf, winner[:]...)

	return buf, nil
}

// UnmarshalBinary - decodes the MarshalBinary form, rejecting states the engine cannot produce.
func (that *Game) UnmarshalBinary(data []byte) error {
	if len(data) != EncodedSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrCorruptGame, EncodedSize, len(data))
	}

	var decoded Game

	offset := 0
	for i := range decoded.players {
		offset += copy(decoded.players[i][:], data[offset:])
	}

	decoded.turn = data[offset]
	offset++

	for row := range decoded.board {
		for column := range decoded.board[row] {
			cell, err := decodeCell(data[offset])
			if err != nil {
				return err
			}
			decoded.board[row][column] = cell
			offset++
		}
	}

	tag := data[offset]
	offset++

	var winner PlayerID
	copy(winner[:], data[offset:])

	switch tag {
	case tagActive:
		decoded.status = Active{}
	case tagTie:
		decoded.status = Tie{}
	case tagWon:
		decoded.status = Won{Winner: winner}
	default:
		return fmt.Errorf("%w: unknown status tag %d", ErrCorruptGame, tag)
	}

	if tag != tagWon && !winner.IsZero() {
		return fmt.Errorf("%w: winner set on %s game", ErrCorruptGame, decoded.status)
	}

	if decoded.turn == 0 && decoded.board != (Board{}) {
		return fmt.Errorf("%w: moves on an unstarted game", ErrCorruptGame)
	}

	*that = decoded

	return nil
}

func encodeCell(cell Cell) byte {
	sign, ok := cell.Sign()
	if !ok {
		return cellEmpty
	}

	if sign == X {
		return cellX
	}

	return cellO
}

func decodeCell(b byte) (Cell, error) {
	switch b {
	case cellEmpty:
		return Cell{}, nil
	case cellX:
		return Marked(X), nil
	case cellO:
		return Marked(O), nil
	default:
		return Cell{}, fmt.Errorf("%w: unknown cell value %d", ErrCorruptGame, b)
	}
}
