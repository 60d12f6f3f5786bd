package tictactoe

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	boardSize    = 3
	playerIDSize = 32
)

var ErrInvalidPlayerID = errors.New("invalid player id")

// PlayerID - opaque identity of a player. The engine only compares it.
type PlayerID [playerIDSize]byte

// NewPlayerID - generates a random player identity.
func NewPlayerID() (PlayerID, error) {
	var id PlayerID
	if _, err := rand.Read(id[:]); err != nil {
		return PlayerID{}, fmt.Errorf("failed to generate player id: %w", err)
	}

	return id, nil
}

// ParsePlayerID - parses the hex form produced by PlayerID.String.
func ParsePlayerID(s string) (PlayerID, error) {
	var id PlayerID

	raw, err := hex.DecodeString(s)
	if err != nil {
		return PlayerID{}, fmt.Errorf("%w: %w", ErrInvalidPlayerID, err)
	}

	if len(raw) != playerIDSize {
		return PlayerID{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPlayerID, playerIDSize, len(raw))
	}

	copy(id[:], raw)

	return id, nil
}

func (that PlayerID) String() string {
	return hex.EncodeToString(that[:])
}

func (that PlayerID) IsZero() bool {
	return that == PlayerID{}
}

type Sign uint8

const (
	X Sign = iota + 1
	O
)

// SignOf - sign placed on the board during the given turn. Turn 1 is X.
func SignOf(turn uint8) Sign {
	if playerIndex(turn) == 0 {
		return X
	}
	return O
}

func playerIndex(turn uint8) int {
	return int((turn - 1) % 2)
}

func (that Sign) String() string {
	switch that {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return fmt.Sprintf("Sign(%d)", uint8(that))
	}
}

// Cell - a board square, either empty or holding a sign.
type Cell struct {
	sign Sign
	set  bool
}

func Marked(sign Sign) Cell {
	return Cell{sign: sign, set: true}
}

func (that Cell) Sign() (Sign, bool) {
	return that.sign, that.set
}

func (that Cell) IsEmpty() bool {
	return !that.set
}

type Board [boardSize][boardSize]Cell

func (that Board) cell(tile Tile) Cell {
	return that[tile.Row][tile.Column]
}

// IsFull - every cell is occupied.
func (that Board) IsFull() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell.IsEmpty() {
				return false
			}
		}
	}

	return true
}

// String - rows separated by newlines, empty cells as dots.
func (that Board) String() string {
	var sb strings.Builder

	for i, row := range that {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, cell := range row {
			sign, ok := cell.Sign()
			if !ok {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(sign.String())
		}
	}

	return sb.String()
}

type Tile struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

func (that Tile) InBounds() bool {
	return that.Row >= 0 && that.Row < boardSize && that.Column >= 0 && that.Column < boardSize
}

// Status - one of Active, Tie or Won.
type Status interface {
	status()
	fmt.Stringer
}

type Active struct{}

type Tie struct{}

type Won struct {
	Winner PlayerID
}

func (Active) status() {}
func (Tie) status()    {}
func (Won) status()    {}

func (Active) String() string { return "active" }
func (Tie) String() string    { return "tie" }
func (Won) String() string    { return "won" }

// IsTerminal - no further moves are accepted in this status.
func IsTerminal(status Status) bool {
	_, active := status.(Active)
	return !active
}

// WinnerOf - the winner carried by a Won status.
func WinnerOf(status Status) (PlayerID, bool) {
	won, ok := status.(Won)
	return won.Winner, ok
}
