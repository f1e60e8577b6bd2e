// Package positionid encodes heartsgammon positions as short strings.
//
// A position packs into 28 bytes: one byte per point followed by the bar and
// borne-off counts for each player. Point bytes hold the checker count in the
// low five bits and set bit 7 for goomba stacks; the pipe is 0xFF. The bytes
// are rendered with the URL-safe base64 alphabet without padding, so IDs are
// 38 characters and safe in paths and query strings.
package positionid

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/yourusername/heartsgammon/pkg/engine"
)

const (
	// KeyLength is the number of bytes in a packed position.
	KeyLength = engine.NumPoints + 4
	// PositionIDLength is the length of a position ID string.
	PositionIDLength = 38

	pipeByte   = 0xFF
	goombaBit  = 0x80
	countMask  = 0x1F
	barOffset  = engine.NumPoints
	offOffset  = engine.NumPoints + 2
	maxPerSlot = countMask
)

var encoding = base64.RawURLEncoding

// ErrInvalidPositionID is returned for strings that do not decode to a key.
var ErrInvalidPositionID = errors.New("invalid position ID")

// Key is the packed binary form of a position. Keys are comparable and can be
// used as map keys.
type Key [KeyLength]byte

// MakeKey packs a state.
func MakeKey(s engine.State) Key {
	var k Key
	for i, pt := range s.Board {
		switch {
		case pt.IsPipe():
			k[i] = pipeByte
		case pt.Holds(engine.Goomba) > 0:
			k[i] = goombaBit | clamp(pt.Count)
		default:
			k[i] = clamp(pt.Holds(engine.Mario))
		}
	}
	for _, p := range engine.Players {
		k[barOffset+int(p)] = clamp(s.Bar[p])
		k[offOffset+int(p)] = clamp(s.BorneOff[p])
	}
	return k
}

func clamp(n int) byte {
	if n < 0 {
		return 0
	}
	if n > maxPerSlot {
		return maxPerSlot
	}
	return byte(n)
}

// State unpacks a key without validating it.
func (k Key) State() engine.State {
	var s engine.State
	for i := 0; i < engine.NumPoints; i++ {
		b := k[i]
		switch {
		case b == pipeByte:
			s.Board[i] = engine.Pipe()
		case b&goombaBit != 0:
			s.Board[i] = engine.Checkers(engine.Goomba, int(b&countMask))
		default:
			s.Board[i] = engine.Checkers(engine.Mario, int(b&countMask))
		}
	}
	for _, p := range engine.Players {
		s.Bar[p] = int(k[barOffset+int(p)])
		s.BorneOff[p] = int(k[offOffset+int(p)])
	}
	return s
}

// PositionID returns the ID string for a state.
func PositionID(s engine.State) string {
	k := MakeKey(s)
	return encoding.EncodeToString(k[:])
}

// KeyFromPositionID decodes an ID string to a key.
func KeyFromPositionID(id string) (Key, error) {
	var k Key
	if len(id) != PositionIDLength {
		return k, fmt.Errorf("%w: length %d, want %d", ErrInvalidPositionID, len(id), PositionIDLength)
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return k, fmt.Errorf("%w: %v", ErrInvalidPositionID, err)
	}
	copy(k[:], raw)
	return k, nil
}

// StateFromPositionID decodes an ID string and checks that the result is a
// legal position.
func StateFromPositionID(id string) (engine.State, error) {
	k, err := KeyFromPositionID(id)
	if err != nil {
		return engine.State{}, err
	}
	s := k.State()
	if err := s.Validate(); err != nil {
		return engine.State{}, fmt.Errorf("%w: %v", ErrInvalidPositionID, err)
	}
	return s, nil
}
