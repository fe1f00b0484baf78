package grammar

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// MarshalBinary encodes g in REZI binary format, the same scheme the
// teacher's save-game persistence uses for game.State.
func (g Grammar) MarshalBinary() ([]byte, error) {
	return rezi.EncBinary(g), nil
}

// UnmarshalBinary decodes a Grammar previously produced by MarshalBinary.
func (g *Grammar) UnmarshalBinary(data []byte) error {
	n, err := rezi.DecBinary(data, g)
	if err != nil {
		return fmt.Errorf("REZI decode: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("REZI decode: %d trailing byte(s) after grammar", len(data)-n)
	}
	return nil
}
