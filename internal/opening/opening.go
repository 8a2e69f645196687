// Package opening names the opening a game was played from, using a bundled
// table of ECO positions keyed by truncated FEN.
package opening

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/notnil/chess"
)

//go:embed eco.json
var ecoData []byte

type entry struct {
	FEN  string `json:"fen"`
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

var (
	loadOnce sync.Once
	loadErr  error
	table    map[string]entry
)

func load() error {
	loadOnce.Do(func() {
		var entries []entry
		if err := json.Unmarshal(ecoData, &entries); err != nil {
			loadErr = fmt.Errorf("failed to parse bundled opening table: %w", err)
			return
		}
		table = make(map[string]entry, len(entries))
		for _, e := range entries {
			table[e.FEN] = e
		}
	})
	return loadErr
}

// Key truncates a FEN to the fields that identify an opening position:
// piece placement, side to move, and castling rights. Move counters and
// the en passant square would make transpositions miss.
func Key(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 3 {
		return fen
	}
	return strings.Join(fields[:3], " ")
}

// Classify returns the ECO code and opening name for a game, matching the
// deepest position still found in the table. Both are empty when the game
// left book before the second position.
func Classify(g *chess.Game) (eco string, name string, err error) {
	if err := load(); err != nil {
		return "", "", err
	}

	positions := g.Positions()
	for i := len(positions) - 1; i >= 0; i-- {
		if e, ok := table[Key(positions[i].XFENString())]; ok {
			return e.ECO, e.Name, nil
		}
	}
	return "", "", nil
}
