package opening

import (
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gameFromPGN(t *testing.T, pgn string) *chess.Game {
	t.Helper()
	update, err := chess.PGN(strings.NewReader(pgn))
	require.NoError(t, err)
	return chess.NewGame(update)
}

func TestClassifyRuyLopez(t *testing.T) {
	g := gameFromPGN(t, "1. e4 e5 2. Nf3 Nc6 3. Bb5 *")

	eco, name, err := Classify(g)
	require.NoError(t, err)
	assert.Equal(t, "C60", eco)
	assert.Equal(t, "Ruy Lopez", name)
}

func TestClassifyDeepestMatchWins(t *testing.T) {
	// The Berlin position is in the table, so 3...Nf6 must not fall back
	// to the plain Ruy Lopez entry.
	g := gameFromPGN(t, "1. e4 e5 2. Nf3 Nc6 3. Bb5 Nf6 *")

	eco, name, err := Classify(g)
	require.NoError(t, err)
	assert.Equal(t, "C65", eco)
	assert.Equal(t, "Ruy Lopez: Berlin Defense", name)
}

func TestClassifySurvivesLeavingBook(t *testing.T) {
	// Moves beyond the table fall back to the deepest known position.
	g := gameFromPGN(t, "1. e4 c5 2. Nf3 d6 3. d4 cxd4 4. Nxd4 Nf6 *")

	eco, name, err := Classify(g)
	require.NoError(t, err)
	assert.Equal(t, "B50", eco)
	assert.Contains(t, name, "Sicilian")
}

func TestClassifyQueensGambit(t *testing.T) {
	g := gameFromPGN(t, "1. d4 d5 2. c4 e6 *")

	eco, name, err := Classify(g)
	require.NoError(t, err)
	assert.Equal(t, "D30", eco)
	assert.Equal(t, "Queen's Gambit Declined", name)
}

func TestClassifyUnknownOpening(t *testing.T) {
	// 1.a3 a6 reaches no tabled position (the start position is not an
	// opening).
	g := gameFromPGN(t, "1. a3 a6 *")

	eco, name, err := Classify(g)
	require.NoError(t, err)
	assert.Empty(t, eco)
	assert.Empty(t, name)
}

func TestKeyTruncatesFEN(t *testing.T) {
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq", Key(fen))
}
