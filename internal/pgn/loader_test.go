package pgn

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chesstoc/chesstoc/internal/logging"
)

const scholarsMate = `[Event "Casual game"]
[White "Alice"]
[Black "Bob"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0
`

const shortDraw = `[Event "Casual game"]
[White "Carol"]
[Black "Dave"]
[Result "1/2-1/2"]

1. Nf3 Nf6 2. Ng1 Ng8 1/2-1/2
`

const malformedGame = `[Event "Broken"]
[White "Eve"]
[Black "Mallory"]
[Result "*"]

1. e4 e9 2. zz9 *
`

func testLogger() logging.ContextLogger {
	return logging.NewLogger("[test] ", "error")
}

func TestLoaderSingleGame(t *testing.T) {
	l := NewLoader(strings.NewReader(scholarsMate), testLogger())

	g, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, g.Index)
	assert.Equal(t, 7, g.MoveCount())
	assert.Equal(t, "Alice", g.Tag("White"))
	assert.Equal(t, "Bob", g.Tag("Black"))
	assert.Equal(t, "1-0", g.Tag("Result"))
	assert.Equal(t, "1", g.Meta["WhiteResult"])
	assert.Equal(t, "0", g.Meta["BlackResult"])

	_, err = l.Next()
	assert.Equal(t, io.EOF, err)
}

func TestLoaderMultipleGames(t *testing.T) {
	l := NewLoader(strings.NewReader(scholarsMate+"\n"+shortDraw), testLogger())

	first, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Tag("White"))

	second, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, second.Index)
	assert.Equal(t, "Carol", second.Tag("White"))
	assert.Equal(t, 4, second.MoveCount())
	assert.Equal(t, "1/2", second.Meta["WhiteResult"])
	assert.Equal(t, "1/2", second.Meta["BlackResult"])

	_, err = l.Next()
	assert.Equal(t, io.EOF, err)
}

func TestLoaderSkipsMalformedGame(t *testing.T) {
	input := scholarsMate + "\n" + malformedGame + "\n" + shortDraw
	l := NewLoader(strings.NewReader(input), testLogger())

	var games []*Game
	for {
		g, err := l.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		games = append(games, g)
	}

	// The malformed game in the middle is skipped; both valid games load.
	require.Len(t, games, 2)
	assert.Equal(t, "Alice", games[0].Tag("White"))
	assert.Equal(t, "Carol", games[1].Tag("White"))
	// Indexes keep counting over the skipped game.
	assert.Equal(t, 1, games[0].Index)
	assert.Equal(t, 3, games[1].Index)
}

func TestLoaderEmptyInput(t *testing.T) {
	l := NewLoader(strings.NewReader(""), testLogger())
	_, err := l.Next()
	assert.Equal(t, io.EOF, err)
}

func TestTagDefaultsToQuestionMark(t *testing.T) {
	l := NewLoader(strings.NewReader(scholarsMate), testLogger())
	g, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, "?", g.Tag("Site"))
}
