// Package pgn loads games from a PGN file one at a time. A malformed game
// is skipped with a warning; only an unreadable stream aborts the run.
package pgn

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"

	"github.com/chesstoc/chesstoc/internal/logging"
)

// Game is one parsed game plus its header metadata. The metadata holds all
// PGN tag pairs and the synthetic WhiteResult/BlackResult keys split from
// the Result tag.
type Game struct {
	// Index is the 1-based position of the game in the input file,
	// counting skipped games as well so warnings stay traceable.
	Index int
	Game  *chess.Game
	Meta  map[string]string
}

// MoveCount returns the number of plies in the game's mainline.
func (g *Game) MoveCount() int {
	return len(g.Game.Moves())
}

// Tag returns a metadata value, or "?" when the header is absent, the
// PGN convention for unknown values.
func (g *Game) Tag(key string) string {
	if v, ok := g.Meta[key]; ok && v != "" {
		return v
	}
	return "?"
}

// Loader iterates over the games in a PGN stream.
type Loader struct {
	scanner *bufio.Scanner
	logger  logging.ContextLogger

	index       int
	pending     []string
	seenMoves   bool
	exhausted   bool
	streamError error
}

// NewLoader creates a loader over r.
func NewLoader(r io.Reader, logger logging.ContextLogger) *Loader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Loader{
		scanner: scanner,
		logger:  logger,
	}
}

// Next returns the next well-formed game. It returns io.EOF when the input
// is exhausted and a non-EOF error only when the underlying stream fails.
func (l *Loader) Next() (*Game, error) {
	for {
		chunk, err := l.nextChunk()
		if err != nil {
			return nil, err
		}

		l.index++
		game, err := l.parseChunk(chunk)
		if err != nil {
			l.logger.Warn("skipping malformed game", "game", l.index, "error", err)
			continue
		}
		if len(game.Moves()) == 0 {
			l.logger.Warn("skipping game without moves", "game", l.index)
			continue
		}

		return &Game{
			Index: l.index,
			Game:  game,
			Meta:  extractMeta(game),
		}, nil
	}
}

// nextChunk accumulates lines until the start of the following game. A tag
// line after movetext marks a game boundary.
func (l *Loader) nextChunk() (string, error) {
	if l.exhausted {
		if l.streamError != nil {
			return "", l.streamError
		}
		return "", io.EOF
	}

	for l.scanner.Scan() {
		line := l.scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && l.seenMoves {
			chunk := strings.Join(l.pending, "\n")
			l.pending = []string{line}
			l.seenMoves = false
			return chunk, nil
		}

		if trimmed != "" && !strings.HasPrefix(trimmed, "[") {
			l.seenMoves = true
		}
		l.pending = append(l.pending, line)
	}

	l.exhausted = true
	if err := l.scanner.Err(); err != nil {
		l.streamError = fmt.Errorf("failed to read PGN stream: %w", err)
		return "", l.streamError
	}

	if len(l.pending) > 0 {
		chunk := strings.Join(l.pending, "\n")
		l.pending = nil
		if strings.TrimSpace(chunk) != "" {
			return chunk, nil
		}
	}
	return "", io.EOF
}

func (l *Loader) parseChunk(chunk string) (*chess.Game, error) {
	update, err := chess.PGN(strings.NewReader(chunk))
	if err != nil {
		return nil, err
	}
	return chess.NewGame(update), nil
}

func extractMeta(g *chess.Game) map[string]string {
	meta := make(map[string]string)
	for _, tp := range g.TagPairs() {
		meta[tp.Key] = tp.Value
	}

	// Fake per-color result headers for template convenience, mirroring
	// the Result tag ("1-0", "0-1", "1/2-1/2").
	if results := strings.Split(meta["Result"], "-"); len(results) == 2 {
		meta["WhiteResult"] = results[0]
		meta["BlackResult"] = results[1]
	}

	return meta
}
