package analysis

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chesstoc/chesstoc/internal/logging"
	"github.com/chesstoc/chesstoc/internal/metrics"
	"github.com/chesstoc/chesstoc/internal/uci"
)

// stubEngine returns canned evaluations and records the FENs it was asked
// about.
type stubEngine struct {
	evals     []*uci.Evaluation
	failAfter int // fail on call n (1-based), 0 means never
	calls     int
	fens      []string
	movetimes []time.Duration
}

func (s *stubEngine) EvaluatePosition(_ context.Context, fen string, movetime time.Duration) (*uci.Evaluation, error) {
	s.calls++
	s.fens = append(s.fens, fen)
	s.movetimes = append(s.movetimes, movetime)
	if s.failAfter > 0 && s.calls >= s.failAfter {
		return nil, fmt.Errorf("engine closed its output")
	}
	eval := s.evals[(s.calls-1)%len(s.evals)]
	return eval, nil
}

func gameFromPGN(t *testing.T, pgn string) *chess.Game {
	t.Helper()
	update, err := chess.PGN(strings.NewReader(pgn))
	require.NoError(t, err)
	return chess.NewGame(update)
}

func newTestAnalyzer(engine PositionEvaluator) *Analyzer {
	return NewAnalyzer(engine, logging.NewLogger("[test] ", "error"), metrics.NewCollector(), nil)
}

func TestAnalyzeGameScorePerPly(t *testing.T) {
	g := gameFromPGN(t, "1. e4 e5 2. Nf3 Nc6 *")
	stub := &stubEngine{evals: []*uci.Evaluation{{Score: uci.Score{CP: 30}, BestMove: "e2e4"}}}

	scores, err := newTestAnalyzer(stub).AnalyzeGame(context.Background(), g, time.Second)
	require.NoError(t, err)

	// One score per ply.
	require.Len(t, scores, 4)
	assert.Equal(t, 4, stub.calls)

	// +30 cp for the side to move: after White's move Black is to move,
	// so White's point of view flips sign on odd plies.
	assert.InDelta(t, -0.3, scores[0], 1e-9)
	assert.InDelta(t, 0.3, scores[1], 1e-9)
	assert.InDelta(t, -0.3, scores[2], 1e-9)
	assert.InDelta(t, 0.3, scores[3], 1e-9)
}

func TestAnalyzeGameHalvesTimeBudget(t *testing.T) {
	g := gameFromPGN(t, "1. d4 d5 *")
	stub := &stubEngine{evals: []*uci.Evaluation{{Score: uci.Score{CP: 0}}}}

	_, err := newTestAnalyzer(stub).AnalyzeGame(context.Background(), g, time.Second)
	require.NoError(t, err)

	for _, mt := range stub.movetimes {
		assert.Equal(t, 500*time.Millisecond, mt)
	}
}

func TestAnalyzeGameMateScoreSaturates(t *testing.T) {
	// Scholar's mate: the final position is mate with Black to move.
	g := gameFromPGN(t, "1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0")
	stub := &stubEngine{evals: []*uci.Evaluation{{Score: uci.Score{Mate: -1, IsMate: true}}}}

	scores, err := newTestAnalyzer(stub).AnalyzeGame(context.Background(), g, time.Second)
	require.NoError(t, err)
	require.Len(t, scores, 7)

	// Mate against Black, reported from Black's point of view on the final
	// ply, is +100 pawns for White.
	assert.InDelta(t, 100.0, scores[6], 1e-9)
}

func TestAnalyzeGameEngineFailureAborts(t *testing.T) {
	g := gameFromPGN(t, "1. e4 e5 2. Nf3 Nc6 *")
	stub := &stubEngine{
		evals:     []*uci.Evaluation{{Score: uci.Score{CP: 10}}},
		failAfter: 3,
	}

	_, err := newTestAnalyzer(stub).AnalyzeGame(context.Background(), g, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ply 3")
}

func TestAnalyzeGameHonorsCancellation(t *testing.T) {
	g := gameFromPGN(t, "1. e4 e5 *")
	stub := &stubEngine{evals: []*uci.Evaluation{{Score: uci.Score{CP: 10}}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAnalyzer(stub).AnalyzeGame(ctx, g, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
