// Package analysis steps a game through the engine and collects one
// evaluation per ply.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/notnil/chess"

	"github.com/chesstoc/chesstoc/internal/logging"
	"github.com/chesstoc/chesstoc/internal/metrics"
	"github.com/chesstoc/chesstoc/internal/uci"
)

// PositionEvaluator is the engine surface the analyzer needs. *uci.Engine
// implements it; tests substitute a stub.
type PositionEvaluator interface {
	EvaluatePosition(ctx context.Context, fen string, movetime time.Duration) (*uci.Evaluation, error)
}

// Analyzer evaluates whole games with a fixed per-move time budget.
type Analyzer struct {
	engine     PositionEvaluator
	logger     logging.ContextLogger
	collector  *metrics.Collector
	prometheus *metrics.PrometheusCollector
}

// NewAnalyzer creates an analyzer. The prometheus collector may be nil when
// no metrics endpoint is being served.
func NewAnalyzer(engine PositionEvaluator, logger logging.ContextLogger, collector *metrics.Collector, prom *metrics.PrometheusCollector) *Analyzer {
	return &Analyzer{
		engine:     engine,
		logger:     logger,
		collector:  collector,
		prometheus: prom,
	}
}

// AnalyzeGame evaluates the position after every ply of the game's mainline
// and returns the scores in pawns from White's point of view, one per ply.
// timePerMove is the budget for a full move, so each ply gets half of it.
// A failed engine query aborts the game; the caller decides what to do with
// the partial result.
func (a *Analyzer) AnalyzeGame(ctx context.Context, g *chess.Game, timePerMove time.Duration) ([]float64, error) {
	moves := g.Moves()
	positions := g.Positions()
	if len(positions) != len(moves)+1 {
		return nil, fmt.Errorf("game has %d positions for %d moves", len(positions), len(moves))
	}

	movetime := timePerMove / 2
	scores := make([]float64, 0, len(moves))

	for i := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Position after the move at ply i+1
		pos := positions[i+1]

		start := time.Now()
		eval, err := a.engine.EvaluatePosition(ctx, pos.XFENString(), movetime)
		elapsed := time.Since(start)

		a.collector.RecordQuery(err, elapsed)
		if a.prometheus != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			a.prometheus.RecordEngineQuery(status, elapsed)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to evaluate ply %d: %w", i+1, err)
		}

		whiteToMove := pos.Turn() == chess.White
		scores = append(scores, eval.Score.Pawns(whiteToMove))

		if (i+1)%20 == 0 {
			a.logger.Info("analysis progress", "ply", i+1, "totalPlies", len(moves))
		}
	}

	return scores, nil
}
