// Package uci drives a UCI chess engine over its standard streams. One
// engine process is spawned per run and owned exclusively by the caller;
// every exchange is a synchronous command/response round trip.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chesstoc/chesstoc/internal/config"
	"github.com/chesstoc/chesstoc/internal/logging"
)

// handshakeTimeout bounds the uci/isready exchanges at startup.
const handshakeTimeout = 10 * time.Second

// Engine manages a UCI engine process for analysis.
type Engine struct {
	config *config.EngineConfig
	logger logging.ContextLogger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bufio.Reader

	mu      sync.Mutex
	running bool
	lines   chan string
	stopCh  chan struct{}
}

// Evaluation is the result of analyzing one position.
type Evaluation struct {
	Score    Score
	BestMove string
	Depth    int
}

// NewEngine creates a new engine around the configured binary. The process
// is not started until Start is called.
func NewEngine(cfg *config.EngineConfig, logger logging.ContextLogger) *Engine {
	return &Engine{
		config: cfg,
		logger: logger,
	}
}

// Start starts the engine process and performs the UCI handshake.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("engine already running")
	}

	e.cmd = exec.CommandContext(ctx, e.config.BinaryPath) // #nosec G204 -- BinaryPath is validated configuration

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	e.stdin = stdin

	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := e.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	e.stderr = bufio.NewReader(stderr)

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	e.running = true
	e.lines = make(chan string, 64)
	e.stopCh = make(chan struct{})

	go e.readStdout(bufio.NewReader(stdout))
	go e.readStderr()

	e.logger.Info("engine started",
		"binary", e.config.BinaryPath,
		"threads", e.config.Threads,
		"hashMB", e.config.HashMB,
	)

	if err := e.handshake(); err != nil {
		e.mu.Unlock()
		stopErr := e.Stop()
		e.mu.Lock()
		if stopErr != nil {
			e.logger.Warn("failed to stop engine after handshake error", "error", stopErr)
		}
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	return nil
}

// handshake runs the uci/isready exchange and applies engine options.
// Caller holds e.mu.
func (e *Engine) handshake() error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if _, err := e.waitFor("uciok", handshakeTimeout); err != nil {
		return err
	}

	if err := e.send(fmt.Sprintf("setoption name Threads value %d", e.config.Threads)); err != nil {
		return err
	}
	if err := e.send(fmt.Sprintf("setoption name Hash value %d", e.config.HashMB)); err != nil {
		return err
	}

	if err := e.send("isready"); err != nil {
		return err
	}
	_, err := e.waitFor("readyok", handshakeTimeout)
	return err
}

// Stop terminates the engine process.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}

	close(e.stopCh)
	e.running = false

	// Ask the engine to quit, then close stdin to make sure it notices.
	_ = e.send("quit")
	if e.stdin != nil {
		_ = e.stdin.Close()
	}

	done := make(chan error, 1)
	go func() {
		if e.cmd != nil && e.cmd.Process != nil {
			done <- e.cmd.Wait()
		} else {
			done <- nil
		}
	}()

	select {
	case err := <-done:
		if err != nil && err.Error() != "signal: killed" {
			e.logger.Warn("engine process exited with error", "error", err)
		}
	case <-time.After(5 * time.Second):
		// Force kill if not exited
		if e.cmd != nil && e.cmd.Process != nil {
			_ = e.cmd.Process.Kill()
		}
	}

	e.logger.Info("engine stopped")
	return nil
}

// IsRunning returns whether the engine is running.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Ping verifies the engine responds to isready.
func (e *Engine) Ping(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return fmt.Errorf("engine not running")
	}

	if err := e.send("isready"); err != nil {
		return err
	}

	timeout := handshakeTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	_, err := e.waitFor("readyok", timeout)
	return err
}

// EvaluatePosition analyzes a single position, given as a FEN string, for
// the movetime budget and returns the engine's final evaluation. The score
// is relative to the side to move.
func (e *Engine) EvaluatePosition(ctx context.Context, fen string, movetime time.Duration) (*Evaluation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil, fmt.Errorf("engine not running")
	}

	if err := e.send("position fen " + fen); err != nil {
		return nil, err
	}
	if err := e.send(fmt.Sprintf("go movetime %d", movetime.Milliseconds())); err != nil {
		return nil, err
	}

	// The engine should report bestmove right after the movetime elapses;
	// the grace period covers slow engines and process scheduling.
	deadline := time.Now().Add(2*movetime + handshakeTimeout)

	eval := &Evaluation{}
	sawScore := false
	for {
		line, err := e.waitLine(time.Until(deadline))
		if err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		switch {
		case strings.HasPrefix(line, "info "):
			if score, depth, ok := parseInfoLine(line); ok {
				eval.Score = score
				eval.Depth = depth
				sawScore = true
			}
		case strings.HasPrefix(line, "bestmove"):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				eval.BestMove = fields[1]
			}
			if !sawScore {
				return nil, fmt.Errorf("engine reported no score before bestmove")
			}
			return eval, nil
		}
	}
}

// send writes one command line to the engine. Caller holds e.mu.
func (e *Engine) send(cmd string) error {
	if _, err := fmt.Fprintf(e.stdin, "%s\n", cmd); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, err)
	}
	return nil
}

// waitFor consumes lines until one starts with the token.
func (e *Engine) waitFor(token string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		line, err := e.waitLine(time.Until(deadline))
		if err != nil {
			return "", fmt.Errorf("waiting for %q: %w", token, err)
		}
		if strings.HasPrefix(line, token) {
			return line, nil
		}
	}
}

// waitLine returns the next stdout line from the reader goroutine.
func (e *Engine) waitLine(timeout time.Duration) (string, error) {
	if timeout <= 0 {
		return "", fmt.Errorf("engine read timeout")
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line, ok := <-e.lines:
		if !ok {
			return "", fmt.Errorf("engine closed its output")
		}
		return line, nil
	case <-timer.C:
		return "", fmt.Errorf("engine read timeout")
	}
}

// readStdout feeds engine output lines to waiters.
func (e *Engine) readStdout(r *bufio.Reader) {
	defer close(e.lines)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				e.logger.Error("failed to read engine stdout", "error", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		select {
		case e.lines <- line:
		case <-e.stopCh:
			return
		}
	}
}

// readStderr logs stderr output.
func (e *Engine) readStderr() {
	scanner := bufio.NewScanner(e.stderr)
	for scanner.Scan() {
		select {
		case <-e.stopCh:
			return
		default:
			if line := scanner.Text(); line != "" {
				e.logger.Debug("engine stderr", "line", line)
			}
		}
	}
}

// parseInfoLine extracts the score and depth from a UCI info line, e.g.
//
//	info depth 20 seldepth 28 score cp 35 nodes 1520000 pv e2e4 ...
//	info depth 12 score mate -3 ...
//
// Lines without a score (currmove reports and the like) return ok=false,
// as do bound scores, which are not final evaluations.
func parseInfoLine(line string) (Score, int, bool) {
	fields := strings.Fields(line)
	var score Score
	depth := 0
	found := false

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if d, err := strconv.Atoi(fields[i+1]); err == nil {
					depth = d
				}
			}
		case "score":
			if i+2 >= len(fields) {
				return Score{}, 0, false
			}
			value, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return Score{}, 0, false
			}
			switch fields[i+1] {
			case "cp":
				score = Score{CP: value}
			case "mate":
				score = Score{Mate: value, IsMate: true}
			default:
				return Score{}, 0, false
			}
			found = true
			i += 2
		case "lowerbound", "upperbound":
			return Score{}, 0, false
		}
	}

	return score, depth, found
}
