package uci

// MaxCentipawns is the saturating value used for mate scores, matching the
// common convention of treating a forced mate as a 100-pawn advantage.
const MaxCentipawns = 10000

// Score is an engine evaluation as reported on a UCI info line. UCI scores
// are always relative to the side to move in the searched position.
type Score struct {
	// CP is the evaluation in centipawns. Unset when IsMate is true.
	CP int
	// Mate is the distance to mate in moves; positive when the side to
	// move delivers it. Only meaningful when IsMate is true.
	Mate int
	// IsMate reports whether this is a mate score.
	IsMate bool
}

// Centipawns converts the score to centipawns from White's point of view,
// saturating mate scores at ±MaxCentipawns.
func (s Score) Centipawns(whiteToMove bool) int {
	cp := s.CP
	// "mate 0" means the side to move is already checkmated.
	if s.IsMate {
		if s.Mate > 0 {
			cp = MaxCentipawns
		} else {
			cp = -MaxCentipawns
		}
	}
	if !whiteToMove {
		cp = -cp
	}
	return cp
}

// Pawns converts the score to pawns from White's point of view.
func (s Score) Pawns(whiteToMove bool) float64 {
	return float64(s.Centipawns(whiteToMove)) / 100.0
}
