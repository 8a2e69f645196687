// Package thumbnail renders per-game SVG images: the final board position,
// the evaluation curve, and the composite of the two. All functions are
// pure writers with no side effects beyond their output.
package thumbnail

import (
	"io"

	"github.com/notnil/chess"
	chessimage "github.com/notnil/chess/image"
)

const (
	// Size is the edge of every produced image, in points.
	Size = 360

	// DefaultScale is the Y-axis limit of the evaluation plot, in pawns.
	DefaultScale = 8.0

	// Fractions of the figure covered by the plot's axes area. The board
	// is scaled and shifted to sit underneath it.
	leftBottomMargin = 0.05
	topRightMargin   = 0.98

	// capMargin keeps a capped curve visibly inside the axes.
	capMargin = 0.05
)

// WriteBoard writes the position as an SVG board diagram.
func WriteBoard(w io.Writer, pos *chess.Position) error {
	return chessimage.SVG(w, pos.Board())
}
