package thumbnail

import (
	"bytes"
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBoard(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBoard(&buf, chess.NewGame().Position())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "</svg>")
}

func TestWritePlot(t *testing.T) {
	var buf bytes.Buffer
	scores := []float64{0.2, -0.1, 0.5, 1.2, 0.9, 2.4, 3.0, 1.1, 0.0, -0.6}
	err := WritePlot(&buf, scores, DefaultScale)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<svg")
	// A ten-ply game spans five full moves on the X axis.
	assert.Contains(t, out, "5")
}

func TestWritePlotEmptyScores(t *testing.T) {
	var buf bytes.Buffer
	err := WritePlot(&buf, nil, DefaultScale)
	require.Error(t, err)
}

func TestWritePlotSinglePoint(t *testing.T) {
	var buf bytes.Buffer
	err := WritePlot(&buf, []float64{100.0}, DefaultScale)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestNestPreservesViewBoxAndPlaces(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?><svg width="360" height="360" xmlns="http://www.w3.org/2000/svg"><rect x="0" y="0"/></svg>`)

	out, err := nest(raw, 18, 7.2, 334.8)
	require.NoError(t, err)

	assert.Contains(t, out, `x="18"`)
	assert.Contains(t, out, `y="7.2"`)
	assert.Contains(t, out, `width="334.8"`)
	assert.Contains(t, out, `viewBox="0 0 360 360"`)
	assert.Contains(t, out, `<rect x="0" y="0"/>`)
	assert.NotContains(t, out, "<?xml")
}

func TestNestKeepsExistingViewBox(t *testing.T) {
	raw := []byte(`<svg width="360pt" height="360pt" viewBox="0 0 720 720"><g/></svg>`)

	out, err := nest(raw, 0, 0, 360)
	require.NoError(t, err)
	assert.Contains(t, out, `viewBox="0 0 720 720"`)
}

func TestNestRejectsNonSVG(t *testing.T) {
	_, err := nest([]byte("<html></html>"), 0, 0, 360)
	require.Error(t, err)
}

func TestCompose(t *testing.T) {
	var board, plotBuf bytes.Buffer
	require.NoError(t, WriteBoard(&board, chess.NewGame().Position()))
	require.NoError(t, WritePlot(&plotBuf, []float64{0.3, -0.3, 0.1, 0.2}, DefaultScale))

	var out bytes.Buffer
	err := Compose(&out, board.Bytes(), plotBuf.Bytes())
	require.NoError(t, err)

	combined := out.String()
	// Outer document plus two nested ones.
	assert.Equal(t, 3, strings.Count(combined, "<svg"))
	assert.Equal(t, 3, strings.Count(combined, "</svg>"))
	// Board offset per the margin constants.
	assert.Contains(t, combined, `x="18"`)
	assert.Contains(t, combined, `y="7.2"`)
}
