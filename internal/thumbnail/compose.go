package thumbnail

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
)

var (
	xmlDeclRe = regexp.MustCompile(`(?s)<\?xml.*?\?>|<!DOCTYPE.*?>`)
	rootTagRe = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([^"]+)"`)
	widthRe   = regexp.MustCompile(`width="([0-9.]+)(?:pt|px)?"`)
	heightRe  = regexp.MustCompile(`height="([0-9.]+)(?:pt|px)?"`)
)

// Compose writes a combined SVG in which the board sits in the background
// of the plot's axes area: the board is scaled down to the axes-area
// fraction of the figure and shifted by the margins, then the transparent
// plot is layered on top at full size.
func Compose(w io.Writer, boardSVG, plotSVG []byte) error {
	scale := topRightMargin - leftBottomMargin
	xdel := leftBottomMargin * Size
	ydel := (1.0 - topRightMargin) * Size

	board, err := nest(boardSVG, xdel, ydel, Size*scale)
	if err != nil {
		return fmt.Errorf("failed to embed board SVG: %w", err)
	}
	plot, err := nest(plotSVG, 0, 0, Size)
	if err != nil {
		return fmt.Errorf("failed to embed plot SVG: %w", err)
	}

	canvas := svg.New(w)
	canvas.Start(Size, Size)
	if _, err := io.WriteString(canvas.Writer, board); err != nil {
		return err
	}
	if _, err := io.WriteString(canvas.Writer, plot); err != nil {
		return err
	}
	canvas.End()
	return nil
}

// nest rewrites a standalone SVG document into a nested <svg> element
// placed at (x, y) and scaled to size×size via its viewBox.
func nest(raw []byte, x, y, size float64) (string, error) {
	doc := xmlDeclRe.ReplaceAllString(string(raw), "")

	loc := rootTagRe.FindStringIndex(doc)
	if loc == nil {
		return "", fmt.Errorf("no <svg> root element")
	}
	rootTag := doc[loc[0]:loc[1]]

	end := strings.LastIndex(doc, "</svg>")
	if end < loc[1] {
		return "", fmt.Errorf("no closing </svg>")
	}
	content := doc[loc[1]:end]

	viewBox, err := extractViewBox(rootTag)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		`<svg x="%g" y="%g" width="%g" height="%g" viewBox="%s" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" preserveAspectRatio="xMidYMid meet">%s</svg>`,
		x, y, size, size, viewBox, content), nil
}

// extractViewBox returns the root tag's viewBox, synthesizing one from the
// width and height attributes when absent.
func extractViewBox(rootTag string) (string, error) {
	if m := viewBoxRe.FindStringSubmatch(rootTag); m != nil {
		return m[1], nil
	}

	wm := widthRe.FindStringSubmatch(rootTag)
	hm := heightRe.FindStringSubmatch(rootTag)
	if wm == nil || hm == nil {
		return "", fmt.Errorf("no viewBox and no width/height to derive one")
	}
	width, err := strconv.ParseFloat(wm[1], 64)
	if err != nil {
		return "", fmt.Errorf("bad width %q", wm[1])
	}
	height, err := strconv.ParseFloat(hm[1], 64)
	if err != nil {
		return "", fmt.Errorf("bad height %q", hm[1])
	}
	return fmt.Sprintf("0 0 %g %g", width, height), nil
}
