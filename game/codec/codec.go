// Package codec converts a grid to and from the compact "width,height,base64"
// text form. Cells are flattened row-major, one bit per cell (Wall=1), packed
// most-significant bit first with the final byte zero padded.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/maze-lab/game/grid"
)

// ErrMalformedEncoding is returned when an encoded grid cannot be decoded
var ErrMalformedEncoding = errors.New("malformed maze encoding")

// Encode packs g into its text form
func Encode(g *grid.Grid) string {
	cells := g.Cells()
	packed := make([]byte, (len(cells)+7)/8)
	for i, k := range cells {
		if k == grid.Wall {
			packed[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return fmt.Sprintf("%d,%d,%s", g.Width(), g.Height(), base64.StdEncoding.EncodeToString(packed))
}

// Decode parses a text form produced by Encode. The returned grid may have any
// positive size; callers that need maze dimensions validate them separately.
func Decode(s string) (*grid.Grid, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ",", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected width,height,data", ErrMalformedEncoding)
	}

	width, err := parseSize(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: width: %v", ErrMalformedEncoding, err)
	}
	height, err := parseSize(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: height: %v", ErrMalformedEncoding, err)
	}

	packed, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedEncoding, err)
	}

	total := width * height
	if len(packed)*8 < total {
		return nil, fmt.Errorf("%w: need %d bits, payload has %d", ErrMalformedEncoding, total, len(packed)*8)
	}

	cells := make([]grid.Kind, total)
	for i := range cells {
		if packed[i/8]&(1<<(7-uint(i%8))) != 0 {
			cells[i] = grid.Wall
		}
	}

	g, err := grid.FromCells(width, height, cells)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return g, nil
}

// parseSize guards against sizes whose product would not fit in memory
func parseSize(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	if n > maxSide {
		return 0, fmt.Errorf("must be at most %d, got %d", maxSide, n)
	}
	return n, nil
}

const maxSide = 1 << 15
