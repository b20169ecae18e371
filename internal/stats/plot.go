package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

// Chart renders series as braille line plots sharing one value axis.
type Chart struct {
	Width  int
	Height int
	// Color forces ANSI colors even when the writer is not a terminal.
	Color bool
}

const (
	defaultChartHeight  = 8
	minChartWidth       = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var seriesColors = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
}

// Render writes the chart to w. Empty series are skipped.
func (c Chart) Render(w io.Writer, title string, series []Series) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	height := c.Height
	if height <= 0 {
		height = defaultChartHeight
	}
	width := c.Width
	if width <= 0 {
		width = ChartWidthFor(terminalWidth())
	}
	if width < minChartWidth {
		width = minChartWidth
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		sMin, sMax := minMax(s.Values)
		lo = math.Min(lo, sMin)
		hi = math.Max(hi, sMax)
	}
	if lo > 0 {
		lo = 0
	}
	if hi-lo < 1e-9 {
		hi = lo + 1
	}

	grids := make([][][]uint8, len(series))
	for i, s := range series {
		grids[i] = makeGrid(height, width)
		values := resample(s.Values, width)
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := x*2, dotRow(v, lo, hi, height*4)
			if prevX < 0 {
				setDot(grids[i], px, py)
			} else {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					setDot(grids[i], dx, dy)
				})
			}
			prevX, prevY = px, py
		}
	}

	useColor := c.Color || isTerminal(w)
	labels := axisLabels(height, lo, hi)
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, runewidth.StringWidth(l))
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	for y := 0; y < height; y++ {
		b.WriteString(runewidth.FillLeft(labels[y], labelWidth))
		b.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := cellAt(grids, x, y)
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 {
				b.WriteString(seriesColors[owner%len(seriesColors)])
				b.WriteRune(ch)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	b.WriteString(legend(series, useColor))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ChartWidthFor computes a plot width that fits within the total available width.
func ChartWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	// Room for a label such as "123.4".
	width := totalWidth - 6 - runewidth.StringWidth(axisSeparator)
	if width < minChartWidth {
		return minChartWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func axisLabels(height int, lo, hi float64) []string {
	labels := make([]string, height)
	labels[0] = fmt.Sprintf("%.1f", hi)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.1f", (hi+lo)/2)
	}
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.1f", lo)
	}
	return labels
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := "⠉ " + s.Name
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func makeGrid(height, width int) [][]uint8 {
	grid := make([][]uint8, height)
	for y := range grid {
		grid[y] = make([]uint8, width)
	}
	return grid
}

func cellAt(grids [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, grid := range grids {
		if m := grid[y][x]; m != 0 {
			if owner < 0 {
				owner = i
			}
			mask |= m
		}
	}
	return mask, owner
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	case n > width:
		for i := 0; i < width; i++ {
			start := i * n / width
			end := max((i+1)*n/width, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		for i := 0; i < width; i++ {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func dotRow(v, lo, hi float64, rows int) int {
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	return min(max(row, 0), rows-1)
}

// drawLine walks a Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func setDot(grid [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if y < 0 || x < 0 || cy >= len(grid) || cx >= len(grid[cy]) {
		return
	}
	grid[cy][cx] |= brailleBits[x%2][y%4]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
