package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/photolab/internal/ledger"
)

// IVCurveSVG draws the curve as a polyline in acquisition order, with a
// dashed zero-bias axis when it falls inside the plotted range.
func IVCurveSVG(points []ledger.IVPoint, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].VoltageV, points[0].VoltageV
	minY, maxY := points[0].CurrentUa, points[0].CurrentUa
	for _, p := range points {
		if p.VoltageV < minX {
			minX = p.VoltageV
		}
		if p.VoltageV > maxX {
			maxX = p.VoltageV
		}
		if p.CurrentUa < minY {
			minY = p.CurrentUa
		}
		if p.CurrentUa > maxY {
			maxY = p.CurrentUa
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	toX := func(v float64) float64 { return (v - minX) / rangeX * float64(width) }
	toY := func(i float64) float64 { return float64(height) - (i-minY)/rangeY*float64(height) }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if minX < 0 && maxX > 0 {
		x := toX(0)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%d" stroke="#444466" stroke-dasharray="4 4"/>
`, x, x, height))
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range points {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", toX(p.VoltageV), toY(p.CurrentUa)))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", toX(p.VoltageV), toY(p.CurrentUa)))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
