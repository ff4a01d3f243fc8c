package graphviz

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/loomviz/pkg/layout"
)

// ParsePlain converts Graphviz "plain" output into positioned geometry.
//
// The format is line oriented, in inches with the origin bottom-left:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 ... xn yn [label xl yl] style color
//	stop
//
// pad is the drawing margin in display units; Graphviz adds it around the
// layout in SVG output, so it is added here too. Labels and classes are not
// part of the geometry and are left for the caller.
func ParsePlain(data []byte, padX, padY float64) (*layout.Positioned, error) {
	pos := &layout.Positioned{}
	var height float64
	seenGraph := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields, err := tokenize(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: short graph statement", lineNo)
			}
			nums, err := floats(fields[2:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			height = nums[1]
			pos.BBox = layout.BoundingBox{
				Width:  nums[0]*pointsPerInch + 2*padX,
				Height: nums[1]*pointsPerInch + 2*padY,
			}
			seenGraph = true

		case "node":
			if len(fields) < 6 {
				return nil, fmt.Errorf("line %d: short node statement", lineNo)
			}
			nums, err := floats(fields[2:6])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			pos.Nodes = append(pos.Nodes, layout.NodeBox{
				Name:   fields[1],
				X:      nums[0]*pointsPerInch + padX,
				Y:      (height-nums[1])*pointsPerInch + padY,
				Width:  nums[2] * pointsPerInch,
				Height: nums[3] * pointsPerInch,
			})

		case "edge":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: short edge statement", lineNo)
			}
			n, err := strconv.Atoi(fields[3])
			if err != nil || n < 0 || len(fields) < 4+2*n {
				return nil, fmt.Errorf("line %d: bad edge point count %q", lineNo, fields[3])
			}
			nums, err := floats(fields[4 : 4+2*n])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			e := layout.EdgePath{From: fields[1], To: fields[2], Points: make([]layout.Point, n)}
			for i := range n {
				e.Points[i] = layout.Point{
					X: nums[2*i]*pointsPerInch + padX,
					Y: (height-nums[2*i+1])*pointsPerInch + padY,
				}
			}
			pos.Edges = append(pos.Edges, e)

		case "stop":
			if !seenGraph {
				return nil, fmt.Errorf("missing graph statement")
			}
			return pos, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !seenGraph {
		return nil, fmt.Errorf("missing graph statement")
	}
	return pos, nil
}

// tokenize splits a plain-format line on spaces. Double-quoted tokens may
// contain spaces and backslash escapes.
func tokenize(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote, escaped, inToken := false, false, false

	for _, r := range line {
		switch {
		case escaped:
			switch r {
			case 'n', 'l', 'r':
				cur.WriteByte('\n')
			default:
				cur.WriteRune(r)
			}
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			inToken = true
		case r == ' ' && !inQuote:
			if inToken {
				fields = append(fields, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inToken {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

func floats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", f, err)
		}
		out[i] = v
	}
	return out, nil
}
