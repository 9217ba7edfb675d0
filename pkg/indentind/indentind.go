// Package indentind computes a per-file indentation-depth distribution,
// skipping content that sniffs as binary.
package indentind

import (
	"bytes"
	"math"
	"sort"
)

// Data is the indentation indicator: a distribution over each line's
// leading-whitespace depth (spaces count 1, tabs count 4).
type Data struct {
	Lines   int     `json:"lines"`
	Minimum int     `json:"minimum"`
	Maximum int     `json:"maximum"`
	Median  float64 `json:"median"`
	Stddev  float64 `json:"stddev"`
	P75     float64 `json:"p75"`
	P90     float64 `json:"p90"`
	P99     float64 `json:"p99"`
	Sum     int     `json:"sum"`
}

const sniffWindow = 1024

// Compute returns the indentation indicator for content, or nil if content
// sniffs as binary or has no non-blank lines.
func Compute(content []byte) *Data {
	if looksBinary(content) {
		return nil
	}

	depths := lineIndents(content)
	if len(depths) == 0 {
		return nil
	}

	sort.Ints(depths)

	sum := 0
	for _, d := range depths {
		sum += d
	}

	mean := float64(sum) / float64(len(depths))

	var variance float64

	for _, d := range depths {
		diff := float64(d) - mean
		variance += diff * diff
	}

	variance /= float64(len(depths))

	return &Data{
		Lines:   len(depths),
		Minimum: depths[0],
		Maximum: depths[len(depths)-1],
		Median:  percentile(depths, 50),
		Stddev:  math.Sqrt(variance),
		P75:     percentile(depths, 75),
		P90:     percentile(depths, 90),
		P99:     percentile(depths, 99),
		Sum:     sum,
	}
}

// looksBinary sniffs the first sniffWindow bytes for a NUL byte, the same
// heuristic content-inspector-style binary detectors use.
func looksBinary(content []byte) bool {
	window := content
	if len(window) > sniffWindow {
		window = window[:sniffWindow]
	}

	return bytes.IndexByte(window, 0) >= 0
}

func lineIndents(content []byte) []int {
	var depths []int

	for _, line := range bytes.Split(content, []byte("\n")) {
		trimmed := bytes.TrimRight(line, "\r")
		if len(bytes.TrimSpace(trimmed)) == 0 {
			continue
		}

		depth := 0

		for _, b := range trimmed {
			switch b {
			case ' ':
				depth++
			case '\t':
				depth += 4
			default:
				depths = append(depths, depth)
				depth = -1
			}

			if depth == -1 {
				break
			}
		}
	}

	return depths
}

// percentile linearly interpolates between the two closest ranks of a
// sorted slice.
func percentile(sorted []int, p float64) float64 {
	if len(sorted) == 1 {
		return float64(sorted[0])
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))

	if lo == hi {
		return float64(sorted[lo])
	}

	frac := rank - float64(lo)

	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}
