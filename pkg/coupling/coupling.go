// Package coupling implements the temporal coupling engine: it turns a
// per-file set of qualifying commit timestamps into activity bursts, groups
// bursts into fixed-width time buckets, and counts which other files tend
// to change alongside each source file within the same bucket.
package coupling

import (
	"sort"
	"strings"
)

const secondsPerDay = 86400

// Config holds the coupling engine's tunable parameters. All fields are
// required except MaxCommonRoots.
type Config struct {
	BucketDays                  int     `json:"bucket_days"`
	MinBursts                   int     `json:"min_bursts"`
	MinCouplingRatio            float64 `json:"min_coupling_ratio"`
	MinActivityGapSeconds       int64   `json:"min_activity_gap_seconds"`
	CouplingTimeDistanceSeconds int64   `json:"coupling_time_distance_seconds"`
	MinDistance                 int     `json:"min_distance"`
	MaxCommonRoots              *int    `json:"max_common_roots,omitempty"`
}

// CoupledFile is one file that co-occurs with a source file in a bucket.
type CoupledFile struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// BucketRecord is one surviving (source file, bucket) coupling result.
type BucketRecord struct {
	BucketStart    int64         `json:"bucket_start"`
	BucketEnd      int64         `json:"bucket_end"`
	ActivityBursts int           `json:"activity_bursts"`
	CoupledFiles   []CoupledFile `json:"coupled_files"`
}

// Data is the coupling indicator attached to a file node: its surviving
// bucket records, ordered by bucket index.
type Data []BucketRecord

// RootMetadata is the run-level coupling metadata attached to the document
// root.
type RootMetadata struct {
	BucketSize       int64  `json:"bucket_size"`
	BucketCount      int    `json:"bucket_count"`
	FirstBucketStart int64  `json:"first_bucket_start"`
	Config           Config `json:"config"`
}

// FileInput is one file's candidate commit timestamps: the caller has
// already restricted this to files with loc.code > 0 and to commits with
// lines_added > 0 or lines_deleted > 0, per the indicator gating rule.
// Timestamps need not be sorted or deduplicated; Compute does both.
type FileInput struct {
	Path       string
	Timestamps []int64
}

type burst struct {
	start, end int64
	count      int
}

type timePoint struct {
	t     int64
	files []string
}

type sourceAgg struct {
	bursts  int
	coupled map[string]int
}

// Compute runs the five-pass coupling algorithm over inputs and returns the
// surviving per-file bucket records plus the run-level bucket metadata. It
// returns a nil metadata and an empty result if no input file carries any
// timestamp.
func Compute(inputs []FileInput, cfg Config) (map[string]Data, *RootMetadata, error) {
	fileTimestamps, timeToFiles := indexTimestamps(inputs)
	if len(timeToFiles) == 0 {
		return map[string]Data{}, nil, nil
	}

	points := buildTimePoints(timeToFiles)
	bucketSize := int64(cfg.BucketDays) * secondsPerDay
	earliest, latest := points[0].t, points[len(points)-1].t
	bucketCount := int((latest-earliest)/bucketSize) + 1
	firstBucketStart := latest - bucketSize*int64(bucketCount) + 1

	buckets := computeBuckets(fileTimestamps, points, cfg, bucketSize, firstBucketStart)
	result := filterAndEmit(buckets, cfg, bucketSize, firstBucketStart)

	meta := &RootMetadata{
		BucketSize:       bucketSize,
		BucketCount:      bucketCount,
		FirstBucketStart: firstBucketStart,
		Config:           cfg,
	}

	return result, meta, nil
}

func indexTimestamps(inputs []FileInput) (map[string][]int64, map[int64]map[string]struct{}) {
	fileTimestamps := make(map[string][]int64, len(inputs))
	timeToFiles := make(map[int64]map[string]struct{})

	for _, in := range inputs {
		ts := uniqueSorted(in.Timestamps)
		if len(ts) == 0 {
			continue
		}

		fileTimestamps[in.Path] = ts

		for _, t := range ts {
			set, ok := timeToFiles[t]
			if !ok {
				set = make(map[string]struct{})
				timeToFiles[t] = set
			}

			set[in.Path] = struct{}{}
		}
	}

	return fileTimestamps, timeToFiles
}

func computeBuckets(
	fileTimestamps map[string][]int64,
	points []timePoint,
	cfg Config,
	bucketSize, firstBucketStart int64,
) map[int]map[string]*sourceAgg {
	bucketIndex := func(t int64) int {
		return int((t - firstBucketStart) / bucketSize)
	}

	paths := make([]string, 0, len(fileTimestamps))
	for p := range fileTimestamps {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	buckets := make(map[int]map[string]*sourceAgg)

	for _, source := range paths {
		for _, b := range burstsFor(fileTimestamps[source], cfg.MinActivityGapSeconds) {
			bucket := bucketIndex(b.start)
			lo := b.start - cfg.CouplingTimeDistanceSeconds
			hi := b.end + cfg.CouplingTimeDistanceSeconds

			coupled := make(map[string]struct{})

			for _, tp := range windowedPoints(points, lo, hi) {
				for _, other := range tp.files {
					if other == source || !coupledPair(source, other, cfg.MinDistance, cfg.MaxCommonRoots) {
						continue
					}

					coupled[other] = struct{}{}
				}
			}

			agg, ok := buckets[bucket]
			if !ok {
				agg = make(map[string]*sourceAgg)
				buckets[bucket] = agg
			}

			sa, ok := agg[source]
			if !ok {
				sa = &sourceAgg{coupled: make(map[string]int)}
				agg[source] = sa
			}

			sa.bursts++

			for g := range coupled {
				sa.coupled[g]++
			}
		}
	}

	return buckets
}

func filterAndEmit(buckets map[int]map[string]*sourceAgg, cfg Config, bucketSize, firstBucketStart int64) map[string]Data {
	result := make(map[string]Data)

	bucketIdxs := make([]int, 0, len(buckets))
	for k := range buckets {
		bucketIdxs = append(bucketIdxs, k)
	}

	sort.Ints(bucketIdxs)

	for _, k := range bucketIdxs {
		sources := buckets[k]

		sourcePaths := make([]string, 0, len(sources))
		for p := range sources {
			sourcePaths = append(sourcePaths, p)
		}

		sort.Strings(sourcePaths)

		bucketStart := firstBucketStart + int64(k)*bucketSize
		bucketEnd := bucketStart + bucketSize - 1

		for _, p := range sourcePaths {
			sa := sources[p]
			if sa.bursts < cfg.MinBursts {
				continue
			}

			result[p] = append(result[p], BucketRecord{
				BucketStart:    bucketStart,
				BucketEnd:      bucketEnd,
				ActivityBursts: sa.bursts,
				CoupledFiles:   survivingCoupledFiles(sa, cfg.MinCouplingRatio),
			})
		}
	}

	return result
}

func survivingCoupledFiles(sa *sourceAgg, minRatio float64) []CoupledFile {
	couplPaths := make([]string, 0, len(sa.coupled))
	for g := range sa.coupled {
		couplPaths = append(couplPaths, g)
	}

	sort.Strings(couplPaths)

	var coupledFiles []CoupledFile

	for _, g := range couplPaths {
		count := sa.coupled[g]
		if float64(count)/float64(sa.bursts) < minRatio {
			continue
		}

		coupledFiles = append(coupledFiles, CoupledFile{Path: g, Count: count})
	}

	return coupledFiles
}

// burstsFor partitions ts (sorted ascending) into maximal runs with no
// intra-run gap exceeding minGap.
func burstsFor(ts []int64, minGap int64) []burst {
	if len(ts) == 0 {
		return nil
	}

	bursts := []burst{{start: ts[0], end: ts[0], count: 1}}

	for _, t := range ts[1:] {
		last := &bursts[len(bursts)-1]
		if t-last.end <= minGap {
			last.end = t
			last.count++

			continue
		}

		bursts = append(bursts, burst{start: t, end: t, count: 1})
	}

	return bursts
}

func buildTimePoints(timeToFiles map[int64]map[string]struct{}) []timePoint {
	ts := make([]int64, 0, len(timeToFiles))
	for t := range timeToFiles {
		ts = append(ts, t)
	}

	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	points := make([]timePoint, 0, len(ts))

	for _, t := range ts {
		files := make([]string, 0, len(timeToFiles[t]))
		for f := range timeToFiles[t] {
			files = append(files, f)
		}

		sort.Strings(files)
		points = append(points, timePoint{t: t, files: files})
	}

	return points
}

// windowedPoints returns the points with t in [lo, hi).
func windowedPoints(points []timePoint, lo, hi int64) []timePoint {
	start := sort.Search(len(points), func(i int) bool { return points[i].t >= lo })
	end := sort.Search(len(points), func(i int) bool { return points[i].t >= hi })

	if start >= end {
		return nil
	}

	return points[start:end]
}

func uniqueSorted(ts []int64) []int64 {
	if len(ts) == 0 {
		return nil
	}

	cp := append([]int64(nil), ts...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })

	out := cp[:1]

	for _, t := range cp[1:] {
		if t != out[len(out)-1] {
			out = append(out, t)
		}
	}

	return out
}

// coupledPair reports whether b may be recorded as coupled with a, per the
// common-roots/distance predicate.
func coupledPair(a, b string, minDistance int, maxCommonRoots *int) bool {
	pa := strings.Split(a, "/")
	pb := strings.Split(b, "/")

	common := commonRoots(pa, pb)
	if maxCommonRoots != nil && common > *maxCommonRoots {
		return false
	}

	if common == 0 {
		return true
	}

	distance := maxInt(len(pa), len(pb)) - common

	return distance >= minDistance
}

func commonRoots(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}

	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
