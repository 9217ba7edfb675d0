package cliconfig

import (
	"time"

	"github.com/teratoma-labs/polyglotscan/pkg/coupling"
)

const secondsPerMinute = 60

// CouplingEngineConfig translates the CLI-facing minute/day units into the
// coupling engine's second-resolution Config.
func (c *Config) CouplingEngineConfig() coupling.Config {
	return coupling.Config{
		BucketDays:                  c.CouplingConfig.BucketDays,
		MinBursts:                   c.CouplingConfig.MinBursts,
		MinCouplingRatio:            c.CouplingConfig.MinRatio,
		MinActivityGapSeconds:       int64(c.CouplingConfig.MinActivityGapMinutes) * secondsPerMinute,
		CouplingTimeDistanceSeconds: int64(c.CouplingConfig.TimeOverlapMinutes) * secondsPerMinute,
		MinDistance:                 c.CouplingConfig.MinDistance,
		MaxCommonRoots:              c.CouplingConfig.MaxCommonRoots,
	}
}

// GitSince translates --years into the absolute cutoff the git log reader
// filters on, or nil when no horizon was requested.
func (c *Config) GitSince(now time.Time) *time.Time {
	if c.Years <= 0 {
		return nil
	}

	since := now.AddDate(-c.Years, 0, 0)

	return &since
}
