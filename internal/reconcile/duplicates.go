package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vmunix/postersync/internal/codec"
)

// CleanupResult summarizes a duplicate cleanup.
type CleanupResult struct {
	Groups  int      `json:"groups"`
	Deleted int      `json:"deleted"`
	Renamed int      `json:"renamed"`
	Failed  int      `json:"failed"`
	Details []Change `json:"details,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// rank orders duplicate candidates: current with timestamp, then current,
// then timestamped, then anything.
func rank(filename string) int {
	score := 0
	if !codec.IsOrphaned(filename) {
		score += 2
	}
	if codec.HasTimestamp(filename) {
		score++
	}
	return score
}

// PickBest chooses the file to keep among names sharing one id. Ties keep
// the earliest name in the given order.
func PickBest(names []string) (keep string, drop []string) {
	if len(names) == 0 {
		return "", nil
	}
	ordered := slices.Clone(names)
	slices.SortStableFunc(ordered, func(a, b string) int {
		return rank(b) - rank(a)
	})
	return ordered[0], ordered[1:]
}

// NeedsRefresh reports whether a kept file should be rebuilt from its
// remote record.
func NeedsRefresh(filename string) bool {
	return codec.IsOrphaned(filename) || !codec.HasTimestamp(filename)
}

// CleanupDuplicates keeps one file per id in dir and deletes the rest. When
// the kept file is orphaned or lacks a timestamp and known holds the remote
// record for its id, the file is renamed to the record's canonical name.
func (e *Engine) CleanupDuplicates(ctx context.Context, dir string, mediaType codec.MediaType, known map[string]codec.Name) (*CleanupResult, error) {
	res := &CleanupResult{}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	groups := make(map[string][]string)
	var order []string
	for _, entry := range entries {
		if entry.IsDir() || !codec.IsManaged(entry.Name()) {
			continue
		}
		id, ok := codec.ExtractID(entry.Name())
		if !ok {
			continue
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], entry.Name())
	}

	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		names := groups[id]
		if len(names) < 2 {
			continue
		}
		res.Groups++

		keep, drop := PickBest(names)
		for _, name := range drop {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
				e.log.Warn("failed to delete duplicate", "file", name, "error", err)
				continue
			}
			res.Deleted++
			res.Details = append(res.Details, Change{OldName: name, Reason: ReasonDuplicateRemoved})
			e.log.Info("deleted duplicate poster", "file", name, "kept", keep, "media_type", mediaType)
		}

		record, ok := known[id]
		if !ok || !NeedsRefresh(keep) {
			continue
		}
		record.Orphaned = false
		record.Ext = codec.Parse(keep, mediaType).Ext
		canonical, err := codec.Encode(record)
		if err != nil || canonical == keep {
			continue
		}
		if err := os.Rename(filepath.Join(dir, keep), filepath.Join(dir, canonical)); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", keep, err))
			e.log.Warn("failed to re-encode kept duplicate", "file", keep, "error", err)
			continue
		}
		res.Renamed++
		res.Details = append(res.Details, Change{OldName: keep, NewName: canonical, Reason: ReasonDuplicateReencoded})
	}

	return res, nil
}
