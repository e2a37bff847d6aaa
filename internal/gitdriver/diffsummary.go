package gitdriver

import (
	"context"
	"strconv"
	"strings"
)

// FileChange describes one file touched by a diff, classified by its
// insertion/deletion counts (spec.md §4.2: added if only insertions,
// deleted if only deletions, modified otherwise).
type FileChange struct {
	Path       string
	Insertions int
	Deletions  int
	Status     string
}

// DiffSummary is the structured result of comparing base against target
// (the working tree if target is empty): the changed files plus a total
// summary.
type DiffSummary struct {
	Files           []FileChange
	TotalInsertions int
	TotalDeletions  int
}

// Summary computes a DiffSummary for base..target (or base alone, against
// the working tree, if target is empty), built on top of DiffStat's raw
// numstat output.
func (d *Driver) Summary(ctx context.Context, base, target string) (DiffSummary, error) {
	ref := base
	if target != "" {
		ref = base + ".." + target
	}
	out, err := d.DiffStat(ctx, ref)
	if err != nil {
		return DiffSummary{}, err
	}
	return parseNumstat(out), nil
}

func parseNumstat(out string) DiffSummary {
	var summary DiffSummary
	if out == "" {
		return summary
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}
		ins := parseNumstatCount(fields[0])
		del := parseNumstatCount(fields[1])
		fc := FileChange{
			Path:       fields[2],
			Insertions: ins,
			Deletions:  del,
			Status:     classifyChange(ins, del),
		}
		summary.Files = append(summary.Files, fc)
		summary.TotalInsertions += ins
		summary.TotalDeletions += del
	}
	return summary
}

// parseNumstatCount parses a numstat count column, which git prints as "-"
// for binary files.
func parseNumstatCount(field string) int {
	if field == "-" {
		return 0
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0
	}
	return n
}

func classifyChange(insertions, deletions int) string {
	switch {
	case insertions > 0 && deletions == 0:
		return "added"
	case deletions > 0 && insertions == 0:
		return "deleted"
	default:
		return "modified"
	}
}
