package workflow

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
	"github.com/zjrosen/swarmctl/internal/tracing"
)

// AnalyzeRepositoryRequest is the input to AnalyzeRepository (spec.md §4.6
// analyze_repository tool schema).
type AnalyzeRepositoryRequest struct {
	Scope string
	Depth int
}

// RepositoryReport is the structured, read-only report analyze_repository
// returns (SPEC_FULL.md §9: the one acceptable stdlib-only leaf — language
// tallying by file extension has no natural home in any pack dependency,
// so it is implemented as a plain directory walk rather than forcing in an
// unrelated parser library).
type RepositoryReport struct {
	Branch       string
	WorkingClean bool
	FilesScanned int
	Languages    map[string]int
	LargestFiles []string
}

const maxScanFiles = 5000

// AnalyzeRepository implements the read-only analyze_repository tool
// (spec.md §4.6): reports the calling worker's current branch, working
// tree cleanliness, and a shallow file/language census of its own
// worktree. Unlike every other tool, it has no Store side effects beyond
// the one ToolEvent it records for each call, success or failure.
func (e *Engine) AnalyzeRepository(ctx context.Context, workerID string, req AnalyzeRepositoryRequest) (report RepositoryReport, err error) {
	ctx, span := tracing.StartWorkflowSpan(ctx, e.Tracer, "analyze_repository", workerID)
	defer func() {
		tracing.EndSpan(span, err)
		e.emitToolEvent(ctx, workerID, "analyze_repository", err == nil, err)
	}()

	w, err := e.Store.GetWorker(ctx, workerID)
	if err != nil {
		return report, swarmerr.Wrap(swarmerr.KindWorkflowInstanceNotFound, "workflow", "worker not found", err)
	}
	if w.Kind != store.KindPlanning {
		return report, swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "only planning workers may analyze a repository").WithDetail("worker_id", workerID)
	}
	if w.WorktreePath == nil {
		return report, swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "worker has no worktree").WithDetail("worker_id", workerID)
	}

	inspector := e.RepoInspector(*w.WorktreePath)
	report.Branch, err = inspector.GetCurrentBranch(ctx)
	if err != nil {
		return report, err
	}
	report.WorkingClean, err = inspector.WorkingTreeClean(ctx)
	if err != nil {
		return report, err
	}

	scope := req.Scope
	if scope == "" {
		scope = *w.WorktreePath
	} else {
		scope = filepath.Join(*w.WorktreePath, scope)
	}

	report.Languages = make(map[string]int)
	type sizedFile struct {
		path string
		size int64
	}
	var largest []sizedFile

	_ = filepath.WalkDir(scope, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // a single unreadable entry shouldn't abort the whole scan
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if report.FilesScanned >= maxScanFiles {
			return filepath.SkipAll
		}
		report.FilesScanned++
		ext := filepath.Ext(path)
		if ext != "" {
			report.Languages[ext]++
		}
		if info, statErr := d.Info(); statErr == nil {
			largest = append(largest, sizedFile{path: path, size: info.Size()})
		}
		return nil
	})

	sort.Slice(largest, func(i, j int) bool { return largest[i].size > largest[j].size })
	limit := 10
	if len(largest) < limit {
		limit = len(largest)
	}
	for i := 0; i < limit; i++ {
		report.LargestFiles = append(report.LargestFiles, largest[i].path)
	}

	return report, nil
}
