package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/swarmctl/internal/agentdriver"
	"github.com/zjrosen/swarmctl/internal/gitdriver"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
	"github.com/zjrosen/swarmctl/internal/termdriver"
)

// fakeStore is a minimal in-memory store.Store, enough to drive Engine
// unit tests without a real SQLite connection.
type fakeStore struct {
	mu      sync.Mutex
	workers map[string]*store.Worker
	events  []*store.ToolEvent
	rels    []*store.Relationship
	issues  []*store.IssueRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{workers: make(map[string]*store.Worker)}
}

func (s *fakeStore) CreateWorker(_ context.Context, w *store.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	s.workers[w.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateWorker(_ context.Context, id string, patch store.WorkerPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[id]
	if !ok {
		return swarmerr.New(swarmerr.KindStoreNotFound, "store", "worker not found").WithDetail("id", id)
	}
	if patch.Status != nil {
		w.Status = *patch.Status
	}
	if patch.WorktreePath != nil {
		w.WorktreePath = patch.WorktreePath
	} else if patch.ClearWorktreePath {
		w.WorktreePath = nil
	}
	if patch.Branch != nil {
		w.Branch = patch.Branch
	} else if patch.ClearBranch {
		w.Branch = nil
	}
	if patch.BaseBranch != nil {
		w.BaseBranch = patch.BaseBranch
	} else if patch.ClearBaseBranch {
		w.BaseBranch = nil
	}
	if patch.SessionName != nil {
		w.SessionName = patch.SessionName
	} else if patch.ClearSessionName {
		w.SessionName = nil
	}
	if patch.LMPid != nil {
		w.LMPid = patch.LMPid
	} else if patch.ClearLMPid {
		w.LMPid = nil
	}
	if patch.ToolServerPid != nil {
		w.ToolServerPid = patch.ToolServerPid
	} else if patch.ClearToolServerPid {
		w.ToolServerPid = nil
	}
	if patch.PRNumber != nil {
		w.PRNumber = patch.PRNumber
	}
	if patch.PRURL != nil {
		w.PRURL = patch.PRURL
	}
	if patch.LastActivity != nil {
		w.LastActivity = *patch.LastActivity
	}
	if patch.TerminatedAt != nil {
		w.TerminatedAt = patch.TerminatedAt
	}
	return nil
}

func (s *fakeStore) GetWorker(_ context.Context, id string) (*store.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[id]
	if !ok {
		return nil, swarmerr.New(swarmerr.KindStoreNotFound, "store", "worker not found").WithDetail("id", id)
	}
	cp := *w
	return &cp, nil
}

func (s *fakeStore) ListWorkers(_ context.Context, _ store.ListFilter) ([]*store.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Worker, 0, len(s.workers))
	for _, w := range s.workers {
		cp := *w
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) CreateRelationship(_ context.Context, r *store.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rels = append(s.rels, r)
	return nil
}

func (s *fakeStore) GetRelationships(_ context.Context, workerID string) ([]*store.Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.Relationship
	for _, r := range s.rels {
		if r.ParentID == workerID || r.ChildID == workerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateRelationshipMetadata(_ context.Context, id int64, metadata string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rels {
		if r.ID == id {
			r.Metadata = metadata
			return nil
		}
	}
	return swarmerr.New(swarmerr.KindStoreNotFound, "store", "relationship not found")
}

func (s *fakeStore) LogToolEvent(_ context.Context, e *store.ToolEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events = append(s.events, &cp)
	return nil
}

func (s *fakeStore) CreateIssueRecord(_ context.Context, rec *store.IssueRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, rec)
	return nil
}

func (s *fakeStore) GetIssueRecord(_ context.Context, number int, owner, name string) (*store.IssueRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.issues {
		if rec.Number == number && rec.RepoOwner == owner && rec.RepoName == name {
			return rec, nil
		}
	}
	return nil, swarmerr.New(swarmerr.KindStoreNotFound, "store", "issue not found")
}

func (s *fakeStore) GetConfigEntry(_ context.Context, _ string) (*store.ConfigEntry, error) {
	return nil, swarmerr.New(swarmerr.KindStoreNotFound, "store", "not found")
}

func (s *fakeStore) SetConfigEntry(_ context.Context, _ *store.ConfigEntry) error { return nil }

func (s *fakeStore) Backup(_ context.Context, _ string) error { return nil }
func (s *fakeStore) Vacuum(_ context.Context) error            { return nil }
func (s *fakeStore) Close() error                              { return nil }

// eventsFor returns every ToolEvent recorded against workerID, in order.
func (s *fakeStore) eventsFor(workerID string) []*store.ToolEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.ToolEvent
	for _, e := range s.events {
		if e.WorkerID == workerID {
			out = append(out, e)
		}
	}
	return out
}

// fakeInspector is a RepoInspector with fixed, test-controlled answers.
type fakeInspector struct {
	branch string
	clean  bool
	err    error
}

func (f *fakeInspector) GetCurrentBranch(_ context.Context) (string, error) {
	return f.branch, f.err
}
func (f *fakeInspector) WorkingTreeClean(_ context.Context) (bool, error) { return f.clean, f.err }
func (f *fakeInspector) Summary(_ context.Context, _, _ string) (gitdriver.DiffSummary, error) {
	return gitdriver.DiffSummary{}, nil
}
func (f *fakeInspector) CommitLog(_ context.Context, _ string, _ int) ([]gitdriver.CommitInfo, error) {
	return nil, nil
}

// fakeGit is a GitDriver whose worktree teardown can be forced to fail.
type fakeGit struct {
	validateErr     error
	removeErr       error
	removedPaths    []string
	createdWorktree bool
}

func (f *fakeGit) ValidateRepo(_ context.Context) (gitdriver.Repo, error) {
	if f.validateErr != nil {
		return gitdriver.Repo{}, f.validateErr
	}
	return gitdriver.Repo{Branch: "main", Clean: true}, nil
}

func (f *fakeGit) CreateWorktree(_ context.Context, _, _, _ string) error {
	f.createdWorktree = true
	return nil
}

func (f *fakeGit) RemoveWorktree(_ context.Context, path string) error {
	f.removedPaths = append(f.removedPaths, path)
	return f.removeErr
}

// fakeTerm is a TermDriver whose session teardown can be forced to fail.
type fakeTerm struct {
	killErr error
}

func (f *fakeTerm) CreateSession(_ context.Context, _ termdriver.CreateSessionRequest) (*termdriver.SessionInfo, error) {
	return &termdriver.SessionInfo{}, nil
}
func (f *fakeTerm) KillSession(_ context.Context, _ string, _ termdriver.KillSessionOptions) error {
	return f.killErr
}
func (f *fakeTerm) SendKeys(_ context.Context, _, _ string, _ bool) error { return nil }

// fakeAgent is a no-op AgentDriver; Launch/SpawnReview tests that need
// subprocess handles are out of scope here (covered by manual review of
// launch.go/reviewspawn.go), so every method returns zero values.
type fakeAgent struct{}

func (fakeAgent) StartLM(_ context.Context, _ agentdriver.LMSpec) (*agentdriver.Handle, error) {
	return &agentdriver.Handle{}, nil
}
func (fakeAgent) StartToolServer(_ context.Context, _ agentdriver.ToolServerSpec) (*agentdriver.Handle, error) {
	return &agentdriver.Handle{}, nil
}
func (fakeAgent) TerminateLM(_ context.Context, _ *agentdriver.Handle, _ agentdriver.TerminateOptions) error {
	return nil
}
func (fakeAgent) TerminateToolServer(_ context.Context, _ *agentdriver.Handle, _ agentdriver.TerminateOptions) error {
	return nil
}
func (fakeAgent) TerminatePID(_ context.Context, _ int, _ agentdriver.TerminateOptions) error {
	return nil
}

func newWorker(id string, kind store.Kind, status store.Status) *store.Worker {
	now := time.Now()
	return &store.Worker{ID: id, Kind: kind, Status: status, CreatedAt: now, LastActivity: now}
}
