package hostingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

// GHClient shells out to the gh CLI to create pull requests.
type GHClient struct {
	// Binary is the gh executable to invoke. Defaults to "gh".
	Binary string
	// WorkDir is the repository directory gh runs in.
	WorkDir string
}

// NewGHClient returns a GHClient rooted at workDir, invoking the default
// "gh" binary.
func NewGHClient(workDir string) *GHClient {
	return &GHClient{Binary: "gh", WorkDir: workDir}
}

var _ HostingClient = (*GHClient)(nil)

// CreatePullRequest shells out to `gh pr create --json number,url ...`.
func (c *GHClient) CreatePullRequest(ctx context.Context, req PRRequest) (PRResult, error) {
	bin := c.Binary
	if bin == "" {
		bin = "gh"
	}

	args := []string{"pr", "create",
		"--title", req.Title,
		"--body", req.Body,
		"--base", req.Base,
		"--head", req.Head,
		"--json", "number,url",
	}
	if req.Repo != "" {
		args = append(args, "--repo", req.Repo)
	}
	if req.Draft {
		args = append(args, "--draft")
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = c.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if msg == "" {
			msg = err.Error()
		}
		return PRResult{}, swarmerr.Wrap(swarmerr.KindHostingRequestFailed, "hostingclient", fmt.Sprintf("gh pr create failed: %s", msg), err)
	}

	var result PRResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return PRResult{}, swarmerr.Wrap(swarmerr.KindHostingRequestFailed, "hostingclient", "failed to parse gh pr create output", err)
	}

	log.Info(log.CatHosting, "created pull request", "number", result.Number, "url", result.URL)
	return result, nil
}
