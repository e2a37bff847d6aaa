package agentdriver

import (
	"os/exec"
	"time"

	"github.com/patrickmn/go-cache"
)

const binaryCheckTTL = 5 * time.Minute

// binaryAvailability memoizes exec.LookPath results so that repeated
// start_tool_server/start_lm calls for the same binary (the common case:
// one LM CLI per worker kind, invoked over and over across a long-running
// orchestrator process) don't re-stat PATH on every call.
type binaryAvailability struct {
	cache *cache.Cache
}

func newBinaryAvailability() *binaryAvailability {
	return &binaryAvailability{cache: cache.New(binaryCheckTTL, 2*binaryCheckTTL)}
}

func (b *binaryAvailability) resolve(binary string) (string, error) {
	if v, ok := b.cache.Get(binary); ok {
		entry := v.(lookPathResult)
		return entry.path, entry.err
	}

	path, err := exec.LookPath(binary)
	b.cache.Set(binary, lookPathResult{path: path, err: err}, cache.DefaultExpiration)
	return path, err
}

type lookPathResult struct {
	path string
	err  error
}
