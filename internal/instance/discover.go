// pattern: Imperative Shell
package instance

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"salesdesk/internal/backend"
)

const healthTimeout = 2 * time.Second

// Discover returns the base URL (e.g. "http://127.0.0.1:12345") of a
// running process holding role in dir. It fails when nothing holds the
// lock, the port file is missing, or the health check fails.
func Discover(ctx context.Context, dir string, role Role) (string, error) {
	// If the lock can be taken, nobody is running.
	fl := flock.New(role.lockPath(dir))
	locked, err := fl.TryLock()
	if err != nil {
		return "", fmt.Errorf("failed to check %s lock: %w", role, err)
	}
	if locked {
		_ = fl.Unlock()
		return "", fmt.Errorf("salesdesk %s is %w", role, ErrNotRunning)
	}

	data, err := os.ReadFile(role.portPath(dir))
	if err != nil {
		return "", fmt.Errorf("salesdesk %s detected but port file missing: %w", role, err)
	}
	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("salesdesk %s port file is empty", role)
	}

	baseURL := "http://" + addr
	if err := backend.New(baseURL, backend.WithTimeout(healthTimeout)).Health(ctx); err != nil {
		return "", fmt.Errorf("salesdesk %s not responding: %w", role, err)
	}
	return baseURL, nil
}
