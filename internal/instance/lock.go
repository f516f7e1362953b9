// pattern: Imperative Shell

// Package instance coordinates salesdesk processes through lock and port
// files in the config directory.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Role names the kind of process holding a lock. Each role allows one
// running process per directory.
type Role string

const (
	RoleConsole Role = "console"
	RoleDemo    Role = "demo"
)

var (
	// ErrRunning is returned by Acquire when another process holds the role.
	ErrRunning = errors.New("already running")
	// ErrNotRunning is returned by Discover when nothing holds the role.
	ErrNotRunning = errors.New("not running")
)

func (r Role) lockPath(dir string) string {
	return filepath.Join(dir, "salesdesk-"+string(r)+".lock")
}

func (r Role) portPath(dir string) string {
	return filepath.Join(dir, "salesdesk-"+string(r)+".port")
}

// Instance is a held role lock. Release it when the process exits.
type Instance struct {
	dir  string
	role Role
	fl   *flock.Flock
}

// Acquire takes the exclusive lock for role in dir, creating dir if needed.
func Acquire(dir string, role Role) (*Instance, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create instance dir: %w", err)
	}
	fl := flock.New(role.lockPath(dir))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s lock: %w", role, err)
	}
	if !locked {
		return nil, fmt.Errorf("another salesdesk %s is %w", role, ErrRunning)
	}
	return &Instance{dir: dir, role: role, fl: fl}, nil
}

// Role returns the role this instance holds.
func (i *Instance) Role() Role {
	return i.role
}

// Publish records the listener address so Discover can find it.
func (i *Instance) Publish(addr string) error {
	if err := os.WriteFile(i.role.portPath(i.dir), []byte(addr), 0o600); err != nil {
		return fmt.Errorf("write port file: %w", err)
	}
	return nil
}

// Release removes the port file and unlocks. It is safe to call twice.
func (i *Instance) Release() {
	if i == nil || i.fl == nil {
		return
	}
	_ = os.Remove(i.role.portPath(i.dir))
	_ = i.fl.Unlock()
	i.fl = nil
}

// Cleanup removes the lock and port files left behind by a crashed
// process. It fails with ErrRunning while the role is still held.
func Cleanup(dir string, role Role) error {
	inst, err := Acquire(dir, role)
	if err != nil {
		return err
	}
	inst.Release()
	if err := os.Remove(role.lockPath(dir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
