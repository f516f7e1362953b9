// pattern: Imperative Shell

// Package process runs a child process, such as a bundled demo backend,
// restarting it when it fails and forwarding its output to the log.
package process

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"salesdesk/internal/logging"
)

// RestartPolicy controls when a process is restarted after exit.
type RestartPolicy int

const (
	Never     RestartPolicy = iota // Never restart
	OnFailure                      // Restart only on non-zero exit
	Always                         // Always restart (unless Stop is called)
)

const (
	defaultRetryDelay  = time.Second
	defaultStopTimeout = 5 * time.Second
	maxRetryDelay      = 30 * time.Second
)

// Config describes a child process to supervise.
type Config struct {
	Name   string
	Binary string
	Args   []string
	// Env is appended to the parent's environment.
	Env []string

	RestartOn  RestartPolicy
	MaxRetries int // 0 retries forever
	// RetryDelay is the first restart delay; it doubles per consecutive
	// failure up to 30s.
	RetryDelay time.Duration
	// StopTimeout is how long Stop waits after SIGTERM before SIGKILL.
	StopTimeout time.Duration
}

// Supervisor manages the lifecycle of a child process.
type Supervisor struct {
	cfg    Config
	logger *logging.ScopedLogger

	mu       sync.Mutex
	cmd      *exec.Cmd
	started  bool
	running  bool
	stopped  bool
	starts   int
	lastExit int
	done     chan struct{}
}

// NewSupervisor creates a new child process supervisor.
func NewSupervisor(cfg Config, logger *logging.ScopedLogger) *Supervisor {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Supervisor{
		cfg:    cfg,
		logger: logger.With("process", cfg.Name),
		done:   make(chan struct{}),
	}
}

// Start launches the child process in a goroutine. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("supervisor: already started")
	}
	s.started = true
	s.running = true
	go s.run(ctx)
	return nil
}

// Stop sends SIGTERM, waits up to StopTimeout, then SIGKILL. It returns
// once the supervisor has exited.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	s.stopped = true
	cmd := s.cmd
	running := s.running
	s.mu.Unlock()

	if !running {
		return
	}
	if cmd == nil || cmd.Process == nil || cmd.Process.Signal(syscall.SIGTERM) != nil {
		<-s.done
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(s.cfg.StopTimeout):
	}

	s.logger.Warn("process ignored SIGTERM, killing")
	s.mu.Lock()
	cmd = s.cmd
	s.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	<-s.done
}

// Running reports whether the supervisor is still managing the process.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Starts returns how many times the process has been launched.
func (s *Supervisor) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// LastExit returns the exit code of the most recent run, -1 when it did
// not exit normally.
func (s *Supervisor) LastExit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastExit
}

// Done is closed when the supervisor gives up: the process exited without
// a restart, retries ran out, ctx ended or Stop was called.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

func (s *Supervisor) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Supervisor) run(ctx context.Context) {
	defer close(s.done)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	delay := s.cfg.RetryDelay
	for retries := 0; ; retries++ {
		if s.isStopped() {
			return
		}
		code := s.runOnce(ctx)
		if s.isStopped() || ctx.Err() != nil {
			return
		}

		restart := false
		switch s.cfg.RestartOn {
		case Always:
			restart = true
		case OnFailure:
			restart = code != 0
		}
		if !restart {
			return
		}
		if s.cfg.MaxRetries > 0 && retries >= s.cfg.MaxRetries {
			s.logger.Error("max retries exceeded", "retries", retries, "exit_code", code)
			return
		}

		s.logger.Info("restarting process", "attempt", retries+1, "delay", delay.String())
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

func (s *Supervisor) runOnce(ctx context.Context) int {
	cmd := exec.CommandContext(ctx, s.cfg.Binary, s.cfg.Args...)
	if len(s.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), s.cfg.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.logger.Error("failed to create stdout pipe", "error", err)
		return s.exited(-1)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.logger.Error("failed to create stderr pipe", "error", err)
		return s.exited(-1)
	}

	s.logger.Info("starting process", "binary", s.cfg.Binary, "args", s.cfg.Args)
	if err := cmd.Start(); err != nil {
		s.logger.Error("failed to start process", "error", err)
		return s.exited(-1)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.starts++
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go s.forward(&wg, stdout, "stdout")
	go s.forward(&wg, stderr, "stderr")
	wg.Wait()
	err = cmd.Wait()

	s.mu.Lock()
	s.cmd = nil
	s.mu.Unlock()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			s.logger.Warn("process exited", "exit_code", exitErr.ExitCode())
			return s.exited(exitErr.ExitCode())
		}
		s.logger.Info("process stopped", "error", err)
		return s.exited(-1)
	}

	s.logger.Info("process exited cleanly")
	return s.exited(0)
}

func (s *Supervisor) exited(code int) int {
	s.mu.Lock()
	s.lastExit = code
	s.mu.Unlock()
	return code
}

// forward logs each line the child writes.
func (s *Supervisor) forward(wg *sync.WaitGroup, r io.Reader, stream string) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.logger.Debug(scanner.Text(), "stream", stream)
	}
}
