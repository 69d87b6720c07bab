// Package process implements the Model Process Supervisor (spec.md §4.5):
// it spawns/terminates the child inference server, runs health-check
// polling, and owns the child handle.
package process

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"

	"github.com/ByteBell/pyano/internal/adapter"
	"github.com/ByteBell/pyano/internal/logging"
	"github.com/ByteBell/pyano/internal/model"
	"github.com/ByteBell/pyano/internal/pyanoerr"
)

const (
	healthCheckInterval = 2 * time.Second
	healthCheckTimeout  = 60 * time.Second
	gracefulWait        = 5 * time.Second
	postKillWait        = 1 * time.Second
)

// Supervisor owns exactly one child process for one Model State and drives
// it through the Stopped -> Loading -> Running / Error -> Unloading ->
// Stopped state machine described in spec.md §4.5.
type Supervisor struct {
	State    *model.State
	manifest *adapter.Manifest

	cmd    *exec.Cmd
	cancel context.CancelFunc
	exited chan error
}

// New returns a Supervisor for st, resolving its adapter command through m.
func New(st *model.State, m *adapter.Manifest) *Supervisor {
	return &Supervisor{State: st, manifest: m}
}

// Start is a no-op if the supervisor is already Running. Otherwise it sets
// Loading, builds the adapter command, spawns it with piped stdout/stderr,
// and polls health until Running or the health-check budget is exhausted.
func (s *Supervisor) Start(ctx context.Context) error {
	if s.State.Status().IsRunning() {
		return nil
	}

	log := logging.WithField("process", "model", s.State.Name())
	log.Info("starting model process")
	s.State.SetStatus(model.Loading())

	childCtx, cancel := context.WithCancel(context.Background())
	cmd, err := adapter.BuildCommand(childCtx, s.manifest, s.State)
	if err != nil {
		cancel()
		s.State.SetStatus(model.Errorf("%v", err))
		return err
	}

	// Discard output rather than forward it, but never block on a full
	// pipe (spec.md §4.5: "contents may be discarded or forwarded to a
	// logger; must not block on a full pipe").
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	log.Debugf("spawning: %s %v", cmd.Path, cmd.Args)
	if err := cmd.Start(); err != nil {
		cancel()
		s.State.SetStatus(model.Errorf("spawn failed: %v", err))
		return pyanoerr.NewProcessError("spawn failed for %s: %v", s.State.Name(), err)
	}

	s.cmd = cmd
	s.cancel = cancel
	s.State.SetPID(cmd.Process.Pid)
	onSpawn(cmd)

	s.exited = make(chan error, 1)
	go func() {
		s.exited <- cmd.Wait()
	}()

	port := s.State.Port()
	if port == nil {
		err := pyanoerr.NewProcessError("Port not configured")
		s.State.SetStatus(model.Errorf("%v", err))
		_ = s.Stop()
		return err
	}

	if err := s.waitForHealth(ctx, *port); err != nil {
		s.State.SetStatus(model.Errorf("%v", err))
		_ = s.Stop()
		return err
	}

	s.State.SetStatus(model.Running())
	s.State.Touch()
	log.Info("model process is ready")
	return nil
}

// waitForHealth polls GET /health every healthCheckInterval until it
// succeeds, the child exits early, or healthCheckTimeout elapses.
func (s *Supervisor) waitForHealth(ctx context.Context, port int) error {
	url := fmt.Sprintf("http://localhost:%d/health", port)
	deadline := time.Now().Add(healthCheckTimeout)
	client := &http.Client{Timeout: healthCheckInterval}

	for time.Now().Before(deadline) {
		select {
		case err := <-s.exited:
			return pyanoerr.NewProcessError("process exited with status: %v", err)
		case <-ctx.Done():
			return pyanoerr.NewProcessError("health check cancelled: %v", ctx.Err())
		default:
		}

		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
		}
		time.Sleep(healthCheckInterval)
	}

	return pyanoerr.NewProcessError("health check timeout after %s for model %s", healthCheckTimeout, s.State.Name())
}

// Stop is idempotent: stopping an already-stopped supervisor is a no-op.
// Termination is graceful-then-forceful: send a platform termination
// signal, wait up to 5s, force-kill if still alive, wait up to 1s more,
// then force-kill unconditionally as a defensive second shot (spec.md
// §4.5, §9).
func (s *Supervisor) Stop() error {
	if s.cmd == nil || s.cmd.Process == nil {
		s.State.SetStatus(model.Stopped())
		return nil
	}

	log := logging.WithField("process", "model", s.State.Name())
	terminateGracefully(s.cmd.Process)

	select {
	case <-s.exited:
	case <-time.After(gracefulWait):
		log.Warn("graceful termination timed out, force-killing")
		terminateForcefully(s.cmd.Process)
		select {
		case <-s.exited:
		case <-time.After(postKillWait):
		}
	}

	// Defensive second shot: harmless on an already-dead process
	// (spec.md §9 permits collapsing this on platforms that guarantee
	// reaping; we keep it for parity with the original).
	terminateForcefully(s.cmd.Process)

	if s.cancel != nil {
		s.cancel()
	}
	s.cmd = nil
	s.State.SetStatus(model.Stopped())
	log.Info("model process stopped")
	return nil
}
