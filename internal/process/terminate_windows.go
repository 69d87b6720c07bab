//go:build windows

package process

import (
	"os"
	"os/exec"
	"sync"

	"github.com/kolesnikovae/go-winjob"
)

var (
	jobsMu sync.Mutex
	jobs   = map[int]*winjob.Job{}
)

// onSpawn assigns the freshly-started child to a Windows Job Object so a
// forceful terminate reliably reaps the whole process tree — llama.cpp
// server processes can spawn helper threads/handles that a bare
// TerminateProcess can leave dangling (SPEC_FULL.md §4.5).
func onSpawn(cmd *exec.Cmd) {
	job, err := winjob.Create()
	if err != nil {
		return
	}
	if err := job.Assign(cmd.Process); err != nil {
		job.Close()
		return
	}
	jobsMu.Lock()
	jobs[cmd.Process.Pid] = job
	jobsMu.Unlock()
}

// terminateGracefully: llama-server has no documented graceful-shutdown
// message on Windows, so graceful and forceful collapse to the same job
// termination here — the 5s/1s staircase in Stop() still applies, it just
// has nothing additional to wait out before the forceful branch fires.
func terminateGracefully(p *os.Process) {
	terminateForcefully(p)
}

func terminateForcefully(p *os.Process) {
	jobsMu.Lock()
	job, ok := jobs[p.Pid]
	jobsMu.Unlock()
	if ok {
		_ = job.Terminate(1)
		jobsMu.Lock()
		delete(jobs, p.Pid)
		jobsMu.Unlock()
		return
	}
	_ = p.Kill()
}
