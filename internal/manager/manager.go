// Package manager implements the Model Manager (spec.md §4.6) — the heart
// of the system. It owns the registry, the memory probe, and the
// loaded-models table, and exposes get_llm/load/unload/status/list plus
// memory-aware admission control with LRU eviction.
package manager

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ByteBell/pyano/internal/adapter"
	"github.com/ByteBell/pyano/internal/downloader"
	"github.com/ByteBell/pyano/internal/envcfg"
	"github.com/ByteBell/pyano/internal/ggufmeta"
	"github.com/ByteBell/pyano/internal/logging"
	"github.com/ByteBell/pyano/internal/model"
	"github.com/ByteBell/pyano/internal/process"
	"github.com/ByteBell/pyano/internal/pyanoerr"
	"github.com/ByteBell/pyano/internal/registry"
	"github.com/ByteBell/pyano/internal/sysmem"
)

const (
	loadBudget         = 5 * time.Second
	manageMemoryBudget = 10 * time.Second
	lockRetryInterval  = 1 * time.Second
	lockRetrySleep     = 100 * time.Millisecond
)

// supervisor is the subset of *process.Supervisor the Manager relies on.
// Abstracting it lets tests exercise admission and eviction logic with a
// fake that never actually spawns a child process.
type supervisor interface {
	Start(ctx context.Context) error
	Stop() error
}

// entry is one row of the loaded-models table: a model's live State paired
// with the supervisor driving its child process.
type entry struct {
	state      *model.State
	supervisor supervisor
}

// memProbe is the subset of *sysmem.Probe the Manager relies on, so tests
// can substitute a deterministic fake instead of reading real host memory.
type memProbe interface {
	Fits(requiredGB float64) bool
	Status() sysmem.Status
}

// Manager owns the registry, the memory probe, and the loaded-models
// table. A single Manager is shared process-wide.
type Manager struct {
	reg      *registry.Registry
	mem      memProbe
	manifest *adapter.Manifest

	mu    sync.RWMutex
	table map[string]*entry

	// weightsMeta caches the WeightsMetadata addition from spec.md §3,
	// keyed by model name, populated by GetLLM's weights check the first
	// time a model's weights are found on disk or freshly downloaded.
	weightsMu   sync.Mutex
	weightsMeta map[string]ggufmeta.Info

	loadGroup singleflight.Group

	// newSupervisor is overridable in tests; the zero value wires the real
	// process.Supervisor.
	newSupervisor func(st *model.State, m *adapter.Manifest) supervisor
}

// New constructs a Manager from a Registry and an adapter Manifest, using a
// fresh memory probe.
func New(reg *registry.Registry, manifest *adapter.Manifest) *Manager {
	return &Manager{
		reg:         reg,
		mem:         sysmem.New(),
		manifest:    manifest,
		table:       make(map[string]*entry),
		weightsMeta: make(map[string]ggufmeta.Info),
		newSupervisor: func(st *model.State, m *adapter.Manifest) supervisor {
			return process.New(st, m)
		},
	}
}

// Request pairs a freshly-constructed Model State with the Manager that
// will drive it, as returned by GetLLM (spec.md §4.6 get_llm).
type Request struct {
	Manager *Manager
	State   *model.State
	Config  registry.ModelConfig
}

// GetLLM looks up name in the registry, downloads its weights if they are
// missing and a URL with download_if_not_exist is configured, and builds a
// fresh Model State with opts overlaid. Missing weights that cannot be
// downloaded only log a warning; GetLLM still returns the Request. It does not touch the loaded-models table (spec.md §4.6:
// "read-mostly and must NOT lock the loaded-models table").
func (m *Manager) GetLLM(ctx context.Context, name string, opts *model.CallOptions) (*Request, error) {
	cfg, ok := m.reg.Get(name)
	if !ok {
		return nil, &pyanoerr.ModelNotFoundError{Name: name}
	}

	log := logging.WithField("manager", "model", name)

	if err := m.ensureWeights(ctx, cfg); err != nil {
		return nil, err
	}

	st := model.New(cfg, opts)
	log.Debug("constructed model state")
	return &Request{Manager: m, State: st, Config: cfg}, nil
}

func (m *Manager) ensureWeights(ctx context.Context, cfg registry.ModelConfig) error {
	full := filepath.Join(envcfg.ModelHome(), cfg.ModelConfig.ModelPath)
	if fileExists(full) {
		m.cacheWeightsMeta(cfg.Name(), full)
		return nil
	}

	log := logging.WithField("manager", "model", cfg.Name())
	if cfg.ModelConfig.ModelURL == nil || !cfg.ModelConfig.DownloadIfNotExist {
		log.Warn("weights missing and download_if_not_exist is false or no URL configured")
		return nil
	}

	dest, err := downloader.Download(ctx, *cfg.ModelConfig.ModelURL, envcfg.ModelHome())
	if err != nil {
		return err
	}
	m.cacheWeightsMeta(cfg.Name(), dest)
	return nil
}

// cacheWeightsMeta best-effort parses path as a GGUF file and caches the
// result under name, the spec.md §3 WeightsMetadata addition. A parse
// failure is silently dropped — weights metadata is never load-bearing.
func (m *Manager) cacheWeightsMeta(name, path string) {
	m.weightsMu.Lock()
	defer m.weightsMu.Unlock()
	if _, ok := m.weightsMeta[name]; ok {
		return
	}
	if info, err := ggufmeta.Describe(path); err == nil {
		m.weightsMeta[name] = info
	}
}

// DescribeWeights returns the cached WeightsMetadata for name (spec.md §3),
// populated by GetLLM once its weights file is on disk (already present or
// freshly downloaded) and parses as GGUF. It returns ModelNotFoundError for an unknown
// name, and a ConfigError if no metadata has been captured yet (weights
// missing, not yet downloaded, or not a parseable GGUF file) — callers must
// treat its absence as informational, never as a load-blocking condition.
func (m *Manager) DescribeWeights(name string) (ggufmeta.Info, error) {
	if _, ok := m.reg.Get(name); !ok {
		return ggufmeta.Info{}, &pyanoerr.ModelNotFoundError{Name: name}
	}

	m.weightsMu.Lock()
	defer m.weightsMu.Unlock()
	info, ok := m.weightsMeta[name]
	if !ok {
		return ggufmeta.Info{}, pyanoerr.NewConfigError("no weights metadata captured yet for %s", name)
	}
	return info, nil
}

// Load starts the child process for state if it isn't already Running. A
// quick read-locked check short-circuits the common "already loaded" case;
// otherwise memory is made to fit, the table write lock is acquired under
// the tiered protocol, and the Supervisor is started and inserted.
//
// Concurrent Loads of the same model name are collapsed via singleflight,
// so only one of them actually calls Supervisor.Start — the others observe
// its result (spec.md §5: "two concurrent loads of the same name observe
// the later one as a no-op if the first succeeded").
func (m *Manager) Load(ctx context.Context, st *model.State) error {
	name := st.Name()

	if m.isRunning(name) {
		return nil
	}

	_, err, _ := m.loadGroup.Do(name, func() (any, error) {
		return nil, m.doLoad(ctx, st)
	})
	return err
}

func (m *Manager) isRunning(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.table[name]
	return ok && e.state.Status().IsRunning()
}

func (m *Manager) doLoad(ctx context.Context, st *model.State) error {
	name := st.Name()
	if m.isRunning(name) {
		return nil
	}

	if err := m.manageMemory(ctx, st.Config.MemoryConfig.MinRAMGB); err != nil {
		return err
	}

	release, err := m.acquireWrite(ctx, "load", loadBudget)
	if err != nil {
		return err
	}
	defer release()

	if e, ok := m.table[name]; ok && e.state.Status().IsRunning() {
		return nil
	}

	// Re-check fits under this same write lock, immediately before
	// insertion: manageMemory's own fits re-check happened under a lock it
	// has since released (spec.md §9 / DESIGN.md), so a third loader could
	// have consumed the freed RAM in the window between that unlock and
	// this re-lock. Evict again here, still holding the lock, rather than
	// trust the earlier pass.
	if !m.mem.Fits(st.Config.MemoryConfig.MinRAMGB) {
		if err := m.evictUntilFitsLocked(st.Config.MemoryConfig.MinRAMGB); err != nil {
			return err
		}
	}

	sup := m.newSupervisor(st, m.manifest)
	if err := sup.Start(ctx); err != nil {
		return err
	}

	m.table[name] = &entry{state: st, supervisor: sup}
	return nil
}

// Unload stops and removes name from the table. A no-op for an unknown
// name.
func (m *Manager) Unload(ctx context.Context, name string) error {
	release, err := m.acquireWrite(ctx, "unload", loadBudget)
	if err != nil {
		return err
	}
	defer release()

	e, ok := m.table[name]
	if !ok {
		return nil
	}
	if err := e.supervisor.Stop(); err != nil {
		return err
	}
	delete(m.table, name)
	return nil
}

// Status returns the current status of name, or ModelNotFoundError.
func (m *Manager) Status(name string) (model.Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.table[name]
	if !ok {
		return model.Status{}, &pyanoerr.ModelNotFoundError{Name: name}
	}
	return e.state.Status(), nil
}

// List returns a snapshot of every currently-loaded model name.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.table))
	for name := range m.table {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// manageMemory implements spec.md §4.6's memory-aware admission: a fast
// path when the host already fits requiredGB, otherwise LRU eviction of
// loaded models (oldest last_used first) until it fits or candidates are
// exhausted.
func (m *Manager) manageMemory(ctx context.Context, requiredGB float64) error {
	if m.mem.Fits(requiredGB) {
		return nil
	}

	release, err := m.acquireWrite(ctx, "manage_memory", manageMemoryBudget)
	if err != nil {
		return err
	}
	defer release()

	// Re-check under the lock: a concurrent manage_memory pass (or a Load
	// that inserted before we got here) may already have freed enough, or
	// the landscape may have changed since the fast-path probe above.
	if m.mem.Fits(requiredGB) {
		return nil
	}

	return m.evictUntilFitsLocked(requiredGB)
}

// evictUntilFitsLocked assumes the table write lock is already held. It
// evicts loaded models oldest-last_used-first until the memory probe
// reports requiredGB fits, or returns a MemoryError once candidates are
// exhausted (or there were none to begin with).
func (m *Manager) evictUntilFitsLocked(requiredGB float64) error {
	if len(m.table) == 0 {
		status := m.mem.Status()
		return &pyanoerr.MemoryError{
			RequiredGB:      requiredGB,
			AvailableGB:     status.AvailableGB,
			TotalGB:         status.TotalGB,
			UsagePercentage: status.UsagePercentage,
			NoCandidates:    true,
		}
	}

	candidates := m.evictionOrderLocked()

	var unloaded []string
	var freed float64
	failed := make(map[string]string)

	for _, name := range candidates {
		e := m.table[name]
		if err := e.supervisor.Stop(); err != nil {
			failed[name] = err.Error()
			continue
		}
		delete(m.table, name)
		unloaded = append(unloaded, name)
		freed += e.state.Config.MemoryConfig.MinRAMGB

		if m.mem.Fits(requiredGB) {
			return nil
		}
	}

	status := m.mem.Status()
	return &pyanoerr.MemoryError{
		RequiredGB:      requiredGB,
		AvailableGB:     status.AvailableGB,
		TotalGB:         status.TotalGB,
		UsagePercentage: status.UsagePercentage,
		Unloaded:        unloaded,
		FreedGB:         freed,
		Failed:          failed,
	}
}

// evictionOrderLocked ranks the current table entries by last_used
// ascending (oldest first). Ties break by name, giving a stable order
// independent of Go's randomized map iteration (spec.md §4.6: "stable
// order matching iteration order over the table" — since Go offers no
// such stable iteration order, name is the closest deterministic analogue).
func (m *Manager) evictionOrderLocked() []string {
	names := make([]string, 0, len(m.table))
	for name := range m.table {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ti := m.table[names[i]].state.LastUsed()
		tj := m.table[names[j]].state.LastUsed()
		if ti.Equal(tj) {
			return names[i] < names[j]
		}
		return ti.Before(tj)
	})
	return names
}

// lockEvent is a structured record of a lock-acquisition attempt, emitted
// for post-mortem diagnosis (spec.md §4.6: "All acquisitions emit
// structured lock events").
type lockEvent struct {
	op       string
	attempt  int
	acquired bool
}

func (e lockEvent) log() {
	logging.WithField("manager", "op", e.op).
		WithField("attempt", e.attempt).
		WithField("acquired", e.acquired).
		Debug("lock event")
}

// acquireWrite acquires the table write lock under the three-tier policy
// from spec.md §4.6: an immediate non-blocking try, then a timed loop of
// try-acquire attempts every lockRetryInterval separated by lockRetrySleep,
// up to budget. It returns a release function; on exhaustion it returns a
// ProcessError naming op and the attempt count.
func (m *Manager) acquireWrite(ctx context.Context, op string, budget time.Duration) (func(), error) {
	if m.mu.TryLock() {
		lockEvent{op: op, attempt: 1, acquired: true}.log()
		return m.mu.Unlock, nil
	}

	deadline := time.Now().Add(budget)
	attempt := 1
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, pyanoerr.NewProcessError("%s: lock acquisition cancelled: %v", op, ctx.Err())
		default:
		}

		attempt++
		if m.mu.TryLock() {
			lockEvent{op: op, attempt: attempt, acquired: true}.log()
			return m.mu.Unlock, nil
		}
		lockEvent{op: op, attempt: attempt, acquired: false}.log()
		time.Sleep(lockRetrySleep)

		// A full lockRetryInterval between tries per spec.md §4.6; the
		// sleep above is the 100ms component, this accounts for the rest
		// of the 1s cadence.
		if remaining := lockRetryInterval - lockRetrySleep; remaining > 0 {
			time.Sleep(remaining)
		}
	}

	return nil, pyanoerr.NewProcessError("%s: timed out acquiring table lock after %d attempt(s)", op, attempt)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
