// Package sysmem implements the System Memory Probe (spec.md §4.2): it
// reports total/available/percent-used host RAM, sampled fresh from the OS
// on every call, and answers the admission-control question "would X GB fit?".
package sysmem

import (
	"github.com/dustin/go-humanize"
	"github.com/elastic/go-sysinfo"

	"github.com/ByteBell/pyano/internal/logging"
)

const gb = 1024 * 1024 * 1024

// Status is a point-in-time snapshot of host memory.
type Status struct {
	AvailableGB     float64
	TotalGB         float64
	UsagePercentage float64
}

// Probe samples host memory via sysinfo. Stateless beyond the sysinfo
// handle construction cost, so a single Probe may be shared across
// goroutines without synchronization.
type Probe struct{}

func New() *Probe { return &Probe{} }

// Status reports the current host memory snapshot. Errors reading host
// memory are logged and reported as a zero-available snapshot, so that a
// probe failure degrades to "nothing fits" rather than panicking the
// manager — the same conservative direction as a real memory shortage.
func (p *Probe) Status() Status {
	host, err := sysinfo.Host()
	if err != nil {
		logging.WithField("sysmem", "error", err).Warn("could not read host info")
		return Status{}
	}
	mem, err := host.Memory()
	if err != nil {
		logging.WithField("sysmem", "error", err).Warn("could not read host memory")
		return Status{}
	}

	total := float64(mem.Total) / gb
	available := float64(mem.Available) / gb
	usage := 0.0
	if mem.Total > 0 {
		usage = float64(mem.Total-mem.Available) / float64(mem.Total) * 100
	}

	s := Status{AvailableGB: available, TotalGB: total, UsagePercentage: usage}
	logging.WithField("sysmem", "available", humanize.IBytes(mem.Available)).
		WithField("total", humanize.IBytes(mem.Total)).
		Debugf("%.1f GB available of %.1f GB (%.1f%% used)", s.AvailableGB, s.TotalGB, s.UsagePercentage)
	return s
}

// Fits reports whether the host currently has at least requiredGB of
// available memory.
func (p *Probe) Fits(requiredGB float64) bool {
	return p.Status().AvailableGB >= requiredGB
}
