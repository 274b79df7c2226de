package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a snapshot of this process and the host it runs on.
type Stats struct {
	RSS        uint64  // Resident memory of this process, bytes
	CPUPercent float64 // Process CPU use since it started
	Threads    int32
	CPUs       int
	HostMemory float64 // Host memory in use, percent
}

// ProcessStats samples the current process. Fields that cannot be read on this platform
// are left zero; only a failure to open the process is an error.
func ProcessStats() (Stats, error) {
	var s Stats

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, fmt.Errorf("open process: %w", err)
	}
	if mi, err := p.MemoryInfo(); err == nil {
		s.RSS = mi.RSS
	}
	if pct, err := p.CPUPercent(); err == nil {
		s.CPUPercent = pct
	}
	if n, err := p.NumThreads(); err == nil {
		s.Threads = n
	}
	if n, err := cpu.Counts(true); err == nil {
		s.CPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.HostMemory = vm.UsedPercent
	}
	return s, nil
}

func (s Stats) String() string {
	return fmt.Sprintf("RSS: %.1f MiB | CPU: %.1f%% | Threads: %d | Host CPUs: %d | Host memory: %.1f%%",
		float64(s.RSS)/(1<<20), s.CPUPercent, s.Threads, s.CPUs, s.HostMemory)
}
