package system

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo is a snapshot of the machine the frames are rendered on.
type HostInfo struct {
	LogicalCPUs  int
	PhysicalCPUs int
	TotalMem     uint64
	AvailableMem uint64
}

// GetHostInfo опрашивает систему. Ошибки gopsutil не фатальны: берем то, что есть.
func GetHostInfo() HostInfo {
	info := HostInfo{LogicalCPUs: runtime.NumCPU(), PhysicalCPUs: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		info.LogicalCPUs = n
	}
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		info.PhysicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMem = vm.Total
		info.AvailableMem = vm.Available
	}
	return info
}

func (h HostInfo) String() string {
	return fmt.Sprintf("CPU %d (%d физ.) | RAM %.1f/%.1f GiB свободно",
		h.LogicalCPUs, h.PhysicalCPUs, gib(h.AvailableMem), gib(h.TotalMem))
}

// RecommendedWorkers caps the requested worker count so that in-flight frames
// (each frameBytes large, supersampled) fit into half of the available memory.
func (h HostInfo) RecommendedWorkers(requested int, frameBytes uint64) int {
	workers := requested
	if workers <= 0 {
		workers = h.LogicalCPUs
	}
	if workers <= 0 {
		workers = 1
	}
	if h.AvailableMem > 0 && frameBytes > 0 {
		// Каждый воркер держит кадр рендера и кадр в очереди на кодирование.
		limit := int(h.AvailableMem / 2 / (frameBytes * 2))
		if limit < 1 {
			limit = 1
		}
		if workers > limit {
			workers = limit
		}
	}
	return workers
}

func gib(b uint64) float64 {
	return float64(b) / (1 << 30)
}
