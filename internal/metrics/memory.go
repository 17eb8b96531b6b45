// Package metrics reads process memory statistics and reports them in
// humanized units.
package metrics

import (
	"runtime"

	"github.com/agbru/fieldfmt/internal/format"
)

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc   uint64 // bytes in use by the heap
	HeapSys     uint64 // bytes obtained from the OS for the heap
	Sys         uint64 // total bytes obtained from the OS
	NumGC       uint32 // number of completed GC cycles
	HeapObjects uint64 // number of allocated heap objects
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:   m.HeapAlloc,
		HeapSys:     m.HeapSys,
		Sys:         m.Sys,
		NumGC:       m.NumGC,
		HeapObjects: m.HeapObjects,
	}
}

// MemoryReport is a MemorySnapshot with byte counts humanized.
type MemoryReport struct {
	HeapAlloc   string `json:"heapAlloc"`
	HeapSys     string `json:"heapSys"`
	Sys         string `json:"sys"`
	NumGC       uint32 `json:"numGC"`
	HeapObjects uint64 `json:"heapObjects"`
}

// Report formats the byte counts of s with base-1024 units.
func (s MemorySnapshot) Report(opts ...format.BytesOption) MemoryReport {
	return MemoryReport{
		HeapAlloc:   format.BytesUint(s.HeapAlloc, opts...),
		HeapSys:     format.BytesUint(s.HeapSys, opts...),
		Sys:         format.BytesUint(s.Sys, opts...),
		NumGC:       s.NumGC,
		HeapObjects: s.HeapObjects,
	}
}
