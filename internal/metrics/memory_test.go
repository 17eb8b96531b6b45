package metrics

import (
	"strings"
	"testing"

	"github.com/agbru/fieldfmt/internal/format"
)

func TestMemoryCollector_Snapshot(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCollector()
	snap := mc.Snapshot()

	if snap.HeapAlloc == 0 {
		t.Error("HeapAlloc should be > 0")
	}
	if snap.Sys == 0 {
		t.Error("Sys should be > 0")
	}
}

func TestMemoryCollector_Delta(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCollector()
	before := mc.Snapshot()

	_ = make([]byte, 1024*1024)

	after := mc.Snapshot()

	if after.Sys < before.Sys {
		t.Error("Sys should not decrease between snapshots")
	}
}

func TestMemorySnapshot_Report(t *testing.T) {
	t.Parallel()

	snap := MemorySnapshot{HeapAlloc: 1536, HeapSys: 1 << 20, Sys: 0, NumGC: 3, HeapObjects: 42}
	got := snap.Report()
	want := MemoryReport{HeapAlloc: "1.50 KB", HeapSys: "1.00 MB", Sys: "0 B", NumGC: 3, HeapObjects: 42}
	if got != want {
		t.Errorf("Report() = %+v, want %+v", got, want)
	}

	if r := snap.Report(format.WithFraction(0)); r.HeapAlloc != "2 KB" {
		t.Errorf("Report(fraction 0).HeapAlloc = %q", r.HeapAlloc)
	}

	live := NewMemoryCollector().Snapshot().Report()
	if !strings.HasSuffix(live.Sys, "B") {
		t.Errorf("Sys = %q, want a unit suffix", live.Sys)
	}
}
