// Package mem samples memory, swap, and disk usage (spec §4.1). Memory and
// swap come from /proc/meminfo on a 5-frame cadence; disk usage comes from
// gopsutil/v4/disk, covering the same data as the `df` utility without
// shelling out to it.
package mem

import (
	"bufio"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/sysdash/sysdash/pkg/errlog"
)

// SampleEveryNFrames amortizes the meminfo/disk read cost (spec §4.1).
const SampleEveryNFrames = 5

var excludedFSTypes = map[string]bool{
	"squashfs": true,
	"tmpfs":    true,
	"devtmpfs": true,
	"overlay":  true,
}

// Snapshot is one refresh's published memory/swap/disk state.
type Snapshot struct {
	TotalBytes     uint64
	UsedPct        float64
	AvailablePct   float64
	FreePct        float64
	CachedPct      float64
	SwapTotalBytes uint64
	SwapUsedPct    float64

	Disks []DiskUsage
}

// DiskUsage is one mounted filesystem's usage row.
type DiskUsage struct {
	Name     string // mount basename, or "root" for "/"
	Total    uint64
	Used     uint64
	Free     uint64
	UsedPct  float64
	FreePct  float64
}

// Sampler refreshes memory/disk state every SampleEveryNFrames calls to
// Sample; intermediate calls return the cached snapshot unchanged.
type Sampler struct {
	log     *errlog.Log
	counter int
	cached  Snapshot
}

func New(log *errlog.Log) *Sampler {
	return &Sampler{log: log}
}

// Sample advances the frame counter, refreshing meminfo/disk data every
// SampleEveryNFrames frames (spec §4.1).
func (s *Sampler) Sample() Snapshot {
	if s.counter == 0 {
		if snap, err := s.refresh(); err == nil {
			s.cached = snap
		} else {
			s.log.Error(err)
		}
	}
	s.counter = (s.counter + 1) % SampleEveryNFrames
	return s.cached
}

func (s *Sampler) refresh() (Snapshot, error) {
	b, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return Snapshot{}, err
	}

	snap, err := parseMeminfoText(string(b))
	if err != nil {
		return Snapshot{}, err
	}

	if parts, err := disk.Partitions(false); err == nil {
		snap.Disks = readDiskUsage(parts)
	} else {
		s.log.Error(err)
	}
	return snap, nil
}

// parseMeminfoText parses the kernel meminfo export and computes
// percentages of total for used/available/free/cached (spec §4.1).
// used = total-available.
func parseMeminfoText(content string) (Snapshot, error) {
	vals := make(map[string]uint64)
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := line[:colon]
		rest := strings.Fields(strings.TrimSpace(line[colon+1:]))
		if len(rest) == 0 {
			continue
		}
		kb, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			continue
		}
		vals[key] = kb * 1024
	}

	total := vals["MemTotal"]
	available := vals["MemAvailable"]
	free := vals["MemFree"]
	cached := vals["Cached"]

	snap := Snapshot{TotalBytes: total}
	if total > 0 {
		used := total - available
		snap.UsedPct = pct(used, total)
		snap.AvailablePct = pct(available, total)
		snap.FreePct = pct(free, total)
		snap.CachedPct = pct(cached, total)
	}

	if swapTotal := vals["SwapTotal"]; swapTotal > 0 {
		swapFree := vals["SwapFree"]
		snap.SwapTotalBytes = swapTotal
		snap.SwapUsedPct = pct(swapTotal-swapFree, swapTotal)
	}
	return snap, nil
}

func pct(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

func readDiskUsage(parts []disk.PartitionStat) []DiskUsage {
	var out []DiskUsage
	seen := make(map[string]bool)
	for _, p := range parts {
		if excludedFSTypes[strings.ToLower(p.Fstype)] {
			continue
		}
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			continue
		}
		name := mountName(p.Mountpoint)
		out = append(out, DiskUsage{
			Name:    name,
			Total:   usage.Total,
			Used:    usage.Used,
			Free:    usage.Free,
			UsedPct: usage.UsedPercent,
			FreePct: 100 - usage.UsedPercent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func mountName(mountpoint string) string {
	if mountpoint == "/" {
		return "root"
	}
	parts := strings.Split(strings.TrimRight(mountpoint, "/"), "/")
	return parts[len(parts)-1]
}
