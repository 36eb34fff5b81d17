// Package proc samples the process table (spec §4.1, §3). Process
// enumeration (pid, name, user, thread count, argv) comes from
// gopsutil/v4/process; the process table is sorted/paginated/filtered by
// pkg/proctable (not this package).
//
// CPU% is NOT gopsutil's: the core recomputes it per spec §3 from
// /proc/<pid>/stat's utime/stime ticks, following the same field
// extraction as ja7ad-consumption's ReadProcStat (split on the last
// ") " to safely skip a comm field that may itself contain spaces or
// parens, then index into the remaining numeric fields).
package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/sysdash/sysdash/pkg/errlog"
	"github.com/sysdash/sysdash/pkg/utils"
)

// ClockTicksPerSec is HZ, the kernel's jiffies-per-second constant, almost
// always 100 on Linux.
const ClockTicksPerSec = 100

// Row is one process table entry for one frame.
type Row struct {
	PID      int32
	Name     string
	ArgvTail string
	NThreads int32
	User     string
	MemPct   float32
	CPUPct   float64
	RSSBytes uint64

	// Detail-pane extras: only consulted when this row is the pinned
	// process, so a failed read leaves them at their zero values rather
	// than dropping the row (spec §7's "skip the affected field" rule).
	Status      string
	ParentPID   int32
	ElapsedSec  float64
}

type prevTick struct {
	ticks uint64
	at    time.Time
}

// Sampler keeps the per-PID previous tick counters needed for delta-based
// CPU% (spec §3), and garbage-collects dead PIDs every GCEveryNFrames
// frames.
type Sampler struct {
	log   *errlog.Log
	prev  map[int32]prevTick
	now   func() time.Time
	frame int
}

const GCEveryNFrames = 100

func New(log *errlog.Log) *Sampler {
	return &Sampler{log: log, prev: make(map[int32]prevTick), now: time.Now}
}

// Sample enumerates all processes via gopsutil, then overwrites each row's
// CPU% with the delta-based value from /proc/<pid>/stat. pinnedPID, if
// nonzero and not present in the primary sample, is fetched via a
// secondary read and appended (spec §4.1).
func (s *Sampler) Sample(pinnedPID int32) ([]Row, bool) {
	procs, err := process.Processes()
	if err != nil {
		s.log.Error(err)
		return nil, false
	}

	rows := make([]Row, 0, len(procs))
	seen := make(map[int32]bool)
	pinnedSeen := false

	for _, p := range procs {
		row, ok := s.buildRow(p)
		if !ok {
			continue
		}
		seen[row.PID] = true
		if row.PID == pinnedPID {
			pinnedSeen = true
		}
		rows = append(rows, row)
	}

	pinnedKilled := false
	if pinnedPID != 0 && !pinnedSeen {
		p, err := process.NewProcess(pinnedPID)
		if err != nil {
			pinnedKilled = true
		} else if row, ok := s.buildRow(p); ok {
			rows = append(rows, row)
		} else {
			pinnedKilled = true
		}
	}

	s.frame++
	if s.frame >= GCEveryNFrames {
		s.frame = 0
		s.gc(seen)
	}

	return rows, pinnedKilled
}

func (s *Sampler) buildRow(p *process.Process) (Row, bool) {
	name, err := p.Name()
	if err != nil {
		return Row{}, false
	}
	nthreads, _ := p.NumThreads()
	user, _ := p.Username()
	memPct, _ := p.MemoryPercent()
	var rss uint64
	if meminfo, err := p.MemoryInfo(); err == nil && meminfo != nil {
		rss = meminfo.RSS
	}
	cmdline, _ := p.Cmdline()
	ppid, _ := p.Ppid()
	statuses, _ := p.Status()
	status := ""
	if len(statuses) > 0 {
		status = statuses[0]
	}
	var elapsed float64
	if createMs, err := p.CreateTime(); err == nil {
		elapsed = s.now().Sub(time.UnixMilli(createMs)).Seconds()
	}

	cpuPct := s.deltaCPUPercent(p.Pid, int(nthreads))

	return Row{
		PID:        p.Pid,
		Name:       name,
		ArgvTail:   argvTail(cmdline, name),
		NThreads:   nthreads,
		User:       user,
		MemPct:     float32(utils.Round1(float64(memPct))),
		CPUPct:     utils.Round1(cpuPct),
		RSSBytes:   rss,
		Status:     status,
		ParentPID:  ppid,
		ElapsedSec: elapsed,
	}, true
}

// deltaCPUPercent implements spec §3's process CPU% formula:
// delta_ticks * 1000 * 1000 / (HZ * delta_ms * nthreads), divided by 10
// for one-decimal display. Returns 0 if /proc/<pid>/stat can't be read,
// and buildRow stores that 0 in the row; the listing utility's own CPU%
// is not used as a fallback.
func (s *Sampler) deltaCPUPercent(pid int32, nthreads int) float64 {
	ticks, err := readProcStatTicks(pid)
	if err != nil {
		return 0
	}
	now := s.now()

	prev, ok := s.prev[pid]
	s.prev[pid] = prevTick{ticks: ticks, at: now}
	if !ok {
		return 0
	}

	deltaTicks := ticks - prev.ticks
	deltaMs := now.Sub(prev.at).Milliseconds()
	if deltaMs <= 0 || nthreads <= 0 {
		return 0
	}

	pct := float64(deltaTicks) * 1000 * 1000 / (float64(ClockTicksPerSec) * float64(deltaMs) * float64(nthreads))
	pct /= 10
	if max := 100 * float64(nthreads); pct > max {
		pct = max
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// readProcStatTicks returns utime+stime from /proc/<pid>/stat, grounded on
// ja7ad-consumption's ReadProcStat field-splitting technique.
func readProcStatTicks(pid int32) (uint64, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, fmt.Errorf("proc: empty /proc/%d/stat", pid)
	}
	line := sc.Text()

	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return 0, fmt.Errorf("proc: malformed /proc/%d/stat", pid)
	}
	fields := strings.Fields(line[i+2:])
	// utime is the 14th field overall -> fields[11]; stime the 15th -> fields[12].
	if len(fields) < 13 {
		return 0, fmt.Errorf("proc: short /proc/%d/stat", pid)
	}
	utime, _ := strconv.ParseUint(fields[11], 10, 64)
	stime, _ := strconv.ParseUint(fields[12], 10, 64)
	return utime + stime, nil
}

// argvTail returns the command-line tail (everything after the executable
// name), or empty if unavailable.
func argvTail(cmdline, name string) string {
	cmdline = strings.TrimSpace(cmdline)
	if cmdline == "" || cmdline == name {
		return ""
	}
	if strings.HasPrefix(cmdline, name) {
		return strings.TrimSpace(cmdline[len(name):])
	}
	return cmdline
}

// gc drops cached tick state for PIDs no longer observed (spec §3).
func (s *Sampler) gc(seen map[int32]bool) {
	for pid := range s.prev {
		if !seen[pid] {
			delete(s.prev, pid)
		}
	}
}
