// Package cpu samples aggregate and per-thread CPU usage, frequency, load
// average, uptime, and (optionally) temperatures (spec §4.1).
//
// The tick accounting is grounded on ja7ad-consumption's
// pkg/system/proc.ReadSystemCPU: read /proc/stat, sum the same four
// fields, and diff against the previous sample. This package additionally
// tracks every per-thread "cpuN" row, not just the aggregate line.
package cpu

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/sysdash/sysdash/pkg/errlog"
)

// ticks holds the raw busy/idle counters read from one /proc/stat row.
type ticks struct {
	busy, idle uint64
}

// Snapshot is one frame's published CPU state.
type Snapshot struct {
	Name        string    // custom_cpu_name override, else the detected model name
	Usage       []float64 // index 0 = aggregate, 1..N = per-thread
	FreqMHz     float64
	LoadAvg1    float64
	LoadAvg5    float64
	LoadAvg15   float64
	UptimeSec   float64
	Temps       []float64 // empty if temperature sampling disabled/unavailable
	TempHigh    float64
	TempCrit    float64
	TempEnabled bool
}

// Sampler holds the previous-frame tick counters needed to compute deltas,
// plus sticky state for the temperature probe (spec §4.1: a single parse
// failure disables it for the remainder of the run).
type Sampler struct {
	prev map[int]ticks
	log  *errlog.Log

	tempAttempted bool
	tempEnabled   bool
	tempHigh      float64
	tempCrit      float64
	nCores        int

	customName string
	modelName  string
	nameRead   bool
}

// New creates a CPU sampler. nCores is the physical core count, used to
// mirror per-core temperatures onto hyperthread siblings. customName
// overrides the detected model name in every snapshot when non-empty
// (spec §6's custom_cpu_name: "empty uses detected name").
func New(log *errlog.Log, nCores int, customName string) *Sampler {
	return &Sampler{prev: make(map[int]ticks), log: log, nCores: nCores, customName: customName}
}

// Sample reads /proc/stat, /proc/loadavg, /proc/uptime, and the cpufreq
// files, returning a snapshot. wantTemps enables the sensors(1) probe.
func (s *Sampler) Sample(wantTemps bool) (Snapshot, error) {
	rows, err := readStat()
	if err != nil {
		return Snapshot{}, err
	}

	usage := make([]float64, len(rows))
	for i, row := range rows {
		prev, ok := s.prev[i]
		if ok {
			usage[i] = percent(prev, row)
		}
		s.prev[i] = row
	}

	snap := Snapshot{Usage: usage}
	snap.FreqMHz = readFreqMHz()
	snap.Name = s.name()

	if l1, l5, l15, err := readLoadAvg(); err == nil {
		snap.LoadAvg1, snap.LoadAvg5, snap.LoadAvg15 = l1, l5, l15
	} else {
		s.log.Error(err)
	}
	if up, err := readUptime(); err == nil {
		snap.UptimeSec = up
	} else {
		s.log.Error(err)
	}

	if wantTemps && !s.tempAttempted {
		s.tempAttempted = true
		if _, high, crit, err := readSensors(s.nCores); err == nil {
			s.tempEnabled = true
			s.tempHigh, s.tempCrit = high, crit
		} else {
			s.log.Error(err)
		}
	}
	if s.tempEnabled {
		if temps, _, _, err := readSensors(s.nCores); err == nil {
			nthreads := len(rows) - 1
			snap.Temps = mirrorTemps(temps, s.nCores, nthreads)
			snap.TempHigh = s.tempHigh
			snap.TempCrit = s.tempCrit
			snap.TempEnabled = true
		} else {
			s.tempEnabled = false
			s.log.Error(err)
		}
	}

	return snap, nil
}

// name returns customName if set, else the lazily-detected model name.
func (s *Sampler) name() string {
	if s.customName != "" {
		return s.customName
	}
	if !s.nameRead {
		s.nameRead = true
		s.modelName = readModelName()
	}
	return s.modelName
}

// percent implements spec §3's CPU state formula:
// 100 * (delta_busy - delta_idle) / delta_busy, clamped to [0,100].
func percent(prev, cur ticks) float64 {
	dBusy := int64(cur.busy - prev.busy)
	dIdle := int64(cur.idle - prev.idle)
	if dBusy <= 0 {
		return 0
	}
	pct := 100 * float64(dBusy-dIdle) / float64(dBusy)
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// readStat parses /proc/stat's "cpu" and "cpuN" rows in order, row 0 being
// the aggregate. busy = user+nice+system+idle, idle = idle (spec §3's
// literal formula, which folds idle into both terms).
func readStat() ([]ticks, error) {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseStat(f)
}

func parseStat(r io.Reader) ([]ticks, error) {
	var rows []ticks
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "cpu") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 || (fields[0] != "cpu" && !isDigitSuffix(fields[0])) {
			continue
		}
		user, _ := strconv.ParseUint(fields[1], 10, 64)
		nice, _ := strconv.ParseUint(fields[2], 10, 64)
		system, _ := strconv.ParseUint(fields[3], 10, 64)
		idle, _ := strconv.ParseUint(fields[4], 10, 64)
		rows = append(rows, ticks{busy: user + nice + system + idle, idle: idle})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cpu: no rows in /proc/stat")
	}
	return rows, nil
}

func isDigitSuffix(field string) bool {
	if !strings.HasPrefix(field, "cpu") || len(field) <= 3 {
		return false
	}
	for _, r := range field[3:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// readFreqMHz reads the current frequency from cpuinfo, falling back to the
// cpufreq scaling file (spec §4.1).
func readFreqMHz() float64 {
	if b, err := os.ReadFile("/proc/cpuinfo"); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(b)))
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(line, "cpu MHz") {
				parts := strings.SplitN(line, ":", 2)
				if len(parts) == 2 {
					if v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
						return v
					}
				}
			}
		}
	}
	if b, err := os.ReadFile("/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"); err == nil {
		if khz, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64); err == nil {
			return khz / 1000
		}
	}
	return 0
}

// readModelName reads /proc/cpuinfo's first "model name" line.
func readModelName() string {
	b, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "model name") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1])
			}
		}
	}
	return ""
}

func readLoadAvg() (l1, l5, l15 float64, err error) {
	b, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, 0, 0, err
	}
	return parseLoadAvg(string(b))
}

func parseLoadAvg(content string) (l1, l5, l15 float64, err error) {
	fields := strings.Fields(content)
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("cpu: malformed /proc/loadavg")
	}
	l1, _ = strconv.ParseFloat(fields[0], 64)
	l5, _ = strconv.ParseFloat(fields[1], 64)
	l15, _ = strconv.ParseFloat(fields[2], 64)
	return l1, l5, l15, nil
}

func readUptime() (float64, error) {
	b, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0, err
	}
	return parseUptime(string(b))
}

func parseUptime(content string) (float64, error) {
	fields := strings.Fields(content)
	if len(fields) < 1 {
		return 0, fmt.Errorf("cpu: malformed /proc/uptime")
	}
	return strconv.ParseFloat(fields[0], 64)
}

var sensorsPackageRe = regexp.MustCompile(`(?i)package.*?:\s*\+?(-?[\d.]+)`)
var sensorsCoreRe = regexp.MustCompile(`(?i)Core\s+(\d+):\s*\+?(-?[\d.]+)`)
var sensorsHighRe = regexp.MustCompile(`high\s*=\s*\+?(-?[\d.]+)`)
var sensorsCritRe = regexp.MustCompile(`crit\s*=\s*\+?(-?[\d.]+)`)

// readSensors shells out to sensors(1) and extracts the package temperature
// (index 0), per-core temperatures (indices 1..cores), and the package
// high/crit thresholds (spec §4.1). A parse failure returns an error so the
// caller can permanently disable temperature sampling.
func readSensors(cores int) (temps []float64, high, crit float64, err error) {
	out, err := exec.Command("sensors").Output()
	if err != nil {
		return nil, 0, 0, err
	}
	text := string(out)

	pkgMatch := sensorsPackageRe.FindStringSubmatch(text)
	if pkgMatch == nil {
		return nil, 0, 0, fmt.Errorf("cpu: sensors output had no package temperature")
	}
	pkg, _ := strconv.ParseFloat(pkgMatch[1], 64)
	temps = append(temps, pkg)

	coreTemps := make(map[int]float64)
	for _, m := range sensorsCoreRe.FindAllStringSubmatch(text, -1) {
		idx, _ := strconv.Atoi(m[1])
		v, _ := strconv.ParseFloat(m[2], 64)
		coreTemps[idx] = v
	}
	for i := 0; i < cores; i++ {
		temps = append(temps, coreTemps[i])
	}

	if m := sensorsHighRe.FindStringSubmatch(text); m != nil {
		high, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := sensorsCritRe.FindStringSubmatch(text); m != nil {
		crit, _ = strconv.ParseFloat(m[1], 64)
	}
	return temps, high, crit, nil
}

// mirrorTemps extends the per-core temperature slice to per-thread: when
// hyperthreading means nthreads > cores, thread i+cores mirrors core i's
// reading (spec §4.1).
func mirrorTemps(temps []float64, cores, nthreads int) []float64 {
	if len(temps) == 0 {
		return nil
	}
	out := make([]float64, nthreads+1)
	copy(out, temps)
	if nthreads > cores {
		for i := 0; i < cores && i+cores+1 < len(out); i++ {
			out[i+cores+1] = temps[minInt(i+1, len(temps)-1)]
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
