// Package net samples the default interface's RX/TX byte counters from
// /proc/net/dev and applies the graph_max auto-scaling hysteresis from
// spec §3.
package net

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sysdash/sysdash/pkg/errlog"
)

// MinGraphMax is the floor for graph_max: 10 KiB/s (spec §3).
const MinGraphMax = 10 * 1024

// Direction tracks the hysteresis state for one traffic direction
// (receive or transmit).
type Direction struct {
	prevBytes    uint64
	prevAt       time.Time
	hasPrev      bool
	GraphMax     float64
	newMaxStreak int
	newLowStreak int
	recentPeak   float64
}

func newDirection() *Direction {
	return &Direction{GraphMax: MinGraphMax}
}

// observe computes the current bytes/sec and updates the hysteresis
// counters, returning the speed and whether graph_max changed this frame
// (spec §3: a changed graph_max raises the net panel's one-shot redraw
// flag).
func (d *Direction) observe(bytes uint64, now time.Time) (speedBps float64, redraw bool) {
	defer func() {
		d.prevBytes = bytes
		d.prevAt = now
		d.hasPrev = true
	}()

	if !d.hasPrev {
		return 0, false
	}
	deltaBytes := bytes - d.prevBytes
	deltaMs := now.Sub(d.prevAt).Milliseconds()
	if deltaMs <= 0 {
		return 0, false
	}
	speedBps = float64(deltaBytes) * 1000 / float64(deltaMs)

	if speedBps > d.recentPeak {
		d.recentPeak = speedBps
	}

	if speedBps > d.GraphMax {
		d.newMaxStreak++
		d.newLowStreak = 0
	} else if speedBps < d.GraphMax/8 {
		d.newLowStreak++
		d.newMaxStreak = 0
	} else {
		d.newMaxStreak = 0
		d.newLowStreak = 0
	}

	if d.newMaxStreak >= 5 {
		d.GraphMax = d.recentPeak * 1.5
		if d.GraphMax < MinGraphMax {
			d.GraphMax = MinGraphMax
		}
		d.newMaxStreak = 0
		d.recentPeak = speedBps
		return speedBps, true
	}
	if d.newLowStreak >= 5 {
		d.GraphMax = d.recentPeak * 3
		if d.GraphMax < MinGraphMax {
			d.GraphMax = MinGraphMax
		}
		d.newLowStreak = 0
		d.recentPeak = speedBps
		return speedBps, true
	}
	return speedBps, false
}

// Snapshot is one frame's published net state.
type Snapshot struct {
	Interface    string
	RXBytesTotal uint64
	TXBytesTotal uint64
	RXBps        float64
	TXBps        float64
	RXGraphMax   float64
	TXGraphMax   float64
	Redraw       bool // either direction's graph_max changed this frame
}

// Sampler reads one interface's counters every frame.
type Sampler struct {
	log       *errlog.Log
	iface     string
	rx, tx    *Direction
	now       func() time.Time
}

// New creates a sampler for the given interface (spec §4.1: obtained once
// at init from the default route).
func New(log *errlog.Log, iface string) *Sampler {
	return &Sampler{log: log, iface: iface, rx: newDirection(), tx: newDirection(), now: time.Now}
}

func (s *Sampler) Sample() Snapshot {
	rxBytes, txBytes, err := readIfaceCounters(s.iface)
	if err != nil {
		s.log.Error(err)
		return Snapshot{Interface: s.iface}
	}

	now := s.now()
	rxSpeed, rxRedraw := s.rx.observe(rxBytes, now)
	txSpeed, txRedraw := s.tx.observe(txBytes, now)

	return Snapshot{
		Interface:    s.iface,
		RXBytesTotal: rxBytes,
		TXBytesTotal: txBytes,
		RXBps:        rxSpeed,
		TXBps:        txSpeed,
		RXGraphMax:   s.rx.GraphMax,
		TXGraphMax:   s.tx.GraphMax,
		Redraw:       rxRedraw || txRedraw,
	}
}

// DefaultInterface reads /proc/net/route to find the interface serving the
// default route (destination 00000000), the same source spec §4.1 calls
// "obtained once at init from the default route".
func DefaultInterface() (string, error) {
	f, err := os.Open("/proc/net/route")
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Scan() // header
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[1] == "00000000" {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("net: no default route found")
}

// readIfaceCounters parses /proc/net/dev for one interface's receive and
// transmit byte totals (columns 1 and 9 of the per-interface line).
func readIfaceCounters(iface string) (rxBytes, txBytes uint64, err error) {
	b, err := os.ReadFile("/proc/net/dev")
	if err != nil {
		return 0, 0, err
	}
	return parseIfaceCounters(string(b), iface)
}

func parseIfaceCounters(content, iface string) (rxBytes, txBytes uint64, err error) {
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(line[:colon])
		if name != iface {
			continue
		}
		fields := strings.Fields(line[colon+1:])
		if len(fields) < 9 {
			return 0, 0, fmt.Errorf("net: malformed /proc/net/dev row for %s", iface)
		}
		rx, _ := strconv.ParseUint(fields[0], 10, 64)
		tx, _ := strconv.ParseUint(fields[8], 10, 64)
		return rx, tx, nil
	}
	return 0, 0, fmt.Errorf("net: interface %s not found", iface)
}
