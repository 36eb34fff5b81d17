// Package proctable sorts, paginates, filters, and tracks selection over a
// process sample (spec §3, §4.4's process panel). It generalizes the
// teacher's generic indices-over-a-backing-slice filtered list
// (pkg/gui/panels/filtered_list.go in the example pack) from Docker
// containers to process rows: a visible-row set is kept as an index slice
// into the full sample rather than a copy, so re-filtering or re-sorting
// never touches the sample itself.
//
// The teacher's FilteredList guards every field with a sync.RWMutex
// because containers are refreshed from a background poller while the gui
// goroutine reads concurrently. This program has no such split (spec §4.5:
// one cooperative loop, no worker goroutines touch UI state), so the
// mutex is dropped; SetRows and every mutator run on the same goroutine as
// the renderer.
package proctable

import (
	"sort"
	"strings"

	"github.com/fvbommel/sortorder"

	"github.com/sysdash/sysdash/pkg/config"
	"github.com/sysdash/sysdash/pkg/ring"
	"github.com/sysdash/sysdash/pkg/sampler/proc"
	"github.com/sysdash/sysdash/pkg/utils"
)

// microGraphWidth and microGraphTTL implement spec §3's per-PID "recent
// activity" gate: a micro-graph is only maintained (and drawn) for
// `microGraphTTL` frames following the most recent nonzero cpu% sample.
const (
	microGraphWidth = 5
	microGraphTTL   = 5
)

type microState struct {
	hist *ring.Ring[float64]
	ttl  int
}

// Table is the process panel's UI-state-bearing view over a process
// sample (spec §3's "UI state" paragraph).
type Table struct {
	rows    []proc.Row // full sample, as published by pkg/sampler/proc
	indices []int      // rows[indices[i]] is the i-th visible (filtered+sorted) row

	filter   string
	sortCol  config.ProcSorting
	reversed bool

	pageHeight int // height-3, i.e. rows_on_page (spec §4.3)
	page       int // 1-based, clamped to [1, Pages()]
	selected   int // 0-based offset within the current page

	pinnedPID      int32
	detailedKilled bool

	micro map[int32]*microState
}

// New returns an empty table. SetPageHeight must be called with the real
// process panel height before SetRows is first useful.
func New() *Table {
	return &Table{page: 1, pageHeight: 1}
}

// SetPageHeight records rows_on_page = panel height - 3 (top border, header
// and bottom border, which carries the page indicator and legend; spec
// §4.3/§4.4), reclamping page/selection.
func (t *Table) SetPageHeight(h int) {
	if h < 1 {
		h = 1
	}
	t.pageHeight = h
	t.clamp()
}

// SetRows replaces the backing sample and rebuilds the filtered, sorted
// index set. pinnedKilled, forwarded from the sampler's secondary read,
// sets DetailedKilled when the pinned PID has disappeared from /proc.
func (t *Table) SetRows(rows []proc.Row, pinnedKilled bool) {
	t.rows = rows
	t.detailedKilled = pinnedKilled
	t.updateMicroGraphs(rows)
	t.rebuild()
}

// updateMicroGraphs pushes each row's cpu% onto its per-PID history and
// advances the recent-activity TTL, dropping state for PIDs no longer
// present in the sample (spec §3).
func (t *Table) updateMicroGraphs(rows []proc.Row) {
	if t.micro == nil {
		t.micro = make(map[int32]*microState)
	}
	seen := make(map[int32]bool, len(rows))
	for _, r := range rows {
		seen[r.PID] = true
		st, ok := t.micro[r.PID]
		if !ok {
			st = &microState{hist: ring.New[float64](microGraphWidth)}
			t.micro[r.PID] = st
		}
		st.hist.Push(r.CPUPct)
		if r.CPUPct > 0 {
			st.ttl = microGraphTTL
		} else if st.ttl > 0 {
			st.ttl--
		}
	}
	for pid := range t.micro {
		if !seen[pid] {
			delete(t.micro, pid)
		}
	}
}

// MicroGraph returns the recent cpu% history for pid and whether its
// recent-activity TTL is still live (i.e. a micro-graph should be drawn
// for it this frame).
func (t *Table) MicroGraph(pid int32) ([]float64, bool) {
	st, ok := t.micro[pid]
	if !ok || st.ttl <= 0 {
		return nil, false
	}
	return st.hist.Values(), true
}

// SetFilter sets the substring filter applied to name+argv tail (spec §3
// scenario 6: a pinned PID matching the filter stays visible; the pin
// itself is independent of filtering — see PinnedRow).
func (t *Table) SetFilter(s string) {
	t.filter = s
	t.rebuild()
}

func (t *Table) Filter() string { return t.filter }

// SetSort changes the sort column and direction.
func (t *Table) SetSort(col config.ProcSorting, reversed bool) {
	t.sortCol = col
	t.reversed = reversed
	t.rebuild()
}

func (t *Table) Sort() (config.ProcSorting, bool) { return t.sortCol, t.reversed }

// ReverseSort toggles the reverse flag in place (bound to the 'R' key).
func (t *Table) ReverseSort() {
	t.reversed = !t.reversed
	t.rebuild()
}

func (t *Table) rebuild() {
	t.indices = t.indices[:0]
	if cap(t.indices) < len(t.rows) {
		t.indices = make([]int, 0, len(t.rows))
	}
	for i, r := range t.rows {
		if t.matches(r) {
			t.indices = append(t.indices, i)
		}
	}
	sort.SliceStable(t.indices, func(a, b int) bool {
		return t.less(t.rows[t.indices[a]], t.rows[t.indices[b]])
	})
	t.clamp()
}

func (t *Table) matches(r proc.Row) bool {
	if t.filter == "" {
		return true
	}
	needle := strings.ToLower(t.filter)
	return strings.Contains(strings.ToLower(r.Name), needle) ||
		strings.Contains(strings.ToLower(r.ArgvTail), needle)
}

func (t *Table) less(a, b proc.Row) bool {
	if t.reversed {
		a, b = b, a
	}
	switch t.sortCol {
	case config.SortPID:
		return a.PID < b.PID
	case config.SortProgram:
		return sortorder.NaturalLess(a.Name, b.Name)
	case config.SortArguments:
		return sortorder.NaturalLess(a.ArgvTail, b.ArgvTail)
	case config.SortThreads:
		return a.NThreads < b.NThreads
	case config.SortUser:
		return sortorder.NaturalLess(a.User, b.User)
	case config.SortMemory:
		return a.MemPct < b.MemPct
	default:
		return a.CPUPct < b.CPUPct
	}
}

// clamp enforces page ∈ [1, Pages()] and selected ∈ [0,
// min(rows_on_page, height−3)] (spec §8).
func (t *Table) clamp() {
	t.page = utils.Clamp(t.page, 1, t.Pages())
	onPage := t.rowsOnPage(t.page)
	max := utils.Min(onPage-1, t.pageHeight-1)
	if max < 0 {
		max = 0
	}
	t.selected = utils.Clamp(t.selected, 0, max)
}

// Pages returns ⌈n/rows_on_page⌉, floored at 1 so an empty table still has
// a valid single page to display (spec §8's literal ⌈(|rows|−1)/h⌉ is
// off-by-one for n=1; resolved here as a plain ceiling division — see
// DESIGN.md).
func (t *Table) Pages() int {
	n := len(t.indices)
	if n == 0 {
		return 1
	}
	pages := (n + t.pageHeight - 1) / t.pageHeight
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (t *Table) rowsOnPage(page int) int {
	n := len(t.indices)
	start := (page - 1) * t.pageHeight
	if start >= n {
		return 0
	}
	end := start + t.pageHeight
	if end > n {
		end = n
	}
	return end - start
}

// Page returns the current 1-based page number and total page count.
func (t *Table) Page() (page, pages int) { return t.page, t.Pages() }

// Selected returns the 0-based offset of the selected row within the
// current page.
func (t *Table) Selected() int { return t.selected }

// VisibleRows returns the rows on the current page, in display order.
func (t *Table) VisibleRows() []proc.Row {
	n := len(t.indices)
	start := (t.page - 1) * t.pageHeight
	if start >= n {
		return nil
	}
	end := start + t.pageHeight
	if end > n {
		end = n
	}
	out := make([]proc.Row, 0, end-start)
	for _, idx := range t.indices[start:end] {
		out = append(out, t.rows[idx])
	}
	return out
}

// SelectedRow returns the row currently under the selection cursor, if
// any rows are visible.
func (t *Table) SelectedRow() (proc.Row, bool) {
	rows := t.VisibleRows()
	if t.selected >= len(rows) {
		return proc.Row{}, false
	}
	return rows[t.selected], true
}

// MoveSelection moves the cursor by delta rows, crossing page boundaries
// at the top/bottom of the current page.
func (t *Table) MoveSelection(delta int) {
	t.selected += delta
	for t.selected < 0 && t.page > 1 {
		t.page--
		t.selected += t.pageHeight
	}
	for {
		onPage := t.rowsOnPage(t.page)
		limit := onPage - 1
		if limit < 0 {
			limit = 0
		}
		if t.selected <= limit || t.page >= t.Pages() {
			break
		}
		t.selected -= t.pageHeight
		t.page++
	}
	t.clamp()
}

// PageDown and PageUp move one full page, keeping the in-page offset.
func (t *Table) PageDown() { t.page++; t.clamp() }
func (t *Table) PageUp()   { t.page--; t.clamp() }

// Home and End jump to the first/last page.
func (t *Table) Home() { t.page = 1; t.clamp() }
func (t *Table) End()  { t.page = t.Pages(); t.clamp() }

// Pin sets the detail-pane PID. It does not itself require the PID to be
// present in the current sample: the sampler fetches it via a secondary
// read on the next Sample call if it's been filtered or paged out (spec
// §3).
func (t *Table) Pin(pid int32) {
	t.pinnedPID = pid
	t.detailedKilled = false
}

// Unpin clears the detail-pane PID.
func (t *Table) Unpin() {
	t.pinnedPID = 0
	t.detailedKilled = false
}

// Pinned returns the pinned PID and whether one is set.
func (t *Table) Pinned() (int32, bool) { return t.pinnedPID, t.pinnedPID != 0 }

// DetailedKilled reports whether the pinned PID vanished from /proc on the
// most recent sample.
func (t *Table) DetailedKilled() bool { return t.detailedKilled }

// PinnedRow finds the pinned PID's row in the full (unfiltered, unpaged)
// sample, since a pinned process "remains fetched and appended to the
// process sample" even when the filter would otherwise exclude it.
func (t *Table) PinnedRow() (proc.Row, bool) {
	if t.pinnedPID == 0 {
		return proc.Row{}, false
	}
	for _, r := range t.rows {
		if r.PID == t.pinnedPID {
			return r, true
		}
	}
	return proc.Row{}, false
}

// TogglePin pins the given PID if nothing (or a different PID) is
// currently pinned, and unpins if it's already the pinned PID — the
// Enter-key "show/hide detail for selected" behavior (spec §6).
func (t *Table) TogglePin(pid int32) {
	if t.pinnedPID == pid {
		t.Unpin()
		return
	}
	t.Pin(pid)
}
