package scan

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"memscan/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidConstraints is returned when the supplied collection fails
	// validation; no scan work is started.
	ErrInvalidConstraints = errors.New("invalid constraint collection")

	// ErrMissingPriorSnapshot is returned when a delta or change-state
	// constraint is present but the input snapshot has no previous values.
	ErrMissingPriorSnapshot = errors.New("constraint requires a prior snapshot")
)

// scanChunkSize bounds the bytes one worker handles per unit so very large
// regions parallelize too
const scanChunkSize = 1 << 20

// ScannerOption configures a Scanner
type ScannerOption func(*Scanner)

// WithWorkers sets the maximum number of concurrent filter workers.
// Defaults to the number of CPUs.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Scanner filters a snapshot down to the elements that satisfy every
// constraint in a collection, producing the survivor snapshot for the next
// pass. The input snapshot is only read, never modified.
type Scanner struct {
	workers int
	log     *logger.Logger

	elemsDone  atomic.Uint64
	elemsTotal atomic.Uint64
}

// NewScanner creates a Scanner
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorLimeGreen, coloransi.ColorOrange, "scanner")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Progress returns the fraction of elements evaluated so far in the running
// pass, in [0, 1]. Safe to call from any goroutine.
func (s *Scanner) Progress() float64 {
	total := s.elemsTotal.Load()
	if total == 0 {
		return 0
	}
	done := s.elemsDone.Load()
	if done > total {
		return 1
	}
	return float64(done) / float64(total)
}

// workUnit is one stride-aligned byte range of one region
type workUnit struct {
	region     int
	start, end int
}

// Scan evaluates every element of the snapshot against the collection and
// returns a new snapshot holding only the survivors, with each survivor's
// current value carried forward as the next cycle's previous value.
//
// Regions are filtered in parallel, but the output preserves input region
// order and, within a region, byte-offset order. On cancellation no snapshot
// is returned and the context error is surfaced as-is.
func (s *Scanner) Scan(ctx context.Context, snapshot *Snapshot, col *Collection) (*Snapshot, error) {
	if !col.IsValid() {
		return nil, ErrInvalidConstraints
	}
	if col.RequiresPrior() && !snapshot.HasPrior() {
		return nil, ErrMissingPriorSnapshot
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	stride := col.ElementType().Stride()
	evals := compileEvals(col)

	// Chunk boundaries stay stride-aligned so no element spans two units
	chunk := (scanChunkSize / stride) * stride
	var units []workUnit
	var totalElems uint64
	for i := range snapshot.Regions {
		usable := (len(snapshot.Regions[i].Current) / stride) * stride
		totalElems += uint64(usable / stride)
		for off := 0; off < usable; off += chunk {
			end := off + chunk
			if end > usable {
				end = usable
			}
			units = append(units, workUnit{region: i, start: off, end: end})
		}
	}

	s.elemsDone.Store(0)
	s.elemsTotal.Store(totalElems)

	// Each unit writes only its own slot; the merge below runs after Wait,
	// so the hot path needs no locks
	partials := make([][]Region, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for ui := range units {
		u := units[ui]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partials[ui] = filterUnit(&snapshot.Regions[u.region], u.start, u.end, stride, evals)
			s.elemsDone.Add(uint64((u.end - u.start) / stride))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Ordered concatenation; survivor runs split by a chunk boundary are
	// re-joined here
	out := &Snapshot{}
	for ui := range partials {
		for _, r := range partials[ui] {
			if n := len(out.Regions); n > 0 {
				last := &out.Regions[n-1]
				if last.Address+process.ProcessMemoryAddress(len(last.Current)) == r.Address {
					last.Current = append(last.Current, r.Current...)
					last.Previous = append(last.Previous, r.Previous...)
					continue
				}
			}
			out.Regions = append(out.Regions, r)
		}
	}

	survivors := out.ElementCount(col.ElementType())
	s.log.Infoln("Scan pass [", col.String(), "] kept", survivors, "of", totalElems,
		"elements in", len(out.Regions), "regions,", time.Since(start))

	return out, nil
}

// filterUnit evaluates one stride-aligned byte range of a region, returning
// the surviving element runs coalesced into sub-regions. Survivor bytes are
// copied out so the result owns its buffers.
func filterUnit(region *Region, start, end, stride int, evals []elementEval) []Region {
	var out []Region
	hasPrev := region.HasPrevious()

	emit := func(runStart, runEnd int) {
		cur := make([]byte, runEnd-runStart)
		copy(cur, region.Current[runStart:runEnd])
		out = append(out, Region{
			Address: region.Address + process.ProcessMemoryAddress(runStart),
			Current: cur,
			// Survivors carry their current value as the next pass's
			// previous value
			Previous: cur,
		})
	}

	runStart := -1
	for off := start; off < end; off += stride {
		cur := region.Current[off : off+stride]
		var prev []byte
		if hasPrev {
			prev = region.Previous[off : off+stride]
		}

		pass := true
		for _, eval := range evals {
			if !eval(cur, prev) {
				pass = false
				break
			}
		}

		if pass {
			if runStart < 0 {
				runStart = off
			}
		} else if runStart >= 0 {
			emit(runStart, off)
			runStart = -1
		}
	}
	if runStart >= 0 {
		emit(runStart, end)
	}

	return out
}
