package scan

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"memscan/process"
	"memscan/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// MemorySource is the slice of process access the collector needs. It is
// satisfied by process.Process implementations and by in-memory fakes in tests.
type MemorySource interface {
	// GetMemoryMap enumerates the mapped regions of the target
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// ReadMemory reads size bytes at addr
	ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error)
}

// DefaultMaxRegionSize caps how large a single region the first pass will
// capture. Larger mappings are skipped; they are almost always reserved
// address space rather than data.
const DefaultMaxRegionSize = process.ProcessMemorySize(256 * 1024 * 1024)

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithMaxRegionSize sets the per-region size cap for first-pass enumeration.
// Zero disables the cap.
func WithMaxRegionSize(size process.ProcessMemorySize) CollectorOption {
	return func(c *Collector) {
		c.maxRegionSize = size
	}
}

// WithWritableOnly restricts first-pass enumeration to writable regions.
// Values a user wants to track almost always live in writable memory, so this
// cuts the haystack roughly in half.
func WithWritableOnly(writableOnly bool) CollectorOption {
	return func(c *Collector) {
		c.writableOnly = writableOnly
	}
}

// Collector reads target memory into snapshots: the whole readable address
// space on a first pass, or exactly the regions a prior snapshot retained on
// every pass after that.
type Collector struct {
	src           MemorySource
	log           *logger.Logger
	maxRegionSize process.ProcessMemorySize
	writableOnly  bool

	bytesDone  atomic.Uint64
	bytesTotal atomic.Uint64
}

// NewCollector creates a Collector reading from src
func NewCollector(src MemorySource, opts ...CollectorOption) *Collector {
	c := &Collector{
		src:           src,
		log:           logger.NewLogger(coloransi.Color(coloransi.ColorTeal, coloransi.ColorOrange, "collector")),
		maxRegionSize: DefaultMaxRegionSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Progress returns the fraction of bytes read so far in the running pass,
// in [0, 1]. Safe to call from any goroutine.
func (c *Collector) Progress() float64 {
	total := c.bytesTotal.Load()
	if total == 0 {
		return 0
	}
	done := c.bytesDone.Load()
	if done > total {
		return 1
	}
	return float64(done) / float64(total)
}

// Collect performs a first pass: enumerate all scannable regions and read
// each into a fresh snapshot with no previous generation. Regions that fail
// to read are dropped; only process loss fails the pass.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	mm, err := c.src.GetMemoryMap()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate regions: %w", err)
	}

	var candidates []memory_map.MemoryMapItem
	var total uint64
	for _, item := range mm {
		if !c.scannable(item) {
			continue
		}
		candidates = append(candidates, item)
		total += uint64(item.Size)
	}

	c.bytesDone.Store(0)
	c.bytesTotal.Store(total)

	snapshot := &Snapshot{Regions: make([]Region, 0, len(candidates))}
	dropped := 0
	for _, item := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := c.src.ReadMemory(process.ProcessMemoryAddress(item.Address), process.ProcessMemorySize(item.Size))
		c.bytesDone.Add(uint64(item.Size))
		if err != nil {
			if errors.Is(err, process.ErrProcessUnavailable) {
				return nil, err
			}
			// The region was freed or reprotected since enumeration
			c.log.Debugln("Dropping unreadable region at", fmt.Sprintf("0x%x", item.Address), err)
			dropped++
			continue
		}

		snapshot.Regions = append(snapshot.Regions, Region{
			Address: process.ProcessMemoryAddress(item.Address),
			Current: data,
		})
	}

	c.log.Infoln("First pass collected", len(snapshot.Regions), "regions",
		"(", snapshot.ByteSize(), "bytes,", dropped, "dropped ) in", time.Since(start))

	return snapshot, nil
}

// Recollect performs a subsequent pass: re-read exactly the regions of the
// prior snapshot. Fresh bytes become the current buffers and the prior
// snapshot's current buffers carry over as the previous generation, enabling
// delta constraints on the very next scan. The prior snapshot is not modified.
func (c *Collector) Recollect(ctx context.Context, prior *Snapshot) (*Snapshot, error) {
	start := time.Now()

	c.bytesDone.Store(0)
	c.bytesTotal.Store(prior.ByteSize())

	snapshot := &Snapshot{Regions: make([]Region, 0, len(prior.Regions))}
	dropped := 0
	for i := range prior.Regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		region := &prior.Regions[i]
		data, err := c.src.ReadMemory(region.Address, region.Size())
		c.bytesDone.Add(uint64(len(region.Current)))
		if err != nil {
			if errors.Is(err, process.ErrProcessUnavailable) {
				return nil, err
			}
			c.log.Debugln("Dropping unreadable region at", region.Address.ToString(), err)
			dropped++
			continue
		}

		snapshot.Regions = append(snapshot.Regions, Region{
			Address:  region.Address,
			Current:  data,
			Previous: region.Current,
		})
	}

	c.log.Infoln("Re-read", len(snapshot.Regions), "regions",
		"(", dropped, "dropped ) in", time.Since(start))

	return snapshot, nil
}

// scannable applies the first-pass region filters
func (c *Collector) scannable(item memory_map.MemoryMapItem) bool {
	if item.Size == 0 || !item.IsReadable() {
		return false
	}
	if c.writableOnly && !item.IsWritable() {
		return false
	}
	if c.maxRegionSize > 0 && process.ProcessMemorySize(item.Size) > c.maxRegionSize {
		return false
	}
	return true
}
