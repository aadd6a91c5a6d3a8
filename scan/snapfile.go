package scan

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"memscan/process"

	"github.com/klauspost/compress/zstd"
)

// Snapshot file layout: 8-byte magic, uint32 little-endian header length,
// JSON header, then a single zstd stream holding each region's current buffer
// followed by its previous buffer when present.
const snapfileMagic = "MEMSNAP1"

type snapfileRegion struct {
	Address     uint64 `json:"address"`
	Size        int    `json:"size"`
	HasPrevious bool   `json:"has_previous"`
}

type snapfileHeader struct {
	Regions []snapfileRegion `json:"regions"`
}

// WriteFile saves the snapshot to a single compressed file
func (s *Snapshot) WriteFile(path string) error {
	header := snapfileHeader{Regions: make([]snapfileRegion, len(s.Regions))}
	for i := range s.Regions {
		region := &s.Regions[i]
		header.Regions[i] = snapfileRegion{
			Address:     uint64(region.Address),
			Size:        len(region.Current),
			HasPrevious: region.HasPrevious(),
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot header: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(snapfileMagic)); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	var headerLen [4]byte
	binary.LittleEndian.PutUint32(headerLen[:], uint32(len(headerJSON)))
	if _, err := f.Write(headerLen[:]); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if _, err := f.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	for i := range s.Regions {
		region := &s.Regions[i]
		if _, err := enc.Write(region.Current); err != nil {
			enc.Close()
			return fmt.Errorf("failed to write region at %s: %w", region.Address.ToString(), err)
		}
		if region.HasPrevious() {
			if _, err := enc.Write(region.Previous); err != nil {
				enc.Close()
				return fmt.Errorf("failed to write region at %s: %w", region.Address.ToString(), err)
			}
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish zstd stream: %w", err)
	}

	return f.Close()
}

// ReadSnapshotFile loads a snapshot saved by WriteFile
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	magic := make([]byte, len(snapfileMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if string(magic) != snapfileMagic {
		return nil, fmt.Errorf("not a snapshot file: bad magic %q", magic)
	}

	var headerLen [4]byte
	if _, err := io.ReadFull(f, headerLen[:]); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	headerJSON := make([]byte, binary.LittleEndian.Uint32(headerLen[:]))
	if _, err := io.ReadFull(f, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	var header snapfileHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot header: %w", err)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	snapshot := &Snapshot{Regions: make([]Region, 0, len(header.Regions))}
	for _, meta := range header.Regions {
		region := Region{
			Address: process.ProcessMemoryAddress(meta.Address),
			Current: make([]byte, meta.Size),
		}
		if _, err := io.ReadFull(dec, region.Current); err != nil {
			return nil, fmt.Errorf("failed to read region at 0x%x: %w", meta.Address, err)
		}
		if meta.HasPrevious {
			region.Previous = make([]byte, meta.Size)
			if _, err := io.ReadFull(dec, region.Previous); err != nil {
				return nil, fmt.Errorf("failed to read region at 0x%x: %w", meta.Address, err)
			}
		}
		snapshot.Regions = append(snapshot.Regions, region)
	}

	return snapshot, nil
}
