// Package archive is this module's own minimal implementation of a
// named-stream container, treated elsewhere as an external, black-box
// dependency: register named streams, append byte-blob parts to a
// stream, and later read them back sequentially, in fixed-size
// windows, or as random-access whole-stream loads. One archive is one
// file; the footer (stream names, part offsets and lengths) is written
// once at Close and read back at Open.
package archive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

var magic = [8]byte{'K', 'M', 'C', 'D', 'B', 'A', 'R', '1'}

// StreamID identifies a registered named stream within one archive.
type StreamID int

type partRecord struct {
	offset int64
	length int64
}

type streamMeta struct {
	name  string
	parts []partRecord
}

// Archive is a single append-only file of named, part-structured
// streams. A given instance is either write-only (created via Create)
// or read-only (opened via Open); it is not safe for concurrent use.
type Archive struct {
	f       *os.File
	writer  *bufio.Writer
	writing bool
	offset  int64

	streams   []streamMeta
	nameToID  map[string]StreamID
	closeOnce bool
}

// Create opens a new archive file for writing.
func Create(path string) (*Archive, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("archive: create %s: %w: %v", path, ErrIO, err)
	}
	return &Archive{
		f:        f,
		writer:   bufio.NewWriter(f),
		writing:  true,
		nameToID: map[string]StreamID{},
	}, nil
}

// RegisterStream returns the StreamID for name, creating it on first use.
// Registration order is preserved in the footer.
func (a *Archive) RegisterStream(name string) StreamID {
	if id, ok := a.nameToID[name]; ok {
		return id
	}
	id := StreamID(len(a.streams))
	a.streams = append(a.streams, streamMeta{name: name})
	a.nameToID[name] = id
	return id
}

// AddPart appends data as one new part of stream id and returns the
// part's index within that stream.
func (a *Archive) AddPart(id StreamID, data []byte) (int, error) {
	if !a.writing {
		return 0, fmt.Errorf("archive: AddPart called on a read-only archive")
	}
	n, err := a.writer.Write(data)
	if err != nil {
		return 0, fmt.Errorf("archive: write part: %w: %v", ErrIO, err)
	}
	rec := partRecord{offset: a.offset, length: int64(n)}
	a.offset += int64(n)
	a.streams[id].parts = append(a.streams[id].parts, rec)
	return len(a.streams[id].parts) - 1, nil
}

// Close flushes pending writes, appends the footer, and closes the
// underlying file. Close is idempotent.
func (a *Archive) Close() error {
	if a.closeOnce {
		return nil
	}
	a.closeOnce = true

	if !a.writing {
		return a.f.Close()
	}

	footer, err := a.encodeFooter()
	if err != nil {
		return fmt.Errorf("archive: encode footer: %w", err)
	}
	if _, err := a.writer.Write(footer); err != nil {
		return fmt.Errorf("archive: write footer: %w: %v", ErrIO, err)
	}

	var trailer [16]byte
	binary.LittleEndian.PutUint64(trailer[0:8], uint64(a.offset))
	copy(trailer[8:16], magic[:])
	if _, err := a.writer.Write(trailer[:]); err != nil {
		return fmt.Errorf("archive: write trailer: %w: %v", ErrIO, err)
	}

	if err := a.writer.Flush(); err != nil {
		return fmt.Errorf("archive: flush: %w: %v", ErrIO, err)
	}
	return a.f.Close()
}

// encodeFooter serializes every stream's name and part table, followed
// by a CRC32 over that payload — the same "checksum the just-written
// bytes" shape as a write-ahead log's per-record framing, applied once
// to the whole footer instead of per record.
func (a *Archive) encodeFooter() ([]byte, error) {
	var buf []byte
	buf = putUint64(buf, uint64(len(a.streams)))
	for _, s := range a.streams {
		buf = putString(buf, s.name)
		buf = putUint64(buf, uint64(len(s.parts)))
		for _, p := range s.parts {
			buf = putUint64(buf, uint64(p.offset))
			buf = putUint64(buf, uint64(p.length))
		}
	}
	crc := crc32.ChecksumIEEE(buf)
	buf = putUint32(buf, crc)
	return buf, nil
}

func putUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func putUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func putString(buf []byte, s string) []byte {
	buf = putUint64(buf, uint64(len(s)))
	return append(buf, s...)
}

// Open opens an existing archive file for reading.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w: %v", path, ErrIO, err)
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("archive: seek end: %w: %v", ErrIO, err)
	}
	if size < 16 {
		f.Close()
		return nil, fmt.Errorf("archive: %s too small to contain a trailer", path)
	}

	trailer := make([]byte, 16)
	if _, err := f.ReadAt(trailer, size-16); err != nil {
		f.Close()
		return nil, fmt.Errorf("archive: read trailer: %w: %v", ErrIO, err)
	}
	if string(trailer[8:16]) != string(magic[:]) {
		f.Close()
		return nil, fmt.Errorf("archive: %s is not a recognized archive (bad magic)", path)
	}
	footerOffset := int64(binary.LittleEndian.Uint64(trailer[0:8]))

	footerBytes := make([]byte, size-16-footerOffset)
	if _, err := f.ReadAt(footerBytes, footerOffset); err != nil {
		f.Close()
		return nil, fmt.Errorf("archive: read footer: %w: %v", ErrIO, err)
	}
	if len(footerBytes) < 4 {
		f.Close()
		return nil, fmt.Errorf("archive: footer too small")
	}
	payload := footerBytes[:len(footerBytes)-4]
	wantCRC := binary.LittleEndian.Uint32(footerBytes[len(footerBytes)-4:])
	if crc32.ChecksumIEEE(payload) != wantCRC {
		f.Close()
		return nil, fmt.Errorf("archive: footer CRC mismatch, archive is corrupt")
	}

	a := &Archive{f: f, nameToID: map[string]StreamID{}}
	if err := a.decodeFooter(payload); err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) decodeFooter(buf []byte) error {
	numStreams, buf, err := getUint64(buf)
	if err != nil {
		return fmt.Errorf("archive: reading stream count: %w", err)
	}
	for i := uint64(0); i < numStreams; i++ {
		name, rest, err := getString(buf)
		if err != nil {
			return fmt.Errorf("archive: reading stream name: %w", err)
		}
		buf = rest
		numParts, rest, err := getUint64(buf)
		if err != nil {
			return fmt.Errorf("archive: reading part count for %q: %w", name, err)
		}
		buf = rest

		parts := make([]partRecord, numParts)
		for p := uint64(0); p < numParts; p++ {
			off, rest, err := getUint64(buf)
			if err != nil {
				return fmt.Errorf("archive: reading part %d offset for %q: %w", p, name, err)
			}
			buf = rest
			length, rest, err := getUint64(buf)
			if err != nil {
				return fmt.Errorf("archive: reading part %d length for %q: %w", p, name, err)
			}
			buf = rest
			parts[p] = partRecord{offset: int64(off), length: int64(length)}
		}

		id := StreamID(len(a.streams))
		a.streams = append(a.streams, streamMeta{name: name, parts: parts})
		a.nameToID[name] = id
	}
	return nil
}

func getUint64(buf []byte) (uint64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("short read")
	}
	return binary.LittleEndian.Uint64(buf), buf[8:], nil
}

func getString(buf []byte) (string, []byte, error) {
	n, rest, err := getUint64(buf)
	if err != nil {
		return "", nil, err
	}
	if uint64(len(rest)) < n {
		return "", nil, fmt.Errorf("short read")
	}
	return string(rest[:n]), rest[n:], nil
}

// StreamIDByName is the "get_stream_id" half of the archive contract.
func (a *Archive) StreamIDByName(name string) (StreamID, bool) {
	id, ok := a.nameToID[name]
	return id, ok
}

// NumParts is "no_parts".
func (a *Archive) NumParts(id StreamID) int {
	return len(a.streams[id].parts)
}

// GetPart reads one part of a stream by index, at random.
func (a *Archive) GetPart(id StreamID, idx int) ([]byte, error) {
	p := a.streams[id].parts[idx]
	buf := make([]byte, p.length)
	if _, err := a.f.ReadAt(buf, p.offset); err != nil {
		return nil, fmt.Errorf("archive: reading part %d of stream %q: %w: %v", idx, a.streams[id].name, ErrIO, err)
	}
	return buf, nil
}

// ReadAllParts concatenates every part of a stream, in order — the
// primitive random-access bin readers use to load a whole bin into one
// flat buffer.
func (a *Archive) ReadAllParts(id StreamID) ([]byte, error) {
	var total int64
	for _, p := range a.streams[id].parts {
		total += p.length
	}
	out := make([]byte, 0, total)
	for i := range a.streams[id].parts {
		part, err := a.GetPart(id, i)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

// CopyStream copies every part of src's stream name, in order, into
// dst's registered stream of the same name. It is a no-op if src has no
// such stream — used to carry a database's history forward into a new
// database derived from it.
func CopyStream(dst, src *Archive, name string) error {
	srcID, ok := src.StreamIDByName(name)
	if !ok {
		return nil
	}
	dstID := dst.RegisterStream(name)
	for i := 0; i < src.NumParts(srcID); i++ {
		part, err := src.GetPart(srcID, i)
		if err != nil {
			return fmt.Errorf("archive: copying part %d of stream %q: %w", i, name, err)
		}
		if _, err := dst.AddPart(dstID, part); err != nil {
			return fmt.Errorf("archive: copying part %d of stream %q: %w", i, name, err)
		}
	}
	return nil
}

// NewStreamReader returns a sequential, windowed reader over a stream —
// "get_sub_part": each call to Next pulls up to maxBytes, crossing part
// boundaries as needed, without ever being asked to split a logical
// record (callers round maxBytes down to a whole multiple of their
// record width first).
func (a *Archive) NewStreamReader(id StreamID) *StreamReader {
	return &StreamReader{a: a, id: id}
}

// StreamReader is a cursor over one stream's concatenated parts.
type StreamReader struct {
	a        *Archive
	id       StreamID
	partIdx  int
	inPart   []byte
	inPartAt int
}

// Next returns up to maxBytes of the stream's remaining content, or
// ok=false once the stream is exhausted.
func (r *StreamReader) Next(maxBytes int) (data []byte, ok bool) {
	out := make([]byte, 0, maxBytes)
	for len(out) < maxBytes {
		if r.inPartAt == len(r.inPart) {
			if r.partIdx >= len(r.a.streams[r.id].parts) {
				break
			}
			part, err := r.a.GetPart(r.id, r.partIdx)
			if err != nil {
				break
			}
			r.inPart = part
			r.inPartAt = 0
			r.partIdx++
		}
		take := maxBytes - len(out)
		if remain := len(r.inPart) - r.inPartAt; take > remain {
			take = remain
		}
		out = append(out, r.inPart[r.inPartAt:r.inPartAt+take]...)
		r.inPartAt += take
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
