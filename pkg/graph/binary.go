package graph

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

// MaxNodes bounds the node count of a loadable graph. Text loaders reject
// ids at or above it since node ids index dense arrays.
const MaxNodes = 10_000_000

const (
	magicBytes = "RTPLAN01"
	version    = uint32(1)
	maxEdges   = 50_000_000
	maxNames   = 1 << 30
)

// ErrCorrupt is returned by Decode when the file fails validation.
var ErrCorrupt = errors.New("graph: corrupt binary file")

// fileHeader is the binary header.
type fileHeader struct {
	Magic     [8]byte
	Version   uint32
	NumNodes  uint32
	NumEdges  uint32
	NamesSize uint32 // bytes in the names blob, including length prefixes
}

// WriteBinary serializes g to path. The file is written to a temporary
// sibling and renamed into place once complete.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, g); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// ReadBinary loads a graph written by WriteBinary.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Encode writes g in the binary graph format followed by a CRC32 trailer.
func Encode(out io.Writer, g *Graph) error {
	crcWriter := crc32Writer{w: out, hash: crc32.NewIEEE()}
	w := &crcWriter

	numNodes := uint32(g.NumNodes())
	numEdges := uint32(g.NumEdges())
	firstOut := g.FirstOut
	if len(firstOut) == 0 {
		firstOut = []uint32{0}
	}

	head := make([]uint32, numEdges)
	weight := make([]float64, numEdges)
	for i, e := range g.Edges {
		head[i] = e.To
		weight[i] = e.Weight
	}

	names := encodeNames(g.Names, int(numNodes))

	hdr := fileHeader{
		Version:   version,
		NumNodes:  numNodes,
		NumEdges:  numEdges,
		NamesSize: uint32(len(names)),
	}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeFloat64Slice(w, g.NodeLat); err != nil {
		return fmt.Errorf("write NodeLat: %w", err)
	}
	if err := writeFloat64Slice(w, g.NodeLon); err != nil {
		return fmt.Errorf("write NodeLon: %w", err)
	}
	if err := writeUint32Slice(w, firstOut); err != nil {
		return fmt.Errorf("write FirstOut: %w", err)
	}
	if err := writeUint32Slice(w, head); err != nil {
		return fmt.Errorf("write Head: %w", err)
	}
	if err := writeFloat64Slice(w, weight); err != nil {
		return fmt.Errorf("write Weight: %w", err)
	}
	if _, err := w.Write(names); err != nil {
		return fmt.Errorf("write Names: %w", err)
	}

	// CRC32 trailer is not itself checksummed.
	if err := binary.Write(out, binary.LittleEndian, crcWriter.hash.Sum32()); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}
	return nil
}

// Decode reads a graph written by Encode and validates its checksum and
// CSR structure.
func Decode(in io.Reader) (*Graph, error) {
	crcReader := crc32Reader{r: in, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("%w: invalid magic bytes %q", ErrCorrupt, hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, hdr.Version)
	}
	if hdr.NumNodes > MaxNodes {
		return nil, fmt.Errorf("%w: NumNodes %d exceeds limit %d", ErrCorrupt, hdr.NumNodes, MaxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("%w: NumEdges %d exceeds limit %d", ErrCorrupt, hdr.NumEdges, maxEdges)
	}
	if hdr.NamesSize > maxNames {
		return nil, fmt.Errorf("%w: names blob %d exceeds limit %d", ErrCorrupt, hdr.NamesSize, maxNames)
	}

	n := int(hdr.NumNodes)
	m := int(hdr.NumEdges)
	g := &Graph{}
	var err error

	if g.NodeLat, err = readFloat64Slice(r, n); err != nil {
		return nil, fmt.Errorf("read NodeLat: %w", err)
	}
	if g.NodeLon, err = readFloat64Slice(r, n); err != nil {
		return nil, fmt.Errorf("read NodeLon: %w", err)
	}
	if g.FirstOut, err = readUint32Slice(r, n+1); err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	head, err := readUint32Slice(r, m)
	if err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	weight, err := readFloat64Slice(r, m)
	if err != nil {
		return nil, fmt.Errorf("read Weight: %w", err)
	}
	blob := make([]byte, hdr.NamesSize)
	if _, err := io.ReadFull(r, blob); err != nil {
		return nil, fmt.Errorf("read Names: %w", err)
	}

	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(in, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("%w: CRC32 mismatch: stored=%08x computed=%08x", ErrCorrupt, storedCRC, expectedCRC)
	}

	if err := validateCSR(g.FirstOut, head, hdr.NumNodes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if g.Names, err = decodeNames(blob, n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	g.Edges = make([]Edge, m)
	for i := range g.Edges {
		g.Edges[i] = Edge{To: head[i], Weight: weight[i]}
	}
	g.buildReverse()
	return g, nil
}

// encodeNames packs n names as uint32 length + bytes each. Missing names
// are written as empty strings.
func encodeNames(names []string, n int) []byte {
	size := 4 * n
	for i := 0; i < n && i < len(names); i++ {
		size += len(names[i])
	}
	buf := make([]byte, 0, size)
	for i := range n {
		var s string
		if i < len(names) {
			s = names[i]
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
		buf = append(buf, s...)
	}
	return buf
}

func decodeNames(blob []byte, n int) ([]string, error) {
	names := make([]string, n)
	for i := range n {
		if len(blob) < 4 {
			return nil, fmt.Errorf("names blob truncated at node %d", i)
		}
		l := binary.LittleEndian.Uint32(blob)
		blob = blob[4:]
		if uint32(len(blob)) < l {
			return nil, fmt.Errorf("name of node %d truncated", i)
		}
		names[i] = string(blob[:l])
		blob = blob[l:]
	}
	if len(blob) != 0 {
		return nil, fmt.Errorf("%d trailing bytes in names blob", len(blob))
	}
	return names, nil
}

// validateCSR checks CSR invariants.
func validateCSR(firstOut, head []uint32, numNodes uint32) error {
	if uint32(len(firstOut)) != numNodes+1 {
		return fmt.Errorf("FirstOut length %d != NumNodes+1 %d", len(firstOut), numNodes+1)
	}
	if firstOut[0] != 0 {
		return fmt.Errorf("FirstOut[0]=%d, want 0", firstOut[0])
	}
	numEdges := firstOut[numNodes]
	if uint32(len(head)) != numEdges {
		return fmt.Errorf("Head length %d != FirstOut[NumNodes] %d", len(head), numEdges)
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("FirstOut not monotonic at %d: %d < %d", i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, numNodes)
		}
	}
	return nil
}

// Zero-copy I/O helpers using unsafe.Slice. The format is little-endian,
// matching every platform the tools are built for.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
