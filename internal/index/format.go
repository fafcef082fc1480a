package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dcidx/dcidx/internal/csr"
	"github.com/dcidx/dcidx/internal/delindex"
	"github.com/dcidx/dcidx/internal/nibble"
	"github.com/dcidx/dcidx/internal/pairindex"
)

// Sentinel errors surfaced by Deserialize.
var (
	// ErrShortRead is returned when the source ends before a declared
	// section is fully read.
	ErrShortRead = errors.New("index: short read")
	// ErrLengthMismatch is returned when a stored dimension (KA, P or KB)
	// or count width differs from the value this format defines.
	ErrLengthMismatch = errors.New("index: length mismatch")
	// ErrPayloadMismatch is returned when a stored total payload length
	// disagrees with the sum of the corresponding counts array.
	ErrPayloadMismatch = errors.New("index: payload length disagrees with counts")
)

const (
	countWidth16 = 16
	countWidth32 = 32
)

// WriteTo serializes idx to w in a byte-exact on-disk format: keyword
// count, raw words, then the Case-A and Case-B CSR blocks with a 16- or
// 32-bit count width chosen per block.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	var written int64

	if n, err := writeUint32(w, uint32(idx.N())); err != nil {
		return written + n, err
	} else {
		written += n
	}

	for _, r := range idx.raw {
		n, err := w.Write(r[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	nPair, err := writePairBlock(w, idx.pair)
	written += nPair
	if err != nil {
		return written, err
	}

	nDel, err := writeDelBlock(w, idx.del)
	written += nDel
	if err != nil {
		return written, err
	}

	return written, nil
}

func writePairBlock(w io.Writer, pair *pairindex.Index) (int64, error) {
	var written int64

	if n, err := writeUint32(w, pairindex.KA); err != nil {
		return written + n, err
	} else {
		written += n
	}
	if n, err := writeUint32(w, pairindex.P); err != nil {
		return written + n, err
	} else {
		written += n
	}

	allCounts := make([]uint32, 0, pairindex.KA*pairindex.P)
	for p := 0; p < pairindex.P; p++ {
		allCounts = append(allCounts, pair.Table(p).Counts()...)
	}
	cw := chooseCountWidth(allCounts)
	if n, err := w.Write([]byte{byte(cw)}); err != nil {
		return written + int64(n), err
	} else {
		written += int64(n)
	}
	if n, err := writeCounts(w, allCounts, cw); err != nil {
		return written + n, err
	} else {
		written += n
	}

	var total uint32
	for _, c := range allCounts {
		total += c
	}
	if n, err := writeUint32(w, total); err != nil {
		return written + n, err
	} else {
		written += n
	}

	for p := 0; p < pairindex.P; p++ {
		for _, id := range pair.Table(p).Payload() {
			n, err := write3(w, id)
			written += n
			if err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

func writeDelBlock(w io.Writer, del *delindex.Index) (int64, error) {
	var written int64

	if n, err := writeUint32(w, delindex.KB); err != nil {
		return written + n, err
	} else {
		written += n
	}

	counts := del.Table().Counts()
	cw := chooseCountWidth(counts)
	if n, err := w.Write([]byte{byte(cw)}); err != nil {
		return written + int64(n), err
	} else {
		written += int64(n)
	}
	if n, err := writeCounts(w, counts, cw); err != nil {
		return written + n, err
	} else {
		written += n
	}

	var total uint32
	for _, c := range counts {
		total += c
	}
	if n, err := writeUint32(w, total); err != nil {
		return written + n, err
	} else {
		written += n
	}

	for _, posting := range del.Table().Payload() {
		n, err := write3(w, uint32(posting))
		written += n
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// Serialize is an alias for WriteTo.
func (idx *Index) Serialize(w io.Writer) (int64, error) { return idx.WriteTo(w) }

// MarshalBinary implements encoding.BinaryMarshaler.
func (idx *Index) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := idx.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (idx *Index) UnmarshalBinary(data []byte) error {
	other, err := Deserialize(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*idx = *other
	return nil
}

// Deserialize reconstructs a Finalized Index from r, rebuilding offsets by
// prefix sum and recomputing nibble codes from the stored raw words rather
// than storing either.
func Deserialize(r io.Reader) (*Index, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("index: reading keyword count: %w", ErrShortRead)
	}

	idx := &Index{raw: make([][rawWordLen]byte, n), codes: make([]uint64, n)}
	for i := range idx.raw {
		if _, err := io.ReadFull(r, idx.raw[i][:]); err != nil {
			return nil, fmt.Errorf("index: reading raw word %d: %w", i, ErrShortRead)
		}
		var w [nibble.Len]byte
		copy(w[:], idx.raw[i][:nibble.Len])
		idx.codes[i] = nibble.Encode(w)
	}

	pair, err := readPairBlock(r)
	if err != nil {
		return nil, err
	}
	del, err := readDelBlock(r)
	if err != nil {
		return nil, err
	}

	idx.pair = pair
	idx.del = del
	idx.state = finalized
	return idx, nil
}

func readPairBlock(r io.Reader) (*pairindex.Index, error) {
	ka, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("index: reading KA: %w", ErrShortRead)
	}
	p, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("index: reading P: %w", ErrShortRead)
	}
	if ka != pairindex.KA || p != pairindex.P {
		return nil, fmt.Errorf("index: pair block dimensions %d/%d want %d/%d: %w", ka, p, pairindex.KA, pairindex.P, ErrLengthMismatch)
	}

	cw, err := readCountWidth(r)
	if err != nil {
		return nil, err
	}
	allCounts, err := readCounts(r, int(ka)*int(p), cw)
	if err != nil {
		return nil, err
	}

	total, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("index: reading T_A: %w", ErrShortRead)
	}
	var sum uint32
	for _, c := range allCounts {
		sum += c
	}
	if sum != total {
		return nil, fmt.Errorf("index: T_A=%d but sum(counts_A)=%d: %w", total, sum, ErrPayloadMismatch)
	}

	var tables [pairindex.P]*csr.Table[uint32]
	for t := 0; t < int(p); t++ {
		counts := allCounts[t*int(ka) : (t+1)*int(ka)]
		var n int
		for _, c := range counts {
			n += int(c)
		}
		payload := make([]uint32, n)
		for i := range payload {
			v, err := read3(r)
			if err != nil {
				return nil, fmt.Errorf("index: reading pair payload table %d entry %d: %w", t, i, ErrShortRead)
			}
			payload[i] = v
		}
		tables[t] = csr.FromCounts(append([]uint32(nil), counts...), payload)
	}
	return pairindex.FromTables(tables), nil
}

func readDelBlock(r io.Reader) (*delindex.Index, error) {
	kb, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("index: reading KB: %w", ErrShortRead)
	}
	if kb != delindex.KB {
		return nil, fmt.Errorf("index: deletion block KB=%d want %d: %w", kb, delindex.KB, ErrLengthMismatch)
	}

	cw, err := readCountWidth(r)
	if err != nil {
		return nil, err
	}
	counts, err := readCounts(r, int(kb), cw)
	if err != nil {
		return nil, err
	}

	total, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("index: reading T_B: %w", ErrShortRead)
	}
	var sum uint32
	for _, c := range counts {
		sum += c
	}
	if sum != total {
		return nil, fmt.Errorf("index: T_B=%d but sum(counts_B)=%d: %w", total, sum, ErrPayloadMismatch)
	}

	payload := make([]delindex.Posting, total)
	for i := range payload {
		v, err := read3(r)
		if err != nil {
			return nil, fmt.Errorf("index: reading deletion payload entry %d: %w", i, ErrShortRead)
		}
		payload[i] = delindex.Posting(v)
	}

	return delindex.FromTable(csr.FromCounts(counts, payload)), nil
}

func chooseCountWidth(counts []uint32) int {
	for _, c := range counts {
		if c > 0xFFFF {
			return countWidth32
		}
	}
	return countWidth16
}

func writeCounts(w io.Writer, counts []uint32, width int) (int64, error) {
	var written int64
	if width == countWidth16 {
		buf := make([]byte, 2)
		for _, c := range counts {
			binary.LittleEndian.PutUint16(buf, uint16(c))
			n, err := w.Write(buf)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
		return written, nil
	}
	buf := make([]byte, 4)
	for _, c := range counts {
		binary.LittleEndian.PutUint32(buf, c)
		n, err := w.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func readCountWidth(r io.Reader) (int, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("index: reading count width: %w", ErrShortRead)
	}
	switch b[0] {
	case countWidth16, countWidth32:
		return int(b[0]), nil
	default:
		return 0, fmt.Errorf("index: invalid count width %d: %w", b[0], ErrLengthMismatch)
	}
}

func readCounts(r io.Reader, n int, width int) ([]uint32, error) {
	counts := make([]uint32, n)
	if width == countWidth16 {
		buf := make([]byte, 2)
		for i := range counts {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("index: reading counts[%d]: %w", i, ErrShortRead)
			}
			counts[i] = uint32(binary.LittleEndian.Uint16(buf))
		}
		return counts, nil
	}
	buf := make([]byte, 4)
	for i := range counts {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("index: reading counts[%d]: %w", i, ErrShortRead)
		}
		counts[i] = binary.LittleEndian.Uint32(buf)
	}
	return counts, nil
}

func writeUint32(w io.Writer, v uint32) (int64, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	n, err := w.Write(buf[:])
	return int64(n), err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// write3 writes the low 24 bits of v as a little-endian triple.
func write3(w io.Writer, v uint32) (int64, error) {
	buf := [3]byte{byte(v), byte(v >> 8), byte(v >> 16)}
	n, err := w.Write(buf[:])
	return int64(n), err
}

// read3 reads a little-endian 3-byte triple into the low 24 bits of a uint32.
func read3(r io.Reader) (uint32, error) {
	var buf [3]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16, nil
}
