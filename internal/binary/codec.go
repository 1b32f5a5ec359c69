package binary

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/cyber-boost/helix-sub000/internal/herr"
)

// binWriter accumulates a hlxb file's bytes. Every multi-byte integer is
// little-endian, matching the format's fixed endianness.
type binWriter struct {
	buf bytes.Buffer
}

func (w *binWriter) Bytes() []byte { return w.buf.Bytes() }
func (w *binWriter) Len() int      { return w.buf.Len() }

func (w *binWriter) WriteU8(v uint8) { w.buf.WriteByte(v) }

func (w *binWriter) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) WriteI32(v int32) { w.WriteU32(uint32(v)) }

func (w *binWriter) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) WriteI64(v int64) { w.WriteU64(uint64(v)) }

func (w *binWriter) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }

// WriteBytes writes a u32 length prefix followed by raw.
func (w *binWriter) WriteBytes(raw []byte) {
	w.WriteU32(uint32(len(raw)))
	w.buf.Write(raw)
}

// WriteString writes a u32 byte-length prefix followed by the UTF-8 bytes.
func (w *binWriter) WriteString(s string) { w.WriteBytes([]byte(s)) }

// WriteU32Array writes a u32 count followed by that many u32 values.
func (w *binWriter) WriteU32Array(vals []uint32) {
	w.WriteU32(uint32(len(vals)))
	for _, v := range vals {
		w.WriteU32(v)
	}
}

// binReader walks a hlxb byte slice, tracking its offset so a short read
// can be reported as Corrupt at the precise failing position.
type binReader struct {
	data []byte
	off  int64
}

func newBinReader(data []byte) *binReader { return &binReader{data: data} }

func (r *binReader) need(n int) error {
	if int64(len(r.data))-r.off < int64(n) {
		return herr.CorruptErr(r.off, "unexpected end of hlxb data")
	}
	return nil
}

func (r *binReader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *binReader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *binReader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *binReader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *binReader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

func (r *binReader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *binReader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:r.off+int64(n)])
	r.off += int64(n)
	return out, nil
}

func (r *binReader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *binReader) ReadU32Array() ([]uint32, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Offset reports the reader's current byte position, for Corrupt errors
// raised by callers that consume fields themselves (e.g. the section loop).
func (r *binReader) Offset() int64 { return r.off }
