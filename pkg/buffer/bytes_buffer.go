// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"
	"io"

	"github.com/cocowh/pagebuf/pkg/errors"
)

var (
	ErrNotEnough = errors.ErrNotEnough
	ErrOverflow  = errors.ErrOverflow
)

// BytesBuffer reads and writes binary values over a Buffer. Bytes between
// the read and write positions are unread.
type BytesBuffer struct {
	buf   *Buffer
	rpos  int
	wpos  int
	order binary.ByteOrder
	temp  [8]byte
}

// NewBytesBuffer returns an empty big-endian BytesBuffer with room for at
// least capacity bytes.
func NewBytesBuffer(capacity int) (*BytesBuffer, error) {
	return NewBytesBufferWithOrder(capacity, binary.BigEndian)
}

func NewBytesBufferWithOrder(capacity int, order binary.ByteOrder) (*BytesBuffer, error) {
	buf := &Buffer{}
	if err := buf.Reserve(capacity); err != nil {
		return nil, err
	}
	return &BytesBuffer{buf: buf, order: order}, nil
}

// CreateBytesBuffer returns a big-endian BytesBuffer holding a copy of data,
// ready to be read.
func CreateBytesBuffer(data []byte) (*BytesBuffer, error) {
	return CreateBytesBufferWithOrder(data, binary.BigEndian)
}

func CreateBytesBufferWithOrder(data []byte, order binary.ByteOrder) (*BytesBuffer, error) {
	buf, err := FromBytes(data)
	if err != nil {
		return nil, err
	}
	return &BytesBuffer{buf: buf, order: order, wpos: len(data)}, nil
}

// WrapBuffer takes ownership of b's region; b is left empty.
func WrapBuffer(b *Buffer, order binary.ByteOrder) *BytesBuffer {
	buf := b.Take()
	return &BytesBuffer{buf: buf, order: order, wpos: buf.Size()}
}

// Buffer exposes the underlying Buffer; its size is the write position.
func (b *BytesBuffer) Buffer() *Buffer { return b.buf }

func (b *BytesBuffer) SetWPos(pos int) error {
	if pos < 0 {
		return errors.InvalidSize(pos)
	}
	if pos > b.buf.Size() {
		if err := b.grow(pos - b.wpos); err != nil {
			return err
		}
	}
	b.wpos = pos
	if b.rpos > pos {
		b.rpos = pos
	}
	return b.buf.Resize(pos)
}

func (b *BytesBuffer) GetWPos() int {
	return b.wpos
}

func (b *BytesBuffer) SetRPos(pos int) {
	b.rpos = min(pos, b.wpos)
}

func (b *BytesBuffer) GetRPos() int {
	return b.rpos
}

func (b *BytesBuffer) WriteByte(c byte) error {
	if err := b.grow(1); err != nil {
		return err
	}
	b.buf.data[b.wpos] = c
	b.wpos++
	return nil
}

func (b *BytesBuffer) WriteString(str string) (int, error) {
	l := len(str)
	if err := b.grow(l); err != nil {
		return 0, err
	}
	copy(b.buf.data[b.wpos:], str)
	b.wpos += l
	return l, nil
}

func (b *BytesBuffer) Write(bytes []byte) (int, error) {
	l := len(bytes)
	if err := b.grow(l); err != nil {
		return 0, err
	}
	copy(b.buf.data[b.wpos:], bytes)
	b.wpos += l
	return l, nil
}

func (b *BytesBuffer) WriteUint16(u uint16) error {
	b.order.PutUint16(b.temp[:], u)
	_, err := b.Write(b.temp[:2])
	return err
}

func (b *BytesBuffer) WriteUint32(u uint32) error {
	b.order.PutUint32(b.temp[:], u)
	_, err := b.Write(b.temp[:4])
	return err
}

func (b *BytesBuffer) WriteUint64(u uint64) error {
	b.order.PutUint64(b.temp[:], u)
	_, err := b.Write(b.temp[:8])
	return err
}

func (b *BytesBuffer) WriteZigzag32(u uint32) (int, error) {
	return b.WriteVarint(uint64((u << 1) ^ uint32(int32(u)>>31)))
}

func (b *BytesBuffer) WriteZigzag64(u uint64) (int, error) {
	return b.WriteVarint((u << 1) ^ uint64(int64(u)>>63))
}

func (b *BytesBuffer) WriteVarint(u uint64) (int, error) {
	var tmp [binary.MaxVarintLen64]byte
	l := 0
	for u >= 1<<7 {
		tmp[l] = uint8(u&0x7f | 0x80)
		u >>= 7
		l++
	}
	tmp[l] = uint8(u)
	l++
	return b.Write(tmp[:l])
}

// grow makes room for n more bytes after the write position. Capacity at
// least doubles so a stream of small writes reallocates rarely.
func (b *BytesBuffer) grow(n int) error {
	need := b.wpos + n
	if need <= b.buf.Size() {
		return nil
	}
	if need > b.buf.Capacity() {
		if err := b.buf.Reserve(max(2*b.buf.Capacity(), need)); err != nil {
			return err
		}
	}
	return b.buf.Resize(need)
}

func (b *BytesBuffer) Bytes() []byte { return b.buf.Bytes()[:b.wpos] }

func (b *BytesBuffer) unread() []byte { return b.buf.Bytes()[b.rpos:b.wpos] }

func (b *BytesBuffer) Read(p []byte) (n int, err error) {
	if b.rpos >= b.wpos {
		return 0, io.EOF
	}
	n = copy(p, b.unread())
	b.rpos += n
	return n, nil
}

func (b *BytesBuffer) ReadFull(p []byte) error {
	if b.Remain() < len(p) {
		return ErrNotEnough
	}
	b.rpos += copy(p, b.unread())
	return nil
}

func (b *BytesBuffer) ReadUint16() (n uint16, err error) {
	if b.Remain() < 2 {
		return 0, ErrNotEnough
	}
	n = b.order.Uint16(b.unread())
	b.rpos += 2
	return n, nil
}

func (b *BytesBuffer) ReadInt() (int, error) {
	n, err := b.ReadUint32()
	return int(n), err
}

func (b *BytesBuffer) ReadUint32() (n uint32, err error) {
	if b.Remain() < 4 {
		return 0, ErrNotEnough
	}
	n = b.order.Uint32(b.unread())
	b.rpos += 4
	return n, nil
}

func (b *BytesBuffer) ReadUint64() (n uint64, err error) {
	if b.Remain() < 8 {
		return 0, ErrNotEnough
	}
	n = b.order.Uint64(b.unread())
	b.rpos += 8
	return n, nil
}

func (b *BytesBuffer) ReadZigzag64() (x uint64, err error) {
	x, err = b.ReadVarint()
	if err != nil {
		return
	}
	x = (x >> 1) ^ uint64(-int64(x&1))
	return
}

func (b *BytesBuffer) ReadZigzag32() (x uint64, err error) {
	x, err = b.ReadVarint()
	if err != nil {
		return
	}
	x = uint64((uint32(x) >> 1) ^ uint32(-int32(x&1)))
	return
}

func (b *BytesBuffer) ReadVarint() (x uint64, err error) {
	var temp byte
	for offset := uint(0); offset < 64; offset += 7 {
		temp, err = b.ReadByte()
		if err != nil {
			return 0, err
		}
		if (temp & 0x80) != 0x80 {
			x |= uint64(temp) << offset
			return x, nil
		}
		x |= uint64(temp&0x7f) << offset
	}
	return 0, ErrOverflow
}

// Next returns the next n unread bytes without copying them.
func (b *BytesBuffer) Next(n int) ([]byte, error) {
	if n > b.Remain() {
		return nil, ErrNotEnough
	}
	data := b.unread()[:n:n]
	b.rpos += n
	return data, nil
}

func (b *BytesBuffer) ReadByte() (byte, error) {
	if b.rpos >= b.wpos {
		return 0, io.EOF
	}
	c := b.buf.data[b.rpos]
	b.rpos++
	return c, nil
}

// Reset empties the buffer and keeps its capacity.
func (b *BytesBuffer) Reset() {
	b.rpos = 0
	b.wpos = 0
	_ = b.buf.Resize(0)
}

// Release returns the underlying memory; the BytesBuffer is empty afterwards.
func (b *BytesBuffer) Release() {
	b.rpos = 0
	b.wpos = 0
	b.buf.Release()
}

func (b *BytesBuffer) Remain() int { return b.wpos - b.rpos }

func (b *BytesBuffer) Len() int { return b.wpos }

func (b *BytesBuffer) Cap() int { return b.buf.Capacity() }

var (
	_ io.Writer       = (*BytesBuffer)(nil)
	_ io.StringWriter = (*BytesBuffer)(nil)
	_ io.ByteWriter   = (*BytesBuffer)(nil)
	_ io.Reader       = (*BytesBuffer)(nil)
	_ io.ByteReader   = (*BytesBuffer)(nil)
)
