// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocowh/pagebuf/core/alloc"
	"github.com/cocowh/pagebuf/pkg/errors"
)

func TestBytesBufferRoundTrip(t *testing.T) {
	bb, err := NewBytesBuffer(0)
	require.NoError(t, err)
	defer bb.Release()

	require.NoError(t, bb.WriteByte(0x7f))
	require.NoError(t, bb.WriteUint16(0xbeef))
	require.NoError(t, bb.WriteUint32(0xdeadbeef))
	require.NoError(t, bb.WriteUint64(1<<60|42))
	n, err := bb.WriteString("pagebuf")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = bb.WriteVarint(300)
	require.NoError(t, err)
	small, large := int64(-3), int32(-70000)
	_, err = bb.WriteZigzag64(uint64(small))
	require.NoError(t, err)
	_, err = bb.WriteZigzag32(uint32(large))
	require.NoError(t, err)

	assert.Equal(t, bb.Len(), bb.Buffer().Size())
	assert.Equal(t, alloc.Granularity(), bb.Cap())

	c, err := bb.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7f), c)
	u16, err := bb.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xbeef), u16)
	u32, err := bb.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)
	u64, err := bb.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<60|42), u64)
	s, err := bb.Next(7)
	require.NoError(t, err)
	assert.Equal(t, "pagebuf", string(s))
	v, err := bb.ReadVarint()
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)
	z, err := bb.ReadZigzag64()
	require.NoError(t, err)
	assert.Equal(t, int64(-3), int64(z))
	z32, err := bb.ReadZigzag32()
	require.NoError(t, err)
	assert.Equal(t, int32(-70000), int32(z32))

	assert.Zero(t, bb.Remain())
	_, err = bb.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
	_, err = bb.ReadUint32()
	assert.True(t, errors.Is(err, ErrNotEnough))
}

func TestBytesBufferGrowsAcrossPages(t *testing.T) {
	bb, err := NewBytesBufferWithOrder(16, binary.LittleEndian)
	require.NoError(t, err)
	defer bb.Release()

	g := alloc.Granularity()
	for i := 0; i < 3*g/4; i++ {
		require.NoError(t, bb.WriteUint32(uint32(i)))
	}
	assert.Equal(t, 3*g, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 3*g)
	assert.Zero(t, bb.Cap()%g)

	for i := 0; i < 3*g/4; i++ {
		v, err := bb.ReadUint32()
		require.NoError(t, err)
		if v != uint32(i) {
			t.Fatalf("value %d: got %d", i, v)
		}
	}
}

func TestBytesBufferFromData(t *testing.T) {
	bb, err := CreateBytesBuffer([]byte{0, 1, 0, 2})
	require.NoError(t, err)
	defer bb.Release()

	first, err := bb.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), first)

	p := make([]byte, 4)
	n, err := bb.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0, 2}, p[:n])

	assert.True(t, errors.Is(bb.ReadFull(p), ErrNotEnough))

	capBefore := bb.Cap()
	bb.Reset()
	assert.Zero(t, bb.Len())
	assert.Equal(t, capBefore, bb.Cap())
}

func TestWrapBufferTakesOwnership(t *testing.T) {
	b, err := FromBytes([]byte("xyz"))
	require.NoError(t, err)

	bb := WrapBuffer(b, binary.BigEndian)
	defer bb.Release()
	assert.Zero(t, b.Capacity())
	assert.Equal(t, "xyz", string(bb.Bytes()))

	require.NoError(t, bb.SetWPos(1))
	assert.Equal(t, "x", string(bb.Bytes()))
	assert.True(t, errors.Is(bb.SetWPos(-1), errors.ErrInvalidSize))

	require.NoError(t, bb.SetWPos(10))
	assert.Equal(t, 10, bb.Len())
	bb.SetRPos(20)
	assert.Equal(t, 10, bb.GetRPos())
}
