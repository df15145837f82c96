package main

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync/atomic"
)

// ErrBitOutOfRange reports a bit offset that does not fit its register,
// after negative offsets have been normalized.
var ErrBitOutOfRange = errors.New("bit offset out of register range")

// BitKind distinguishes quantum wires from classical wires.
type BitKind int

const (
	KindQubit BitKind = iota
	KindClbit
)

func (k BitKind) String() string {
	if k == KindClbit {
		return "Clbit"
	}
	return "Qubit"
}

// Register is a named, fixed-size collection of bits of one kind.
// Registers are immutable after construction.
type Register struct {
	kind BitKind
	name string
	size int
}

// NewQuantumRegister creates a register of qubits.
func NewQuantumRegister(size int, name string) *Register {
	return &Register{kind: KindQubit, name: name, size: size}
}

// NewClassicalRegister creates a register of classical bits.
func NewClassicalRegister(size int, name string) *Register {
	return &Register{kind: KindClbit, name: name, size: size}
}

func (r *Register) Kind() BitKind { return r.kind }
func (r *Register) Name() string  { return r.name }
func (r *Register) Size() int     { return r.size }

// String returns the register's display form. Bit equality is defined over
// display strings, so two registers that render identically are the same
// register as far as their bits are concerned.
func (r *Register) String() string {
	kind := "QuantumRegister"
	if r.kind == KindClbit {
		kind = "ClassicalRegister"
	}
	return fmt.Sprintf("%s(%d, %q)", kind, r.size, r.name)
}

// Bit returns the bit at the given offset. Negative offsets count from the
// end of the register, as in r.Bit(-1) for the last bit.
func (r *Register) Bit(offset int) (*Bit, error) {
	return NewBit(r, offset)
}

// Bits returns all bits of the register in offset order.
func (r *Register) Bits() []*Bit {
	bits := make([]*Bit, r.size)
	for i := range bits {
		bits[i], _ = NewBit(r, i)
	}
	return bits
}

func (r *Register) clone() *Register {
	c := *r
	return &c
}

// looseBitSeq hands out identities for bits created without a register.
var looseBitSeq atomic.Uint64

// Bit is an immutable addressable unit used as operation operand and as a
// DAG wire key. A bit is either owned by a register, in which case two bits
// are equal when their display strings match, or loose, in which case a bit
// is only equal to itself.
type Bit struct {
	kind     BitKind
	register *Register // nil for loose bits
	offset   int       // -1 for loose bits
	id       uint64    // nonzero for loose bits only
	hash     uint64
	repr     string
}

// NewBit creates a bit owned by reg at the given offset. A negative offset
// is normalized by adding the register size; an offset that still falls
// outside [0, size) fails with ErrBitOutOfRange.
func NewBit(reg *Register, offset int) (*Bit, error) {
	if offset < 0 {
		offset += reg.size
	}
	if offset < 0 || offset >= reg.size {
		return nil, fmt.Errorf("%w: offset %d on %s", ErrBitOutOfRange, offset, reg)
	}
	b := &Bit{kind: reg.kind, register: reg, offset: offset}
	b.repr = fmt.Sprintf("%s(%s, %d)", b.kind, reg, offset)
	h := fnv.New64a()
	h.Write([]byte(b.repr))
	// Owned bits hash in the lower half of the space, loose bits in the
	// upper half, so the two families never collide.
	b.hash = h.Sum64() &^ (1 << 63)
	return b, nil
}

// NewLooseBit creates a bit that belongs to no register. Loose bits compare
// equal only to themselves.
func NewLooseBit(kind BitKind) *Bit {
	id := looseBitSeq.Add(1)
	b := &Bit{kind: kind, register: nil, offset: -1, id: id}
	b.hash = id | (1 << 63)
	b.repr = fmt.Sprintf("%s(0x%x)", kind, id)
	return b
}

func (b *Bit) Kind() BitKind       { return b.kind }
func (b *Bit) Register() *Register { return b.register }

// Offset returns the normalized offset within the owning register, or -1
// for a loose bit.
func (b *Bit) Offset() int { return b.offset }

// Hash returns the bit's precomputed hash. Equal bits hash equal.
func (b *Bit) Hash() uint64 { return b.hash }

func (b *Bit) String() string { return b.repr }

// Key returns a comparable key suitable for map lookups: value identity for
// owned bits, object identity for loose ones.
func (b *Bit) Key() string {
	if b.register == nil {
		return fmt.Sprintf("loose:%d", b.id)
	}
	return b.repr
}

// Equal reports whether two bits denote the same wire. An owned bit equals
// any bit with the same display string, even one owned by a different
// register instance; a loose bit equals only the same instance.
func (b *Bit) Equal(other *Bit) bool {
	if other == nil {
		return false
	}
	if b.register == nil || other.register == nil {
		return b == other
	}
	return b.repr == other.repr
}

// Copy returns the bit itself: bits are immutable.
func (b *Bit) Copy() *Bit { return b }

// DeepCopy duplicates the owning register of an owned bit and reuses the
// originally computed hash and display string. Loose bits are returned
// as-is, preserving identity equality.
func (b *Bit) DeepCopy() *Bit {
	if b.register == nil {
		return b
	}
	clone := *b
	clone.register = b.register.clone()
	return &clone
}
