// Package keycodec encodes and decodes the composite keys used by the
// graph store's column families.
//
// A composite key is the concatenation of typed components with no
// separator. Every component except a trailing UnsizedString either has a
// fixed size (UUID, DateTime) or a self-delimiting length prefix (Type),
// which makes the concatenation a prefix code: lexicographic comparison of
// the encoded bytes equals tuple-lexicographic comparison of the decoded
// components, with Type compared by its length byte first — Types of equal
// length compare bytewise, and a shorter Type sorts before a longer one.
// Keys sharing a leading (UUID, Type) group are therefore contiguous, which
// is what makes the prefix-bounded range scans in package graphstore
// correct, so every key built anywhere in this module goes through here
// rather than being hand-assembled.
//
// Decoding assumes the caller knows which column family (and therefore
// which component schema) a key came from. A key that doesn't match the
// expected schema is a programmer error: decode methods panic with a
// SchemaViolation rather than returning a recoverable error.
package keycodec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// MaxDateTime is the largest representable DateTime. Because DateTime is
// encoded descending (see Builder.DateTime), MaxDateTime's encoded form is
// the all-zero 8 bytes, which sorts before every real timestamp — seeking to
// a key built with MaxDateTime lands on the newest entry in a range.
var MaxDateTime = DateTimeFromUnixNano(math.MaxInt64)

// DateTime is a monotone-comparable wall-clock instant, stored with
// nanosecond resolution.
type DateTime struct {
	nanos int64
}

// DateTimeFromUnixNano builds a DateTime from nanoseconds since the Unix
// epoch.
func DateTimeFromUnixNano(nanos int64) DateTime {
	return DateTime{nanos: nanos}
}

// UnixNano returns the instant as nanoseconds since the Unix epoch.
func (d DateTime) UnixNano() int64 {
	return d.nanos
}

// Before reports whether d occurs before other.
func (d DateTime) Before(other DateTime) bool {
	return d.nanos < other.nanos
}

// Type is a short textual label (a vertex or edge type). It is encoded as a
// one-byte length followed by its UTF-8 bytes, so it must be 1..=255 bytes
// long; the empty string is illegal (SchemaViolation on encode).
type Type string

// SchemaViolation reports that a key could not be parsed according to its
// expected component schema. Per the storage core's error contract this is
// always a programmer error: it is raised as a panic, never returned.
type SchemaViolation struct {
	Reason string
}

func (e SchemaViolation) Error() string {
	return fmt.Sprintf("keycodec: schema violation: %s", e.Reason)
}

func violate(format string, args ...any) {
	panic(SchemaViolation{Reason: fmt.Sprintf(format, args...)})
}

// Builder accumulates components into a composite key. The zero value is
// ready to use.
type Builder struct {
	buf []byte
}

// NewBuilder returns a Builder with capacity pre-reserved, to avoid
// reallocation for keys of a known maximum size.
func NewBuilder(capacityHint int) *Builder {
	return &Builder{buf: make([]byte, 0, capacityHint)}
}

// UUID appends a 16-byte big-endian canonical UUID component.
func (b *Builder) UUID(id uuid.UUID) *Builder {
	b.buf = append(b.buf, id[:]...)
	return b
}

// Type appends a length-prefixed Type component. Panics if t is empty or
// longer than 255 bytes.
func (b *Builder) Type(t Type) *Builder {
	s := []byte(t)
	if len(s) == 0 {
		violate("type component must not be empty")
	}
	if len(s) > 255 {
		violate("type component %q exceeds 255 bytes", t)
	}
	b.buf = append(b.buf, byte(len(s)))
	b.buf = append(b.buf, s...)
	return b
}

// DateTime appends a fixed 8-byte DateTime component, encoded descending:
// math.MaxInt64-nanos, so that a larger (later) instant produces a smaller
// byte string. Every encoder and decoder in the module goes through
// encodeDescending/decodeDescending so the convention can't drift between
// read and write paths.
func (b *Builder) DateTime(dt DateTime) *Builder {
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], encodeDescending(dt.nanos))
	b.buf = append(b.buf, enc[:]...)
	return b
}

// UnsizedString appends a raw UTF-8 component with no length prefix. Legal
// only as the final component of a key — ordering degrades to plain
// bytewise comparison of the remaining bytes, and decoding must know to
// consume "everything left" rather than a delimited span.
func (b *Builder) UnsizedString(s string) *Builder {
	b.buf = append(b.buf, s...)
	return b
}

// Bytes returns the accumulated key. The Builder may continue to be used
// after calling Bytes; each call returns the current accumulated slice
// without copying, so callers that retain the result across further Builder
// calls should copy it first.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// encodeDescending maps an int64 instant to a uint64 such that a later
// instant produces a smaller value. It first maps int64's ordering onto
// uint64's ordering with the standard sign-flip trick, then complements the
// result so the mapping runs in reverse.
func encodeDescending(nanos int64) uint64 {
	ordered := uint64(nanos) ^ (1 << 63)
	return ^ordered
}

// decodeDescending inverts encodeDescending.
func decodeDescending(enc uint64) int64 {
	ordered := ^enc
	return int64(ordered ^ (1 << 63))
}

// Cursor decodes components from a key in declared order. Cursor is
// single-use per key: construct a fresh one for each key decoded.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps key for sequential component decoding.
func NewCursor(key []byte) *Cursor {
	return &Cursor{buf: key}
}

// Remaining reports how many bytes are left unconsumed.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// UUID consumes a 16-byte UUID component.
func (c *Cursor) UUID() uuid.UUID {
	if c.Remaining() < 16 {
		violate("truncated UUID component: %d bytes remaining, need 16", c.Remaining())
	}
	var id uuid.UUID
	copy(id[:], c.buf[c.pos:c.pos+16])
	c.pos += 16
	return id
}

// Type consumes a length-prefixed Type component.
func (c *Cursor) Type() Type {
	if c.Remaining() < 1 {
		violate("truncated type component: missing length byte")
	}
	l := int(c.buf[c.pos])
	if l == 0 {
		violate("type component length byte is zero")
	}
	c.pos++
	if c.Remaining() < l {
		violate("truncated type component: declared length %d, %d bytes remaining", l, c.Remaining())
	}
	t := Type(c.buf[c.pos : c.pos+l])
	c.pos += l
	return t
}

// DateTime consumes a fixed 8-byte DateTime component.
func (c *Cursor) DateTime() DateTime {
	if c.Remaining() < 8 {
		violate("truncated datetime component: %d bytes remaining, need 8", c.Remaining())
	}
	enc := binary.BigEndian.Uint64(c.buf[c.pos : c.pos+8])
	c.pos += 8
	return DateTime{nanos: decodeDescending(enc)}
}

// UnsizedString consumes every remaining byte as a UTF-8 string. Must be
// the last component decoded from a key.
func (c *Cursor) UnsizedString() string {
	s := string(c.buf[c.pos:])
	c.pos = len(c.buf)
	return s
}
