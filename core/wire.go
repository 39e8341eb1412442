package core

// Binary wire codec shared by every message in core/entities.go,
// core/values.go, core/payload.go and core/container.go. Field tags are
// dense, assigned once in declaration order beside each message type in
// those files, and never renumbered — decoded bytes flow unchanged between
// the transaction processor (writer) and the ledger-sync pipeline (reader),
// so the encoding must stay byte-stable (spec.md §4.2).
//
// Built on protowire's length-delimited/varint primitives rather than a
// hand-rolled tag/varint implementation: the wire shape (tag + varint or
// tag + length-delimited bytes) is exactly protobuf's, and protowire is the
// same low-level package protoc-gen-go emits calls to, without requiring a
// .proto compile step we can't run here.

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// fieldWriter accumulates an encoded message body.
type fieldWriter struct {
	buf []byte
}

func (w *fieldWriter) putString(tag protowire.Number, v string) {
	if v == "" {
		return // default omission
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.BytesType)
	w.buf = protowire.AppendString(w.buf, v)
}

func (w *fieldWriter) putBytes(tag protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, v)
}

func (w *fieldWriter) putVarint(tag protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, v)
}

func (w *fieldWriter) putBool(tag protowire.Number, v bool) {
	if !v {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, 1)
}

func (w *fieldWriter) putSint64(tag protowire.Number, v int64) {
	if v == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeZigZag(v))
}

func (w *fieldWriter) putMessage(tag protowire.Number, body []byte) {
	if len(body) == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, body)
}

// fieldValue is one decoded (tag, type, raw-payload) triple.
type fieldValue struct {
	tag   protowire.Number
	typ   protowire.Type
	bytes []byte // for BytesType
	varnt uint64 // for VarintType
}

// parseFields walks every top-level field of an encoded message. Unknown
// field numbers are preserved in order but left to the caller to ignore,
// matching the permissive-decode stance the teacher's codecs take
// elsewhere (extra fields from a future family version don't abort decode).
func parseFields(b []byte) ([]fieldValue, error) {
	var out []fieldValue
	for len(b) > 0 {
		tag, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("wire: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: bad varint: %w", protowire.ParseError(n))
			}
			out = append(out, fieldValue{tag: tag, typ: typ, varnt: v})
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("wire: bad length-delimited field: %w", protowire.ParseError(n))
			}
			cp := make([]byte, len(v))
			copy(cp, v)
			out = append(out, fieldValue{tag: tag, typ: typ, bytes: cp})
			b = b[n:]
		default:
			return nil, fmt.Errorf("wire: unsupported wire type %v", typ)
		}
	}
	return out, nil
}

func sintFromVarint(v uint64) int64 {
	return protowire.DecodeZigZag(v)
}
