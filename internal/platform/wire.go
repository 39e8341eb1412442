package platform

// Minimal protowire-based framing for the handful of messages this package
// exchanges with the platform over gRPC (subscribe requests, block-delta
// envelopes, submit/status calls). Mirrors core/wire.go's approach of
// building on protowire's tag/varint primitives rather than hand-rolling a
// codec — this package intentionally does not import core, since it speaks
// the platform's own envelope format, not the domain's Container format.

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

type pwriter struct{ buf []byte }

func (w *pwriter) putString(tag protowire.Number, v string) {
	if v == "" {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.BytesType)
	w.buf = protowire.AppendString(w.buf, v)
}

func (w *pwriter) putBytes(tag protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, v)
}

func (w *pwriter) putVarint(tag protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, v)
}

func (w *pwriter) putBool(tag protowire.Number, v bool) {
	if !v {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, 1)
}

func (w *pwriter) putMessage(tag protowire.Number, body []byte) {
	if len(body) == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, tag, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, body)
}

type pfield struct {
	tag   protowire.Number
	bytes []byte
	varnt uint64
}

func pparse(b []byte) ([]pfield, error) {
	var out []pfield
	for len(b) > 0 {
		tag, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("platform wire: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("platform wire: bad varint: %w", protowire.ParseError(n))
			}
			out = append(out, pfield{tag: tag, varnt: v})
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("platform wire: bad bytes: %w", protowire.ParseError(n))
			}
			cp := make([]byte, len(v))
			copy(cp, v)
			out = append(out, pfield{tag: tag, bytes: cp})
			b = b[n:]
		default:
			return nil, fmt.Errorf("platform wire: unsupported wire type %v", typ)
		}
	}
	return out, nil
}

const (
	tagSubNamespace protowire.Number = 1
	tagSubFromBlock protowire.Number = 2
)

func encodeSubscribeRequest(namespacePrefix string, fromBlock uint64) []byte {
	w := &pwriter{}
	w.putString(tagSubNamespace, namespacePrefix)
	w.putVarint(tagSubFromBlock, fromBlock)
	return w.buf
}

const (
	tagChangeAddress protowire.Number = 1
	tagChangeValue   protowire.Number = 2
	tagChangeDeleted protowire.Number = 3
)

func encodeStateChange(c StateChange) []byte {
	w := &pwriter{}
	w.putString(tagChangeAddress, c.Address)
	w.putBytes(tagChangeValue, c.Value)
	w.putBool(tagChangeDeleted, c.Deleted)
	return w.buf
}

func decodeStateChange(b []byte) (StateChange, error) {
	fields, err := pparse(b)
	if err != nil {
		return StateChange{}, err
	}
	var c StateChange
	for _, f := range fields {
		switch f.tag {
		case tagChangeAddress:
			c.Address = string(f.bytes)
		case tagChangeValue:
			c.Value = f.bytes
		case tagChangeDeleted:
			c.Deleted = f.varnt != 0
		}
	}
	return c, nil
}

const (
	tagDeltaBlockNum protowire.Number = 1
	tagDeltaBlockID  protowire.Number = 2
	tagDeltaChanges  protowire.Number = 3
)

func encodeBlockDelta(d BlockDelta) []byte {
	w := &pwriter{}
	w.putVarint(tagDeltaBlockNum, d.BlockNum)
	w.putString(tagDeltaBlockID, d.BlockID)
	for _, c := range d.Changes {
		w.putMessage(tagDeltaChanges, encodeStateChange(c))
	}
	return w.buf
}

func decodeBlockDelta(b []byte) (BlockDelta, error) {
	fields, err := pparse(b)
	if err != nil {
		return BlockDelta{}, err
	}
	var d BlockDelta
	for _, f := range fields {
		switch f.tag {
		case tagDeltaBlockNum:
			d.BlockNum = f.varnt
		case tagDeltaBlockID:
			d.BlockID = string(f.bytes)
		case tagDeltaChanges:
			c, err := decodeStateChange(f.bytes)
			if err != nil {
				return BlockDelta{}, err
			}
			d.Changes = append(d.Changes, c)
		}
	}
	return d, nil
}

const (
	tagStatusID     protowire.Number = 1
	tagStatusResult protowire.Number = 2
)

func encodeStatusRequest(batchID string) []byte {
	w := &pwriter{}
	w.putString(tagStatusID, batchID)
	return w.buf
}

func decodeStatusResponse(b []byte) (BatchStatus, error) {
	fields, err := pparse(b)
	if err != nil {
		return StatusUnknown, err
	}
	for _, f := range fields {
		if f.tag == tagStatusResult {
			return BatchStatus(f.varnt), nil
		}
	}
	return StatusUnknown, nil
}
