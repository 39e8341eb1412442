package batcher

// Wire framing for the batch envelope submitted to the platform (spec.md
// §4.4, §6): familyName/familyVersion/nonce/payloadSha512/batcherPublicKey
// header fields plus the already-signed transaction payloads. Builds on
// protowire the same way core/wire.go and internal/platform/wire.go do.

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
}

func pparse(b []byte) ([]pfield, error) {
	var out []pfield
	for len(b) > 0 {
		tag, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("batcher wire: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.BytesType {
			return nil, fmt.Errorf("batcher wire: unsupported wire type %v", typ)
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("batcher wire: bad bytes: %w", protowire.ParseError(n))
		}
		cp := make([]byte, len(v))
		copy(cp, v)
		out = append(out, pfield{tag: tag, bytes: cp})
		b = b[n:]
	}
	return out, nil
}

const (
	tagTxnHeader    protowire.Number = 1
	tagTxnPayload   protowire.Number = 2
	tagTxnSignature protowire.Number = 3
)

func encodeTransaction(t Transaction) []byte {
	w := &pwriter{}
	w.putMessage(tagTxnHeader, encodeHeader(t.Header))
	w.putBytes(tagTxnPayload, t.Payload)
	w.putString(tagTxnSignature, t.Signature)
	return w.buf
}

func decodeTransaction(b []byte) (Transaction, error) {
	fields, err := pparse(b)
	if err != nil {
		return Transaction{}, err
	}
	var t Transaction
	for _, f := range fields {
		switch f.tag {
		case tagTxnHeader:
			h, err := decodeHeader(f.bytes)
			if err != nil {
				return Transaction{}, err
			}
			t.Header = h
		case tagTxnPayload:
			t.Payload = f.bytes
		case tagTxnSignature:
			t.Signature = string(f.bytes)
		}
	}
	return t, nil
}

const (
	tagHdrFamilyName    protowire.Number = 1
	tagHdrFamilyVersion protowire.Number = 2
	tagHdrNonce         protowire.Number = 3
	tagHdrPayloadSha512 protowire.Number = 4
	tagHdrBatcherPubKey protowire.Number = 5
	tagHdrSignerPubKey  protowire.Number = 6
	tagHdrInput         protowire.Number = 7
	tagHdrOutput        protowire.Number = 8
)

func encodeHeader(h Header) []byte {
	w := &pwriter{}
	w.putString(tagHdrFamilyName, h.FamilyName)
	w.putString(tagHdrFamilyVersion, h.FamilyVersion)
	w.putString(tagHdrNonce, h.Nonce)
	w.putString(tagHdrPayloadSha512, h.PayloadSha512)
	w.putString(tagHdrBatcherPubKey, h.BatcherPublicKey)
	w.putString(tagHdrSignerPubKey, h.SignerPublicKey)
	for _, in := range h.Inputs {
		w.putString(tagHdrInput, in)
	}
	for _, out := range h.Outputs {
		w.putString(tagHdrOutput, out)
	}
	return w.buf
}

func decodeHeader(b []byte) (Header, error) {
	fields, err := pparse(b)
	if err != nil {
		return Header{}, err
	}
	var h Header
	for _, f := range fields {
		switch f.tag {
		case tagHdrFamilyName:
			h.FamilyName = string(f.bytes)
		case tagHdrFamilyVersion:
			h.FamilyVersion = string(f.bytes)
		case tagHdrNonce:
			h.Nonce = string(f.bytes)
		case tagHdrPayloadSha512:
			h.PayloadSha512 = string(f.bytes)
		case tagHdrBatcherPubKey:
			h.BatcherPublicKey = string(f.bytes)
		case tagHdrSignerPubKey:
			h.SignerPublicKey = string(f.bytes)
		case tagHdrInput:
			h.Inputs = append(h.Inputs, string(f.bytes))
		case tagHdrOutput:
			h.Outputs = append(h.Outputs, string(f.bytes))
		}
	}
	return h, nil
}

const (
	tagBatchTxn       protowire.Number = 1
	tagBatchPublicKey protowire.Number = 2
	tagBatchSignature protowire.Number = 3
	tagBatchNonce     protowire.Number = 4
)

func encodeBatch(b Batch) []byte {
	w := &pwriter{}
	for _, t := range b.Transactions {
		w.putMessage(tagBatchTxn, encodeTransaction(t))
	}
	w.putString(tagBatchPublicKey, b.BatcherPublicKey)
	w.putString(tagBatchSignature, b.Signature)
	w.putString(tagBatchNonce, b.Nonce)
	return w.buf
}

func decodeBatch(raw []byte) (Batch, error) {
	fields, err := pparse(raw)
	if err != nil {
		return Batch{}, err
	}
	var b Batch
	for _, f := range fields {
		switch f.tag {
		case tagBatchTxn:
			t, err := decodeTransaction(f.bytes)
			if err != nil {
				return Batch{}, err
			}
			b.Transactions = append(b.Transactions, t)
		case tagBatchPublicKey:
			b.BatcherPublicKey = string(f.bytes)
		case tagBatchSignature:
			b.Signature = string(f.bytes)
		case tagBatchNonce:
			b.Nonce = string(f.bytes)
		}
	}
	return b, nil
}
