package platform

// Wire messages for the transaction-processor side of the platform
// connection (C3, see cmd/tp): one multiplexed bidirectional gRPC stream
// carries transaction-process requests from the platform to the processor
// and get/set-state calls from the processor back to the platform,
// distinguished by a one-byte frame kind and correlated by id.

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

type frameKind byte

const (
	kindRegister     frameKind = 1
	kindTPRequest    frameKind = 2 // platform -> processor: apply this transaction
	kindTPResponse   frameKind = 3 // processor -> platform: apply result
	kindGetRequest   frameKind = 4 // processor -> platform: read state
	kindGetResponse  frameKind = 5 // platform -> processor: read result
	kindSetRequest   frameKind = 6 // processor -> platform: write state
	kindSetResponse  frameKind = 7 // platform -> processor: write ack
)

const (
	tagFrameKind protowire.Number = 1
	tagFrameBody protowire.Number = 2
)

func encodeFrame(kind frameKind, body []byte) []byte {
	w := &pwriter{}
	w.putVarint(tagFrameKind, uint64(kind))
	w.putMessage(tagFrameBody, body)
	return w.buf
}

func decodeFrame(b []byte) (frameKind, []byte, error) {
	fields, err := pparse(b)
	if err != nil {
		return 0, nil, err
	}
	var kind frameKind
	var body []byte
	for _, f := range fields {
		switch f.tag {
		case tagFrameKind:
			kind = frameKind(f.varnt)
		case tagFrameBody:
			body = f.bytes
		}
	}
	return kind, body, nil
}

const (
	tagRegFamilyName    protowire.Number = 1
	tagRegFamilyVersion protowire.Number = 2
	tagRegNamespace     protowire.Number = 3
)

func encodeRegister(familyName, familyVersion string, namespaces []string) []byte {
	w := &pwriter{}
	w.putString(tagRegFamilyName, familyName)
	w.putString(tagRegFamilyVersion, familyVersion)
	for _, ns := range namespaces {
		w.putString(tagRegNamespace, ns)
	}
	return w.buf
}

const (
	tagTPReqCorrelation protowire.Number = 1
	tagTPReqPayload     protowire.Number = 2
	tagTPReqSigner      protowire.Number = 3
)

// TPRequest is one transaction the platform hands to C3 for application.
type TPRequest struct {
	CorrelationID string
	Payload       []byte
	Signer        string
}

func decodeTPRequest(b []byte) (TPRequest, error) {
	fields, err := pparse(b)
	if err != nil {
		return TPRequest{}, err
	}
	var r TPRequest
	for _, f := range fields {
		switch f.tag {
		case tagTPReqCorrelation:
			r.CorrelationID = string(f.bytes)
		case tagTPReqPayload:
			r.Payload = f.bytes
		case tagTPReqSigner:
			r.Signer = string(f.bytes)
		}
	}
	return r, nil
}

const (
	tagTPRespCorrelation protowire.Number = 1
	tagTPRespOK          protowire.Number = 2
	tagTPRespError       protowire.Number = 3
)

// TPResponse reports the outcome of applying one TPRequest.
type TPResponse struct {
	CorrelationID string
	OK            bool
	Error         string
}

func encodeTPResponse(r TPResponse) []byte {
	w := &pwriter{}
	w.putString(tagTPRespCorrelation, r.CorrelationID)
	w.putBool(tagTPRespOK, r.OK)
	w.putString(tagTPRespError, r.Error)
	return w.buf
}

const (
	tagGetReqCorrelation protowire.Number = 1
	tagGetReqAddress     protowire.Number = 2
)

func encodeGetRequest(correlationID, address string) []byte {
	w := &pwriter{}
	w.putString(tagGetReqCorrelation, correlationID)
	w.putString(tagGetReqAddress, address)
	return w.buf
}

const (
	tagGetRespCorrelation protowire.Number = 1
	tagGetRespValue       protowire.Number = 2
)

type getResponse struct {
	CorrelationID string
	Value         []byte
}

func decodeGetResponse(b []byte) (getResponse, error) {
	fields, err := pparse(b)
	if err != nil {
		return getResponse{}, err
	}
	var r getResponse
	for _, f := range fields {
		switch f.tag {
		case tagGetRespCorrelation:
			r.CorrelationID = string(f.bytes)
		case tagGetRespValue:
			r.Value = f.bytes
		}
	}
	return r, nil
}

const (
	tagSetReqCorrelation protowire.Number = 1
	tagSetReqAddress     protowire.Number = 2
	tagSetReqValue       protowire.Number = 3
)

func encodeSetRequest(correlationID, address string, value []byte) []byte {
	w := &pwriter{}
	w.putString(tagSetReqCorrelation, correlationID)
	w.putString(tagSetReqAddress, address)
	w.putBytes(tagSetReqValue, value)
	return w.buf
}

const tagSetRespCorrelation protowire.Number = 1

func decodeSetResponseCorrelation(b []byte) (string, error) {
	fields, err := pparse(b)
	if err != nil {
		return "", err
	}
	for _, f := range fields {
		if f.tag == tagSetRespCorrelation {
			return string(f.bytes), nil
		}
	}
	return "", fmt.Errorf("platform: set-state response missing correlation id")
}
