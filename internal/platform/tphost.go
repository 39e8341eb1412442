package platform

// TPHost is the processor side (C3) of the multiplexed transaction-process
// stream: it registers a transaction family with the platform, receives
// TPRequests to apply, and answers them with GetState/SetState calls
// correlated back over the same bidi stream. Built on the same
// raw-bytes-codec gRPC technique as GRPCClient (grpcclient.go), generalizing
// core/connection_pool.go's mutex-guarded-map idiom from "one connection per
// peer" to "one pending-response channel per in-flight correlation id".

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const methodProcess = "/provenance.Validator/Process"

type TPHost struct {
	stream grpc.ClientStream
	conn   *grpc.ClientConn

	reqs chan TPRequest

	mu         sync.Mutex
	pendingGet map[string]chan getResponse
	pendingSet map[string]chan struct{}

	closeOnce sync.Once
	done      chan struct{}
	err       error
}

// HostTP dials endpoint and registers familyName/familyVersion over
// namespaces, returning a TPHost ready to serve Requests().
func HostTP(ctx context.Context, endpoint, familyName, familyVersion string, namespaces []string) (*TPHost, error) {
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype("raw")),
	)
	if err != nil {
		return nil, fmt.Errorf("platform: tp dial %s: %w", endpoint, err)
	}
	stream, err := conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true, ClientStreams: true}, methodProcess)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("platform: tp process stream: %w", err)
	}

	h := &TPHost{
		stream:     stream,
		conn:       conn,
		reqs:       make(chan TPRequest, 16),
		pendingGet: make(map[string]chan getResponse),
		pendingSet: make(map[string]chan struct{}),
		done:       make(chan struct{}),
	}

	reg := encodeFrame(kindRegister, encodeRegister(familyName, familyVersion, namespaces))
	if err := stream.SendMsg(&reg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("platform: tp register: %w", err)
	}

	go h.pump()
	return h, nil
}

func (h *TPHost) pump() {
	defer close(h.reqs)
	defer close(h.done)
	for {
		var raw []byte
		if err := h.stream.RecvMsg(&raw); err != nil {
			if err != io.EOF {
				h.setErr(fmt.Errorf("platform: tp recv: %w", err))
			}
			return
		}
		kind, body, err := decodeFrame(raw)
		if err != nil {
			h.setErr(fmt.Errorf("platform: tp decode frame: %w", err))
			return
		}
		switch kind {
		case kindTPRequest:
			req, err := decodeTPRequest(body)
			if err != nil {
				h.setErr(fmt.Errorf("platform: tp decode request: %w", err))
				return
			}
			h.reqs <- req
		case kindGetResponse:
			resp, err := decodeGetResponse(body)
			if err != nil {
				h.setErr(fmt.Errorf("platform: tp decode get response: %w", err))
				return
			}
			h.mu.Lock()
			ch, ok := h.pendingGet[resp.CorrelationID]
			delete(h.pendingGet, resp.CorrelationID)
			h.mu.Unlock()
			if ok {
				ch <- resp
			}
		case kindSetResponse:
			id, err := decodeSetResponseCorrelation(body)
			if err != nil {
				h.setErr(fmt.Errorf("platform: tp decode set response: %w", err))
				return
			}
			h.mu.Lock()
			ch, ok := h.pendingSet[id]
			delete(h.pendingSet, id)
			h.mu.Unlock()
			if ok {
				close(ch)
			}
		}
	}
}

func (h *TPHost) setErr(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
}

// Err reports the reason the request stream ended, if any.
func (h *TPHost) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Requests yields transactions the platform hands to this processor for
// application, in delivery order. The channel closes when the stream ends.
func (h *TPHost) Requests() <-chan TPRequest { return h.reqs }

// Respond reports the outcome of applying one TPRequest.
func (h *TPHost) Respond(resp TPResponse) error {
	frame := encodeFrame(kindTPResponse, encodeTPResponse(resp))
	if err := h.stream.SendMsg(&frame); err != nil {
		return fmt.Errorf("platform: tp respond: %w", err)
	}
	return nil
}

// GetState reads one address's current value by round-tripping a
// correlation-tagged request over the shared stream.
func (h *TPHost) GetState(ctx context.Context, address string) ([]byte, error) {
	id := uuid.NewString()
	ch := make(chan getResponse, 1)
	h.mu.Lock()
	h.pendingGet[id] = ch
	h.mu.Unlock()

	frame := encodeFrame(kindGetRequest, encodeGetRequest(id, address))
	if err := h.stream.SendMsg(&frame); err != nil {
		h.mu.Lock()
		delete(h.pendingGet, id)
		h.mu.Unlock()
		return nil, fmt.Errorf("platform: tp get %s: %w", address, err)
	}

	select {
	case resp := <-ch:
		return resp.Value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.done:
		return nil, h.Err()
	}
}

// SetState writes one address's value, returning once the platform has
// acknowledged it.
func (h *TPHost) SetState(ctx context.Context, address string, value []byte) error {
	id := uuid.NewString()
	ch := make(chan struct{})
	h.mu.Lock()
	h.pendingSet[id] = ch
	h.mu.Unlock()

	frame := encodeFrame(kindSetRequest, encodeSetRequest(id, address, value))
	if err := h.stream.SendMsg(&frame); err != nil {
		h.mu.Lock()
		delete(h.pendingSet, id)
		h.mu.Unlock()
		return fmt.Errorf("platform: tp set %s: %w", address, err)
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return h.Err()
	}
}

func (h *TPHost) Close() error {
	var err error
	h.closeOnce.Do(func() {
		err = h.conn.Close()
	})
	return err
}
