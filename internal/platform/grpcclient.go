package platform

// gRPC transport for EventClient/Submitter, grounded on core/ai.go's
// grpc.Dial(..., insecure.NewCredentials()) pattern: the platform is
// reached in-cluster with no TLS termination at this hop.
//
// There is no compiled .proto schema to generate service stubs from, so
// method calls are made directly against *grpc.ClientConn with a codec
// that carries already-framed bytes (wire.go's protowire-based encoders)
// verbatim — the same technique grpc-proxy style passthrough clients use
// to avoid depending on a generated service definition.

import (
	"context"
	"fmt"
	"io"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(rawBytesCodec{})
}

type rawBytesCodec struct{}

func (rawBytesCodec) Name() string { return "raw" }

func (rawBytesCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("raw codec: want *[]byte, got %T", v)
	}
	return *b, nil
}

func (rawBytesCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("raw codec: want *[]byte, got %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

const (
	methodSubscribe = "/provenance.Validator/Subscribe"
	methodSubmit    = "/provenance.Validator/Submit"
	methodStatus    = "/provenance.Validator/Status"
)

// GRPCClient implements both EventClient and Submitter against one
// long-lived connection to the platform's validator endpoint.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// Dial opens a gRPC connection to endpoint (e.g. the VALIDATOR_URL
// configuration value). The connection carries raw pre-framed messages, so
// no generated stub is required.
func Dial(endpoint string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype("raw")),
	)
	if err != nil {
		return nil, fmt.Errorf("platform: dial %s: %w", endpoint, err)
	}
	return &GRPCClient{conn: conn}, nil
}

func (c *GRPCClient) Close() error { return c.conn.Close() }

// Submit implements Submitter.
func (c *GRPCClient) Submit(ctx context.Context, batch []byte) (string, error) {
	req := batch
	var resp []byte
	if err := c.conn.Invoke(ctx, methodSubmit, &req, &resp); err != nil {
		return "", fmt.Errorf("platform: submit: %w", err)
	}
	return string(resp), nil
}

// Status implements Submitter.
func (c *GRPCClient) Status(ctx context.Context, batchID string) (BatchStatus, error) {
	req := encodeStatusRequest(batchID)
	var resp []byte
	if err := c.conn.Invoke(ctx, methodStatus, &req, &resp); err != nil {
		return StatusUnknown, fmt.Errorf("platform: status: %w", err)
	}
	return decodeStatusResponse(resp)
}

// Subscribe implements EventClient.
func (c *GRPCClient) Subscribe(ctx context.Context, namespacePrefix string, fromBlock uint64) (Subscription, error) {
	stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodSubscribe)
	if err != nil {
		return nil, fmt.Errorf("platform: subscribe: %w", err)
	}
	req := encodeSubscribeRequest(namespacePrefix, fromBlock)
	if err := stream.SendMsg(&req); err != nil {
		return nil, fmt.Errorf("platform: subscribe: send: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("platform: subscribe: close send: %w", err)
	}

	sub := &grpcSubscription{
		stream: stream,
		ch:     make(chan BlockDelta, 64),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

type grpcSubscription struct {
	stream grpc.ClientStream
	ch     chan BlockDelta
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func (s *grpcSubscription) pump() {
	defer close(s.ch)
	for {
		var raw []byte
		err := s.stream.RecvMsg(&raw)
		if err == io.EOF {
			return
		}
		if err != nil {
			s.setErr(fmt.Errorf("platform: subscribe: recv: %w", err))
			return
		}
		delta, err := decodeBlockDelta(raw)
		if err != nil {
			s.setErr(fmt.Errorf("platform: subscribe: decode: %w", err))
			return
		}
		select {
		case s.ch <- delta:
		case <-s.done:
			return
		}
	}
}

func (s *grpcSubscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *grpcSubscription) Deltas() <-chan BlockDelta { return s.ch }

func (s *grpcSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *grpcSubscription) Close() error {
	close(s.done)
	return nil
}
