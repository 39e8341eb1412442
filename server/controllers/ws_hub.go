package controllers

// BlockHub fans out newly-applied block descriptors to connected /ws/blocks
// operators. Grounded on core/common_structs.go's PeerManager.Subscribe
// channel-per-subscriber idiom, generalized from a byte-proto key to one
// channel per live websocket connection.

import (
	"sync"

	"provenance-chain/internal/platform"
)

type BlockHub struct {
	mu   sync.Mutex
	subs map[chan platform.BlockDelta]struct{}
}

func NewBlockHub() *BlockHub {
	return &BlockHub{subs: make(map[chan platform.BlockDelta]struct{})}
}

// Subscribe registers a new fan-out channel; the caller must call the
// returned cancel func when done to avoid leaking the channel.
func (h *BlockHub) Subscribe() (<-chan platform.BlockDelta, func()) {
	ch := make(chan platform.BlockDelta, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// Broadcast pushes delta to every live subscriber, dropping it for any
// subscriber whose buffer is full rather than blocking the caller (this
// runs on ledgersync's single-writer goroutine; a slow websocket client
// must never stall block application).
func (h *BlockHub) Broadcast(delta platform.BlockDelta) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- delta:
		default:
		}
	}
}
