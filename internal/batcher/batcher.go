// Package batcher implements C4: validating already-signed transactions,
// wrapping them in a batch signed by the server's long-lived batcher key
// K_b, submitting to the platform, and optionally waiting for settlement
// (spec.md §4.4).
package batcher

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ripemd160"

	"provenance-chain/internal/perr"
	"provenance-chain/internal/platform"
)

// Header is a transaction's wire header, carried alongside its opaque
// payload bytes (the domain payload, see core/payload.go).
type Header struct {
	FamilyName       string
	FamilyVersion    string
	Nonce            string
	PayloadSha512    string
	BatcherPublicKey string
	SignerPublicKey  string
	Inputs           []string
	Outputs          []string
}

// Transaction is one already end-user-signed transaction, as received from
// a caller of C4.
type Transaction struct {
	Header    Header
	Payload   []byte
	Signature string // end-user signature over Header+Payload, hex-encoded
}

// Batch is a set of transactions wrapped and signed by the batcher key.
type Batch struct {
	Transactions     []Transaction
	BatcherPublicKey string
	Signature        string
	Nonce            string
}

// Result is what SubmitBatch reports back to the HTTP caller.
type Result struct {
	BatchID string
	Status  platform.BatchStatus
}

// Batcher holds the server's signing key and the platform client it submits
// through (spec.md §5: "the signing key, its context, and the platform
// client stream are process-wide shared resources").
type Batcher struct {
	priv           ed25519.PrivateKey
	pub            ed25519.PublicKey
	pubHex         string
	accountID      string
	submitter      platform.Submitter
	settleInterval time.Duration
	log            *logrus.Logger
}

// accountIDOf derives a 20-byte SHA-256/RIPEMD-160 account identifier from
// an ed25519 public key, the same two-hash scheme core/wallet.go uses for
// its account addresses. The domain's own addresses (core/address.go) never
// use this — it exists purely as a short, log-friendly stand-in for the
// batcher's full 64-hex public key.
func accountIDOf(pub ed25519.PublicKey) string {
	sha := sha256.Sum256(pub)
	r := ripemd160.New()
	r.Write(sha[:])
	return hex.EncodeToString(r.Sum(nil))
}

// New constructs a Batcher from a 64-hex ed25519 private key seed (spec.md
// §6's PRIVATE_KEY), following core/wallet.go's ed25519 key handling.
func New(privateKeyHex string, submitter platform.Submitter, settleInterval time.Duration, log *logrus.Logger) (*Batcher, error) {
	seed, err := hex.DecodeString(privateKeyHex)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, perr.Validationf("batcher: PRIVATE_KEY must be %d hex bytes", ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Batcher{
		priv:           priv,
		pub:            pub,
		pubHex:         hex.EncodeToString(pub),
		accountID:      accountIDOf(pub),
		submitter:      submitter,
		settleInterval: settleInterval,
		log:            log,
	}, nil
}

// PublicKey returns the batcher's hex-encoded public key, the value every
// incoming transaction header's batcherPublicKey field must match.
func (b *Batcher) PublicKey() string { return b.pubHex }

// AccountID returns the batcher's short derived account identifier, used in
// structured logging in place of the full public key.
func (b *Batcher) AccountID() string { return b.accountID }

// validateHeaders rejects any transaction whose batcherPublicKey does not
// match this server's key (spec.md §4.4: taxonomy BadRequest/ValidationError).
func (b *Batcher) validateHeaders(txns []Transaction) error {
	if len(txns) == 0 {
		return perr.Validationf("batch: at least one transaction is required")
	}
	for i, t := range txns {
		if t.Header.BatcherPublicKey != b.pubHex {
			return perr.Validationf("batch: transaction %d batcherPublicKey %q does not match server key %q",
				i, t.Header.BatcherPublicKey, b.pubHex)
		}
	}
	return nil
}

// sign produces the batcher's signature over the batch's transaction list
// and nonce.
func (b *Batcher) sign(nonce string, txns []Transaction) string {
	h := sha512.New()
	h.Write([]byte(nonce))
	for _, t := range txns {
		h.Write(t.Payload)
	}
	sig := ed25519.Sign(b.priv, h.Sum(nil))
	return hex.EncodeToString(sig)
}

// SubmitBatch validates, wraps, signs and submits txns. If wait is true it
// polls the platform's status endpoint until COMMITTED/INVALID or timeout
// elapses, then (on COMMITTED) sleeps settleInterval before returning so C5
// has had a chance to observe the committed block.
func (b *Batcher) SubmitBatch(ctx context.Context, txns []Transaction, wait bool, timeout time.Duration) (Result, error) {
	if err := b.validateHeaders(txns); err != nil {
		return Result{}, err
	}
	nonce, err := generateNonce()
	if err != nil {
		return Result{}, perr.Transient("generate_nonce", err)
	}
	batch := Batch{
		Transactions:     txns,
		BatcherPublicKey: b.pubHex,
		Nonce:            nonce,
	}
	batch.Signature = b.sign(nonce, txns)

	batchID, err := b.submitter.Submit(ctx, encodeBatch(batch))
	if err != nil {
		return Result{}, perr.Transient("submit", err)
	}
	b.log.WithFields(logrus.Fields{"batch_id": batchID, "account_id": b.accountID}).Info("batch submitted")

	if !wait {
		return Result{BatchID: batchID, Status: platform.StatusPending}, nil
	}
	return b.awaitSettlement(ctx, batchID, timeout)
}

func (b *Batcher) awaitSettlement(ctx context.Context, batchID string, timeout time.Duration) (Result, error) {
	deadline := time.Now().Add(timeout)
	const pollInterval = 50 * time.Millisecond
	for {
		status, err := b.submitter.Status(ctx, batchID)
		if err != nil {
			return Result{}, perr.Transient("status", err)
		}
		switch status {
		case platform.StatusCommitted:
			select {
			case <-time.After(b.settleInterval):
			case <-ctx.Done():
				return Result{}, perr.Transient("await_settlement", ctx.Err())
			}
			return Result{BatchID: batchID, Status: status}, nil
		case platform.StatusInvalid:
			return Result{BatchID: batchID, Status: status}, nil
		}
		if time.Now().After(deadline) {
			return Result{BatchID: batchID, Status: status}, nil
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return Result{}, perr.Transient("await_settlement", ctx.Err())
		}
	}
}
