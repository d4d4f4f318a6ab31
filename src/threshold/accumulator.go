package threshold

import (
	"time"

	"github.com/xornet-io/xornet/src/common"
)

// AccumulationTimeout is the time within which a payload and a quorum of
// shares need to arrive to accumulate.
const AccumulationTimeout = 30 * time.Second

// SignedPayload is a payload together with the shares collected for its
// digest.
type SignedPayload struct {
	Digest  []byte
	Payload []byte
	Shares  []Share
}

func (sp *SignedPayload) addShare(share Share) {
	for _, s := range sp.Shares {
		if s.PubKeyHex == share.PubKeyHex {
			return
		}
	}
	sp.Shares = append(sp.Shares, share)
}

type pendingShares struct {
	shares []Share
	since  time.Time
}

type pendingPayload struct {
	payload *SignedPayload
	since   time.Time
}

// SignatureAccumulator collects signature shares and payloads keyed by
// digest, releasing a payload once a quorum of distinct shares has arrived.
// Shares may arrive before or after their payload. Entries that do not
// complete within the timeout are dropped.
//
// The accumulator is fed from the node's single event loop and is not safe
// for concurrent use.
type SignatureAccumulator struct {
	sigs    map[string]*pendingShares
	msgs    map[string]*pendingPayload
	timeout time.Duration
}

// NewSignatureAccumulator ...
func NewSignatureAccumulator(timeout time.Duration) *SignatureAccumulator {
	if timeout <= 0 {
		timeout = AccumulationTimeout
	}
	return &SignatureAccumulator{
		sigs:    make(map[string]*pendingShares),
		msgs:    make(map[string]*pendingPayload),
		timeout: timeout,
	}
}

// AddShare records a share for the given digest. It returns the completed
// payload when this share brings the count to the quorum, nil otherwise.
func (a *SignatureAccumulator) AddShare(quorum int, digest []byte, share Share) *SignedPayload {
	a.removeExpired()

	key := common.EncodeToString(digest)

	if pending, ok := a.msgs[key]; ok {
		pending.payload.addShare(share)
		return a.removeIfComplete(quorum, key)
	}

	pending, ok := a.sigs[key]
	if !ok {
		pending = &pendingShares{since: time.Now()}
		a.sigs[key] = pending
	}
	pending.shares = append(pending.shares, share)

	return nil
}

// AddPayload records a payload for the given digest, folding in any shares
// that arrived ahead of it. It returns the completed payload when a quorum of
// shares is already present, nil otherwise.
func (a *SignatureAccumulator) AddPayload(quorum int, digest, payload []byte, shares []Share) *SignedPayload {
	a.removeExpired()

	key := common.EncodeToString(digest)

	if pending, ok := a.msgs[key]; ok {
		for _, share := range shares {
			pending.payload.addShare(share)
		}
		return a.removeIfComplete(quorum, key)
	}

	sp := &SignedPayload{Digest: digest, Payload: payload}
	for _, share := range shares {
		sp.addShare(share)
	}
	if early, ok := a.sigs[key]; ok {
		delete(a.sigs, key)
		for _, share := range early.shares {
			sp.addShare(share)
		}
	}

	a.msgs[key] = &pendingPayload{payload: sp, since: time.Now()}

	return a.removeIfComplete(quorum, key)
}

func (a *SignatureAccumulator) removeExpired() {
	for key, pending := range a.sigs {
		if time.Since(pending.since) > a.timeout {
			delete(a.sigs, key)
		}
	}
	for key, pending := range a.msgs {
		if time.Since(pending.since) > a.timeout {
			delete(a.msgs, key)
		}
	}
}

func (a *SignatureAccumulator) removeIfComplete(quorum int, key string) *SignedPayload {
	pending, ok := a.msgs[key]
	if !ok || len(pending.payload.Shares) < quorum {
		return nil
	}

	delete(a.msgs, key)

	return pending.payload
}
