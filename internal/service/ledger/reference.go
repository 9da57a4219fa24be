package ledger

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	referencePrefix   = "TXN"
	referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referenceSuffix   = 6
)

// newReferenceNumber builds a human-facing transaction reference from the
// current time in milliseconds plus a short random suffix. Not guaranteed
// unique by construction: the transactions table unique index is the
// authority and collisions are retried by the caller
func newReferenceNumber() string {
	b := make([]byte, referenceSuffix)
	_, _ = rand.Read(b) // rand.Read never fails per its documentation

	for i := range b {
		b[i] = referenceAlphabet[int(b[i])%len(referenceAlphabet)]
	}

	return fmt.Sprintf("%s%d%s", referencePrefix, time.Now().UnixMilli(), b)
}
