// Package idhash derives deterministic identifiers from record contents.
package idhash

import (
	"crypto/sha256"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"

	"bet-ledger/internal/domain"
)

// ComputeRecoveryFingerprint computes a deterministic fingerprint of a recovery plan.
// Formula: SHA256(loss|odds|bet;index|bet|profit|remaining|invested|net;...)
// Floats are written in exact hexadecimal form so equal plans hash equally bit for bit.
// Returns the base58-encoded hash.
func ComputeRecoveryFingerprint(inputs domain.RecoveryInputs, steps []domain.RecoveryStep) string {
	var b strings.Builder
	b.Grow(32 + len(steps)*128)

	writeFloats(&b, inputs.LossAmount, inputs.Odds, inputs.BetAmount)
	for _, s := range steps {
		b.WriteByte(';')
		b.WriteString(strconv.Itoa(s.SequenceIndex))
		b.WriteByte('|')
		writeFloats(&b, s.BetAmount, s.ProfitPerBet, s.RemainingLoss, s.CumulativeInvestment, s.NetPosition)
	}

	hash := sha256.Sum256([]byte(b.String()))
	return base58.Encode(hash[:])
}

func writeFloats(b *strings.Builder, vs ...float64) {
	for i, v := range vs {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatFloat(v, 'x', -1, 64))
	}
}
