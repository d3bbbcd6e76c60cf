package engine

import (
	log "github.com/sirupsen/logrus"
)

// Balance is a single non-negative money value in cents. It is only ever
// mutated through Debit and Credit, both of which clamp at zero: a debit
// that would go negative is a bug upstream, so it is logged and clamped
// rather than allowed to corrupt the balance or interrupt play.
type Balance struct {
	cents int64
}

// NewBalance returns a balance holding the given amount, clamped at zero.
func NewBalance(cents int64) *Balance {
	if cents < 0 {
		cents = 0
	}
	return &Balance{cents: cents}
}

// Cents returns the current value.
func (b *Balance) Cents() int64 { return b.cents }

// Debit removes amount from the balance. Callers are expected to have
// checked sufficiency already.
func (b *Balance) Debit(amount int64) {
	b.apply(-amount)
}

// Credit adds amount to the balance.
func (b *Balance) Credit(amount int64) {
	b.apply(amount)
}

func (b *Balance) apply(delta int64) {
	next := b.cents + delta
	if next < 0 {
		log.WithFields(log.Fields{
			"balance": b.cents,
			"delta":   delta,
		}).Error("balance would go negative, clamping to zero")
		next = 0
	}
	b.cents = next
}
