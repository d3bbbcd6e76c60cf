package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalance_DebitCredit(t *testing.T) {
	b := NewBalance(10000)
	b.Debit(2500)
	assert.Equal(t, int64(7500), b.Cents())
	b.Credit(1000)
	assert.Equal(t, int64(8500), b.Cents())
}

func TestBalance_NeverNegative(t *testing.T) {
	b := NewBalance(100)
	b.Debit(500)
	assert.Equal(t, int64(0), b.Cents())

	b.Credit(50)
	b.Debit(49)
	b.Debit(49)
	assert.Equal(t, int64(0), b.Cents())

	assert.Equal(t, int64(0), NewBalance(-300).Cents())
}
