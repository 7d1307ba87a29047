// Package token models fungible value moved through the ledger.
//
// Amount is a plain non-negative quantity used for balances and fee prices.
// Funds is value in transit: it is received by deposits and fee payments and
// returned by withdrawals and refunds. Funds can only be partitioned (Split)
// or merged (Join); both conserve the total, so code holding Funds can move
// value but never create or destroy it.
package token

import (
	"math"
	"math/bits"

	dErrors "bursar/pkg/domain-errors"
)

// Amount is a quantity of the ledger's smallest unit.
type Amount uint64

// MaxAmount is the largest representable amount.
const MaxAmount = Amount(math.MaxUint64)

// Add returns a+b or CodeInvalidInput on overflow.
func Add(a, b Amount) (Amount, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "amount overflow")
	}
	return Amount(sum), nil
}

// Mul returns a*n or CodeInvalidInput on overflow.
func Mul(a Amount, n uint64) (Amount, error) {
	hi, lo := bits.Mul64(uint64(a), n)
	if hi != 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "amount overflow")
	}
	return Amount(lo), nil
}

// Funds is a quantity of value that is being moved.
type Funds struct {
	value Amount
}

// Mint wraps an externally received amount as Funds. Only transport
// boundaries (an incoming payment) and the ledger itself when releasing a
// debited balance should call it.
func Mint(a Amount) Funds {
	return Funds{value: a}
}

// Zero returns empty funds.
func Zero() Funds {
	return Funds{}
}

// Value reports the amount held.
func (f Funds) Value() Amount {
	return f.value
}

func (f Funds) IsZero() bool {
	return f.value == 0
}

// Split partitions f into (taken, rest) with taken.Value() == a and
// taken.Value()+rest.Value() == f.Value().
func (f Funds) Split(a Amount) (taken, rest Funds, err error) {
	if a > f.value {
		return Funds{}, f, dErrors.New(dErrors.CodeInsufficientBalance, "split exceeds available funds")
	}
	return Funds{value: a}, Funds{value: f.value - a}, nil
}

// Join merges two funds into one holding the sum.
func (f Funds) Join(other Funds) (Funds, error) {
	sum, err := Add(f.value, other.value)
	if err != nil {
		return f, err
	}
	return Funds{value: sum}, nil
}
