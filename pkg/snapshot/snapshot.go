package snapshot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Account is the point-in-time state of one on-ledger address
type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      solana.PublicKey
	Executable bool
	RentEpoch  uint64
}

// Space returns the payload length in bytes
func (a *Account) Space() uint64 {
	return uint64(len(a.Data))
}

// Equal reports whether two snapshots are field-for-field identical
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Lamports == other.Lamports &&
		a.Owner.Equals(other.Owner) &&
		a.Executable == other.Executable &&
		a.RentEpoch == other.RentEpoch &&
		bytes.Equal(a.Data, other.Data)
}

// Clone returns a deep copy of the snapshot
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// String returns a short human-readable representation of the snapshot
func (a *Account) String() string {
	return fmt.Sprintf("Account{Lamports: %d, Owner: %s, Executable: %t, RentEpoch: %d, Space: %d}",
		a.Lamports, a.Owner, a.Executable, a.RentEpoch, a.Space())
}

// Oracle answers "what are this account's current contents" queries.
// A nil account with a nil error means the address holds no account.
type Oracle interface {
	GetAccount(ctx context.Context, key solana.PublicKey) (*Account, error)
}

// OracleFunc adapts a plain function to the Oracle interface
type OracleFunc func(ctx context.Context, key solana.PublicKey) (*Account, error)

// GetAccount calls f(ctx, key)
func (f OracleFunc) GetAccount(ctx context.Context, key solana.PublicKey) (*Account, error) {
	return f(ctx, key)
}

// BaselineFunc creates a fresh, pristine oracle with no user programs loaded.
// Every call must return an independent instance.
type BaselineFunc func(ctx context.Context) (Oracle, error)
