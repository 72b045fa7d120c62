// Package rpcoracle answers account snapshot queries from a live JSON-RPC
// endpoint such as solana-test-validator.
package rpcoracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/willibrandon/txcapture/pkg/snapshot"
)

// Oracle implements snapshot.Oracle on top of getAccountInfo
type Oracle struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

// New connects to endpoint and reads at the given commitment level
func New(endpoint string, commitment rpc.CommitmentType) *Oracle {
	return NewWithClient(rpc.New(endpoint), commitment)
}

// NewWithClient wraps an existing RPC client
func NewWithClient(client *rpc.Client, commitment rpc.CommitmentType) *Oracle {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Oracle{client: client, commitment: commitment}
}

// GetAccount fetches the account stored at key. A missing account yields nil.
func (o *Oracle) GetAccount(ctx context.Context, key solana.PublicKey) (*snapshot.Account, error) {
	out, err := o.client.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: o.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo %s: %w", key, err)
	}
	if out == nil || out.Value == nil {
		return nil, nil
	}

	v := out.Value
	acc := &snapshot.Account{
		Lamports:   v.Lamports,
		Owner:      v.Owner,
		Executable: v.Executable,
	}
	if v.Data != nil {
		acc.Data = v.Data.GetBinary()
	}
	if v.RentEpoch != nil {
		acc.RentEpoch = v.RentEpoch.Uint64()
	}
	return acc, nil
}

// Commitment returns the commitment level used for reads
func (o *Oracle) Commitment() rpc.CommitmentType {
	return o.commitment
}

// ParseCommitment validates a commitment name
func ParseCommitment(s string) (rpc.CommitmentType, error) {
	switch c := rpc.CommitmentType(s); c {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
		return c, nil
	case "":
		return rpc.CommitmentConfirmed, nil
	default:
		return "", fmt.Errorf("unknown commitment %q", s)
	}
}
