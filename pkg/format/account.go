package format

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/willibrandon/txcapture/pkg/snapshot"
)

// EncodingBase64 is the only payload encoding written to account files
const EncodingBase64 = "base64"

var (
	ErrUnsupportedEncoding = errors.New("unsupported account data encoding")
	ErrSpaceMismatch       = errors.New("account space does not match data length")
)

// AccountFile is the on-disk layout of accounts/account_<n>.json
type AccountFile struct {
	Pubkey  string    `json:"pubkey"`
	Account UIAccount `json:"account"`
}

// UIAccount mirrors the RPC "encoded account" shape with base64 data
type UIAccount struct {
	Lamports   uint64    `json:"lamports"`
	Data       [2]string `json:"data"` // [payload, encoding]
	Owner      string    `json:"owner"`
	Executable bool      `json:"executable"`
	RentEpoch  uint64    `json:"rentEpoch"`
	Space      uint64    `json:"space"`
}

// NewAccountFile builds the file representation of acc stored at key
func NewAccountFile(key solana.PublicKey, acc *snapshot.Account) *AccountFile {
	return &AccountFile{
		Pubkey: key.String(),
		Account: UIAccount{
			Lamports:   acc.Lamports,
			Data:       [2]string{base64.StdEncoding.EncodeToString(acc.Data), EncodingBase64},
			Owner:      acc.Owner.String(),
			Executable: acc.Executable,
			RentEpoch:  acc.RentEpoch,
			Space:      acc.Space(),
		},
	}
}

// Snapshot converts the file back into its address and account snapshot
func (f *AccountFile) Snapshot() (solana.PublicKey, *snapshot.Account, error) {
	key, err := solana.PublicKeyFromBase58(f.Pubkey)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("pubkey %q: %w", f.Pubkey, err)
	}
	owner, err := solana.PublicKeyFromBase58(f.Account.Owner)
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("owner %q: %w", f.Account.Owner, err)
	}
	if f.Account.Data[1] != EncodingBase64 {
		return solana.PublicKey{}, nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, f.Account.Data[1])
	}
	data, err := base64.StdEncoding.DecodeString(f.Account.Data[0])
	if err != nil {
		return solana.PublicKey{}, nil, fmt.Errorf("account %s data: %w", f.Pubkey, err)
	}
	if uint64(len(data)) != f.Account.Space {
		return solana.PublicKey{}, nil, fmt.Errorf("%w: space %d, data %d bytes", ErrSpaceMismatch, f.Account.Space, len(data))
	}
	return key, &snapshot.Account{
		Lamports:   f.Account.Lamports,
		Data:       data,
		Owner:      owner,
		Executable: f.Account.Executable,
		RentEpoch:  f.Account.RentEpoch,
	}, nil
}

// EncodeAccount renders an account file as indented JSON
func EncodeAccount(key solana.PublicKey, acc *snapshot.Account) ([]byte, error) {
	return marshal(NewAccountFile(key, acc))
}

// DecodeAccount parses and validates an account file
func DecodeAccount(data []byte) (solana.PublicKey, *snapshot.Account, error) {
	var f AccountFile
	if err := json.Unmarshal(data, &f); err != nil {
		return solana.PublicKey{}, nil, err
	}
	return f.Snapshot()
}

func marshal(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
