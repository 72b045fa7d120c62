package format

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrInvalidKeypair = errors.New("invalid keypair")

var keypairCheck = []byte("txcapture keypair check")

// EncodeKeypair renders a private key in the solana-keygen file format:
// a JSON array holding the 64 secret key bytes.
func EncodeKeypair(key solana.PrivateKey) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	return ByteArray(key).compact(), nil
}

// DecodeKeypair parses a solana-keygen keypair file and checks that the
// embedded public key matches the secret half.
func DecodeKeypair(data []byte) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFileBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	sig, err := key.Sign(keypairCheck)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
	}
	if !key.PublicKey().Verify(keypairCheck, sig) {
		return nil, fmt.Errorf("%w: public key does not match secret key", ErrInvalidKeypair)
	}
	return key, nil
}
