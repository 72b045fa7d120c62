package capture

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/willibrandon/txcapture/pkg/format"
)

// SaveKeypairs writes every signer to keypairs/keypair_<i>, numbered from 1
// in input order. The first failure aborts.
func (s *Session) SaveKeypairs(signers []solana.PrivateKey) ([]string, error) {
	paths := make([]string, 0, len(signers))
	for i, signer := range signers {
		data, err := format.EncodeKeypair(signer)
		if err != nil {
			return paths, fmt.Errorf("keypair %d: %w", i+1, err)
		}
		s.logger.Info("Keypair", "pubkey", signer.PublicKey())

		path := s.fs.Join(s.KeypairsDir, fmt.Sprintf("keypair_%d", i+1))
		s.logger.Info("Save keypair", "path", path)
		if err := s.writeFile(path, data, 0600); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
