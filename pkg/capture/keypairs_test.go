package capture

import (
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/txcapture/pkg/format"
)

func TestSaveKeypairsPreservesOrder(t *testing.T) {
	s, fs := newTestSession(t)
	signers := []solana.PrivateKey{newKey(t), newKey(t), newKey(t)}

	paths, err := s.SaveKeypairs(signers)
	require.NoError(t, err)
	require.Len(t, paths, len(signers))

	for i, signer := range signers {
		want := fs.Join(s.KeypairsDir, fmt.Sprintf("keypair_%d", i+1))
		assert.Equal(t, want, paths[i])

		decoded, err := format.DecodeKeypair(readFile(t, fs, want))
		require.NoError(t, err)
		assert.Equal(t, signer.PublicKey(), decoded.PublicKey())
	}

	entries, err := fs.ReadDir(s.KeypairsDir)
	require.NoError(t, err)
	assert.Len(t, entries, len(signers))
}

func TestSaveKeypairsEmpty(t *testing.T) {
	s, fs := newTestSession(t)
	paths, err := s.SaveKeypairs(nil)
	require.NoError(t, err)
	assert.Empty(t, paths)

	entries, err := fs.ReadDir(s.KeypairsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveKeypairsAbortsOnFailure(t *testing.T) {
	s, fs := newTestSession(t)
	signers := []solana.PrivateKey{newKey(t), {1, 2, 3}, newKey(t)}

	paths, err := s.SaveKeypairs(signers)
	require.ErrorIs(t, err, format.ErrInvalidKeypair)
	assert.Len(t, paths, 1)
	assert.False(t, exists(fs, fs.Join(s.KeypairsDir, "keypair_3")))
}

func TestSaveKeypairsTwiceFails(t *testing.T) {
	s, _ := newTestSession(t)
	signers := []solana.PrivateKey{newKey(t)}

	_, err := s.SaveKeypairs(signers)
	require.NoError(t, err)
	_, err = s.SaveKeypairs(signers)
	assert.Error(t, err)
}
