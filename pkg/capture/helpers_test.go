package capture

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gagliardetto/solana-go"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/txcapture/pkg/bank"
	"github.com/willibrandon/txcapture/pkg/logging"
	"github.com/willibrandon/txcapture/pkg/snapshot"
)

func discardLogger() log.Logger {
	return logging.Discard()
}

func newTestSession(t *testing.T) (*Session, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	s, err := NewSession(fs, DefaultBaseDir, discardLogger())
	require.NoError(t, err)
	return s, fs
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

func readFile(t *testing.T, fs billy.Filesystem, name string) []byte {
	t.Helper()
	data, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return data
}

func exists(fs billy.Filesystem, name string) bool {
	_, err := fs.Stat(name)
	return err == nil
}

// scenario is the canonical capture setup: a payer, the system program and
// a freshly deployed user program invoked with the payer as its only account.
type scenario struct {
	payer    solana.PrivateKey
	program  solana.PublicKey
	primary  *bank.Bank
	tx       *solana.Transaction
	userData []byte
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	sc := &scenario{
		payer:    newKey(t),
		program:  newKey(t).PublicKey(),
		primary:  bank.NewGenesis(),
		userData: []byte{9, 8, 7},
	}
	sc.primary.Airdrop(sc.payer.PublicKey(), 1_000_000_000)
	require.NoError(t, sc.primary.DeployProgram(sc.program, []byte("\x7fELF program")))

	sc.tx = &solana.Transaction{
		Message: solana.Message{
			AccountKeys: []solana.PublicKey{sc.payer.PublicKey(), bank.SystemProgramID, sc.program},
			Header: solana.MessageHeader{
				NumRequiredSignatures:       1,
				NumReadonlySignedAccounts:   0,
				NumReadonlyUnsignedAccounts: 2,
			},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 2, Accounts: []uint16{0}, Data: sc.userData},
			},
		},
	}
	return sc
}

// countingBaseline hands out genesis banks and counts how many it created
func countingBaseline(calls *int) snapshot.BaselineFunc {
	return func(ctx context.Context) (snapshot.Oracle, error) {
		*calls++
		return bank.NewGenesis(), nil
	}
}
