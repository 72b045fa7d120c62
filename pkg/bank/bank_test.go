package bank

import (
	"context"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/txcapture/pkg/snapshot"
)

func TestEmptyBank(t *testing.T) {
	b := New()
	acc, err := b.GetAccount(context.Background(), SystemProgramID)
	require.NoError(t, err)
	assert.Nil(t, acc)
	assert.Equal(t, 0, b.Len())
}

func TestGenesisHoldsBuiltinsAndSysvars(t *testing.T) {
	ctx := context.Background()
	b := NewGenesis()

	for _, builtin := range builtins {
		acc, err := b.GetAccount(ctx, builtin.id)
		require.NoError(t, err)
		require.NotNil(t, acc, builtin.name)
		assert.True(t, acc.Executable)
		assert.Equal(t, NativeLoaderID, acc.Owner)
		assert.Equal(t, builtin.name, string(acc.Data))
	}

	clock, err := b.GetAccount(ctx, SysvarClockID)
	require.NoError(t, err)
	require.NotNil(t, clock)
	assert.Equal(t, SysvarOwnerID, clock.Owner)

	rentAcc, err := b.GetAccount(ctx, SysvarRentID)
	require.NoError(t, err)
	require.NotNil(t, rentAcc)

	var rent rentSysvar
	require.NoError(t, bin.NewBinDecoder(rentAcc.Data).Decode(&rent))
	assert.Equal(t, uint64(3480), rent.LamportsPerByteYear)
	assert.Equal(t, 2.0, rent.ExemptionThreshold)
	assert.Equal(t, uint8(50), rent.BurnPercent)
}

func TestGenesisInstancesAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := NewGenesis()
	b := NewGenesis()

	a.Airdrop(SystemProgramID, 5)

	accA, err := a.GetAccount(ctx, SystemProgramID)
	require.NoError(t, err)
	accB, err := b.GetAccount(ctx, SystemProgramID)
	require.NoError(t, err)
	assert.False(t, accA.Equal(accB))

	fresh := NewGenesis()
	accFresh, err := fresh.GetAccount(ctx, SystemProgramID)
	require.NoError(t, err)
	assert.True(t, accB.Equal(accFresh))
}

func TestGetAccountReturnsCopy(t *testing.T) {
	ctx := context.Background()
	key := solana.NewWallet().PublicKey()
	b := New()
	b.SetAccount(key, &snapshot.Account{Lamports: 1, Data: []byte{1}})

	acc, err := b.GetAccount(ctx, key)
	require.NoError(t, err)
	acc.Data[0] = 2
	acc.Lamports = 100

	again, err := b.GetAccount(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, again.Data)
	assert.Equal(t, uint64(1), again.Lamports)
}

func TestAirdropAndDelete(t *testing.T) {
	ctx := context.Background()
	key := solana.NewWallet().PublicKey()
	b := New()

	b.Airdrop(key, 10)
	b.Airdrop(key, 5)

	acc, err := b.GetAccount(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), acc.Lamports)
	assert.Equal(t, SystemProgramID, acc.Owner)

	b.DeleteAccount(key)
	acc, err = b.GetAccount(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestDeployProgram(t *testing.T) {
	ctx := context.Background()
	id := solana.NewWallet().PublicKey()
	b := NewGenesis()

	require.Error(t, b.DeployProgram(id, nil))
	require.NoError(t, b.DeployProgram(id, []byte("\x7fELF")))

	acc, err := b.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, acc.Executable)
	assert.Equal(t, BPFLoaderID, acc.Owner)

	baseline, err := Baseline(ctx)
	require.NoError(t, err)
	missing, err := baseline.GetAccount(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetAccountHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenesis().GetAccount(ctx, SystemProgramID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeysSorted(t *testing.T) {
	b := NewGenesis()
	keys := b.Keys()
	require.Len(t, keys, b.Len())
	for i := 1; i < len(keys); i++ {
		assert.Negative(t, compareKeys(keys[i-1], keys[i]))
	}
}

func TestReservedKeysCoverBuiltins(t *testing.T) {
	reserved := make(map[solana.PublicKey]bool)
	for _, k := range ReservedKeys() {
		reserved[k] = true
	}
	for _, builtin := range builtins {
		assert.True(t, reserved[builtin.id], builtin.name)
	}
	assert.True(t, reserved[SysvarRentID])
}

func compareKeys(a, b solana.PublicKey) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
