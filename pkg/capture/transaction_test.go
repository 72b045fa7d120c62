package capture

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/txcapture/pkg/bank"
	"github.com/willibrandon/txcapture/pkg/format"
)

func TestSaveTransactionScenario(t *testing.T) {
	sc := newScenario(t)
	s, fs := newTestSession(t)

	require.NoError(t, s.SaveTransaction(sc.tx))

	f, err := format.DecodeTransaction(readFile(t, fs, s.TransactionFile))
	require.NoError(t, err)

	want := &format.TransactionFile{
		Payer: sc.payer.PublicKey().String(),
		Instructions: []format.Instruction{
			{
				ProgramID: sc.program.String(),
				Accounts: []format.AccountMeta{
					{Pubkey: sc.payer.PublicKey().String(), IsSigner: true, IsWritable: true},
				},
				Data: format.ByteArray(sc.userData),
			},
		},
	}
	assert.Equal(t, want, f)
}

func TestSaveTransactionInvalidPayer(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(msg *solana.Message)
	}{
		{
			name:   "payer not a signer",
			mutate: func(msg *solana.Message) { msg.Header.NumRequiredSignatures = 0 },
		},
		{
			name:   "payer is a read-only signer",
			mutate: func(msg *solana.Message) { msg.Header.NumReadonlySignedAccounts = 1 },
		},
		{
			name: "payer invoked as a program",
			mutate: func(msg *solana.Message) {
				msg.Instructions = append(msg.Instructions, solana.CompiledInstruction{ProgramIDIndex: 0})
			},
		},
		{
			name: "no accounts",
			mutate: func(msg *solana.Message) {
				msg.AccountKeys = nil
				msg.Instructions = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newScenario(t)
			tt.mutate(&sc.tx.Message)
			s, fs := newTestSession(t)

			err := s.SaveTransaction(sc.tx)
			require.ErrorIs(t, err, ErrInvalidPayer)
			assert.False(t, exists(fs, s.TransactionFile))
		})
	}
}

func TestSaveTransactionReservedPayer(t *testing.T) {
	sc := newScenario(t)
	s, fs := newTestSession(t)
	s.SetReservedKeys([]solana.PublicKey{sc.payer.PublicKey()})

	require.ErrorIs(t, s.SaveTransaction(sc.tx), ErrInvalidPayer)
	assert.False(t, exists(fs, s.TransactionFile))
}

func TestSaveTransactionBadAccountIndex(t *testing.T) {
	sc := newScenario(t)
	sc.tx.Message.Instructions[0].Accounts = []uint16{0, 3}
	s, fs := newTestSession(t)

	require.ErrorIs(t, s.SaveTransaction(sc.tx), ErrAccountIndex)
	assert.False(t, exists(fs, s.TransactionFile))
}

func TestSaveTransactionNil(t *testing.T) {
	s, _ := newTestSession(t)
	assert.ErrorIs(t, s.SaveTransaction(nil), ErrNilTransaction)
}

func TestBuildTransactionFilePreservesOrder(t *testing.T) {
	payer := newKey(t).PublicKey()
	a := newKey(t).PublicKey()
	b := newKey(t).PublicKey()
	program := newKey(t).PublicKey()

	tx := &solana.Transaction{Message: solana.Message{
		AccountKeys: []solana.PublicKey{payer, a, b, program},
		Header:      solana.MessageHeader{NumRequiredSignatures: 1, NumReadonlyUnsignedAccounts: 1},
		Instructions: []solana.CompiledInstruction{
			{ProgramIDIndex: 3, Accounts: []uint16{2, 0, 1}, Data: []byte{1}},
			{ProgramIDIndex: 3, Accounts: []uint16{1, 1}},
		},
	}}

	f, err := BuildTransactionFile(tx, nil)
	require.NoError(t, err)
	require.Len(t, f.Instructions, 2)

	var order []string
	for _, m := range f.Instructions[0].Accounts {
		order = append(order, m.Pubkey)
	}
	assert.Equal(t, []string{b.String(), payer.String(), a.String()}, order)
	assert.Equal(t, format.ByteArray{1}, f.Instructions[0].Data)

	require.Len(t, f.Instructions[1].Accounts, 2)
	assert.Equal(t, a.String(), f.Instructions[1].Accounts[1].Pubkey)
	assert.Empty(t, f.Instructions[1].Data)
}

func TestWritabilityRules(t *testing.T) {
	signerW := newKey(t).PublicKey()
	signerRO := newKey(t).PublicKey()
	plainW := newKey(t).PublicKey()
	program := newKey(t).PublicKey()
	plainRO := newKey(t).PublicKey()

	msg := func(extra ...solana.PublicKey) *solana.Message {
		keys := []solana.PublicKey{signerW, signerRO, plainW, program}
		keys = append(keys, extra...)
		keys = append(keys, plainRO)
		return &solana.Message{
			AccountKeys: keys,
			Header: solana.MessageHeader{
				NumRequiredSignatures:       2,
				NumReadonlySignedAccounts:   1,
				NumReadonlyUnsignedAccounts: 1,
			},
			Instructions: []solana.CompiledInstruction{
				{ProgramIDIndex: 3, Accounts: []uint16{0, 1, 2}},
			},
		}
	}

	table := newAccountTable(msg(), nil)
	assert.True(t, table.isSigner(0))
	assert.True(t, table.isSigner(1))
	assert.False(t, table.isSigner(2))

	assert.True(t, table.isWritable(0), "writable signer")
	assert.False(t, table.isWritable(1), "read-only signer")
	assert.True(t, table.isWritable(2), "writable non-signer")
	assert.True(t, table.isWritableIndex(3), "header marks the program writable")
	assert.False(t, table.isWritable(3), "invoked program is demoted")
	assert.False(t, table.isWritable(4), "read-only non-signer")
	assert.False(t, table.isWritable(5), "out of range")
	assert.False(t, table.isWritable(-1), "negative index")

	withLoader := newAccountTable(msg(bank.BPFLoaderUpgradeableID), nil)
	assert.True(t, withLoader.isWritable(3), "upgradeable loader keeps invoked programs writable")

	reserved := map[solana.PublicKey]struct{}{plainW: {}}
	withReserved := newAccountTable(msg(), reserved)
	assert.False(t, withReserved.isWritable(2), "reserved accounts are read-only")
	assert.True(t, withReserved.isWritable(0))
}

func TestBuildTransactionFileReportsDemotedAccounts(t *testing.T) {
	payer := newKey(t).PublicKey()
	inner := newKey(t).PublicKey()
	outer := newKey(t).PublicKey()

	// inner is writable per the header but invoked by the second
	// instruction, so every instruction sees it read-only
	tx := &solana.Transaction{Message: solana.Message{
		AccountKeys:  []solana.PublicKey{payer, inner, outer},
		Header:       solana.MessageHeader{NumRequiredSignatures: 1, NumReadonlyUnsignedAccounts: 1},
		Instructions: []solana.CompiledInstruction{{ProgramIDIndex: 2, Accounts: []uint16{0, 1}}, {ProgramIDIndex: 1}},
	}}

	f, err := BuildTransactionFile(tx, nil)
	require.NoError(t, err)
	assert.Equal(t, format.AccountMeta{Pubkey: inner.String(), IsSigner: false, IsWritable: false}, f.Instructions[0].Accounts[1])

	f, err = BuildTransactionFile(tx, map[solana.PublicKey]struct{}{})
	require.NoError(t, err)
	assert.False(t, f.Instructions[0].Accounts[1].IsWritable)
}

func TestBuildTransactionFileFromCompiledMessage(t *testing.T) {
	payer := newKey(t).PublicKey()
	recipient := newKey(t).PublicKey()
	program := newKey(t).PublicKey()

	ix := solana.NewInstruction(program, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(recipient).WRITE(),
		solana.Meta(bank.SysvarRentID),
	}, []byte{0xaa, 0xbb})

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(payer))
	require.NoError(t, err)

	f, err := BuildTransactionFile(tx, nil)
	require.NoError(t, err)
	assert.Equal(t, payer.String(), f.Payer)
	require.Len(t, f.Instructions, 1)
	assert.Equal(t, program.String(), f.Instructions[0].ProgramID)
	assert.Equal(t, []format.AccountMeta{
		{Pubkey: payer.String(), IsSigner: true, IsWritable: true},
		{Pubkey: recipient.String(), IsSigner: false, IsWritable: true},
		{Pubkey: bank.SysvarRentID.String(), IsSigner: false, IsWritable: false},
	}, f.Instructions[0].Accounts)
	assert.Equal(t, format.ByteArray{0xaa, 0xbb}, f.Instructions[0].Data)
}
