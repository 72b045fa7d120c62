package capture

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/willibrandon/txcapture/pkg/format"
)

// BuildTransactionFile resolves every instruction of tx into program id,
// account metas and raw data. Keys in reserved are reported read-only.
func BuildTransactionFile(tx *solana.Transaction, reserved map[solana.PublicKey]struct{}) (*format.TransactionFile, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	table := newAccountTable(&tx.Message, reserved)

	payer, err := table.payer()
	if err != nil {
		return nil, err
	}

	out := &format.TransactionFile{
		Payer:        payer.String(),
		Instructions: make([]format.Instruction, 0, len(tx.Message.Instructions)),
	}
	for i, ix := range tx.Message.Instructions {
		programID, err := table.key(int(ix.ProgramIDIndex))
		if err != nil {
			return nil, fmt.Errorf("instruction %d program id: %w", i, err)
		}
		metas := make([]format.AccountMeta, 0, len(ix.Accounts))
		for _, idx := range ix.Accounts {
			key, err := table.key(int(idx))
			if err != nil {
				return nil, fmt.Errorf("instruction %d account: %w", i, err)
			}
			metas = append(metas, format.AccountMeta{
				Pubkey:     key.String(),
				IsSigner:   table.isSigner(int(idx)),
				IsWritable: table.isWritable(int(idx)),
			})
		}
		out.Instructions = append(out.Instructions, format.Instruction{
			ProgramID: programID.String(),
			Accounts:  metas,
			Data:      append(format.ByteArray{}, ix.Data...),
		})
	}
	return out, nil
}

// SaveTransaction writes transaction.json. Nothing is written when the
// transaction has no valid payer or references an unknown account.
func (s *Session) SaveTransaction(tx *solana.Transaction) error {
	f, err := BuildTransactionFile(tx, s.reserved)
	if err != nil {
		return err
	}
	s.logger.Info("Payer", "pubkey", f.Payer)

	data, err := format.EncodeTransaction(f)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	s.logger.Info("Save transaction", "path", s.TransactionFile)
	return s.writeFile(s.TransactionFile, data, 0644)
}
