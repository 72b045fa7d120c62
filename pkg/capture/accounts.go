package capture

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/willibrandon/txcapture/pkg/format"
	"github.com/willibrandon/txcapture/pkg/snapshot"
)

// Decision records what the account archiver did with one address
type Decision int

const (
	Saved Decision = iota
	SkippedDebugee
	SkippedEmpty
	SkippedBaseline
)

// String returns the string representation of the Decision
func (d Decision) String() string {
	switch d {
	case Saved:
		return "saved"
	case SkippedDebugee:
		return "debugee program"
	case SkippedEmpty:
		return "empty account"
	case SkippedBaseline:
		return "same as baseline"
	default:
		return "unknown"
	}
}

// AccountRecord is the outcome for one entry of the transaction's account table
type AccountRecord struct {
	Key      solana.PublicKey
	Decision Decision
	File     string // set only when Decision is Saved
}

// AccountsReport summarises one run of the account archiver
type AccountsReport struct {
	Debugee  *solana.PublicKey
	Accounts []AccountRecord
}

// Saved returns the records that produced an account file, in file order
func (r *AccountsReport) Saved() []AccountRecord {
	var out []AccountRecord
	for _, rec := range r.Accounts {
		if rec.Decision == Saved {
			out = append(out, rec)
		}
	}
	return out
}

// FindDebugee returns the first program id invoked by msg that the pristine
// baseline does not know about. Such a program must have been deployed for
// the test. ok is false when every invoked program exists in the baseline.
func FindDebugee(ctx context.Context, baseline snapshot.Oracle, msg *solana.Message) (id solana.PublicKey, ok bool, err error) {
	table := newAccountTable(msg, nil)
	for i, ix := range msg.Instructions {
		programID, err := table.key(int(ix.ProgramIDIndex))
		if err != nil {
			return solana.PublicKey{}, false, fmt.Errorf("instruction %d program id: %w", i, err)
		}
		acc, err := baseline.GetAccount(ctx, programID)
		if err != nil {
			return solana.PublicKey{}, false, fmt.Errorf("baseline lookup %s: %w", programID, err)
		}
		if acc == nil {
			return programID, true, nil
		}
	}
	return solana.PublicKey{}, false, nil
}

// SaveAccounts writes every interesting account of tx to
// accounts/account_<n>.json. A fresh baseline is created for the run.
// An account is skipped when it belongs to the debugee program, when the
// oracle has no account at its address, or when the baseline holds an
// identical account. Saved accounts are numbered from 1 without gaps in
// account table order.
func (s *Session) SaveAccounts(ctx context.Context, oracle snapshot.Oracle, newBaseline snapshot.BaselineFunc, tx *solana.Transaction) (*AccountsReport, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}
	baseline, err := newBaseline(ctx)
	if err != nil {
		return nil, fmt.Errorf("create baseline: %w", err)
	}

	report := &AccountsReport{
		Accounts: make([]AccountRecord, 0, len(tx.Message.AccountKeys)),
	}

	debugee, found, err := FindDebugee(ctx, baseline, &tx.Message)
	if err != nil {
		return nil, err
	}
	if found {
		s.logger.Info("Debugee program", "program_id", debugee)
		report.Debugee = &debugee
	} else {
		// the transaction may legitimately not exercise a user program
		s.logger.Info("Failed to find debugee program id, still saving the transaction")
	}

	next := 1
	for _, key := range tx.Message.AccountKeys {
		s.logger.Info("Account", "pubkey", key)

		if found && key.Equals(debugee) {
			report.skip(s, key, SkippedDebugee)
			continue
		}

		acc, err := oracle.GetAccount(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch account %s: %w", key, err)
		}
		if acc == nil {
			report.skip(s, key, SkippedEmpty)
			continue
		}

		pristine, err := baseline.GetAccount(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("baseline lookup %s: %w", key, err)
		}
		if pristine != nil && pristine.Equal(acc) {
			report.skip(s, key, SkippedBaseline)
			continue
		}

		data, err := format.EncodeAccount(key, acc)
		if err != nil {
			return nil, fmt.Errorf("encode account %s: %w", key, err)
		}
		path := s.fs.Join(s.AccountsDir, fmt.Sprintf("account_%d.json", next))
		s.logger.Info("Save account", "path", path)
		if err := s.writeFile(path, data, 0644); err != nil {
			return nil, err
		}
		report.Accounts = append(report.Accounts, AccountRecord{Key: key, Decision: Saved, File: path})
		next++
	}
	return report, nil
}

func (r *AccountsReport) skip(s *Session, key solana.PublicKey, d Decision) {
	s.logger.Info("Skip account", "pubkey", key, "reason", d.String())
	r.Accounts = append(r.Accounts, AccountRecord{Key: key, Decision: d})
}
