package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gagliardetto/solana-go"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/willibrandon/txcapture/pkg/bank"
	"github.com/willibrandon/txcapture/pkg/snapshot"
)

var (
	ErrInvalidPayer   = errors.New("first account of the transaction is not a writable signer")
	ErrAccountIndex   = errors.New("account index outside the transaction's account keys")
	ErrNilTransaction = errors.New("nil transaction")
)

// Options configures a Capturer
type Options struct {
	// FS receives the capture directories
	FS billy.Filesystem

	// BaseDir is created on demand and holds program_input_<N> directories
	BaseDir string

	// Baseline creates the pristine environment accounts are compared against
	Baseline snapshot.BaselineFunc

	// ReservedKeys are always reported read-only in the transaction file
	ReservedKeys []solana.PublicKey

	Logger log.Logger
}

// DefaultOptions writes to ./debug_input on the host filesystem and uses a
// genesis bank as baseline.
func DefaultOptions() Options {
	return Options{
		FS:       osfs.New("."),
		BaseDir:  DefaultBaseDir,
		Baseline: bank.Baseline,
		Logger:   log.Root(),
	}
}

// Report describes everything one capture wrote
type Report struct {
	Dir             string
	Keypairs        []string
	Debugee         *solana.PublicKey
	Accounts        []AccountRecord
	TransactionFile string
}

// Capturer persists transactions executed against a harness oracle
type Capturer struct {
	oracle snapshot.Oracle
	opts   Options
}

// New creates a capturer with default options
func New(oracle snapshot.Oracle) *Capturer {
	return NewWithOptions(oracle, DefaultOptions())
}

// NewWithOptions creates a capturer; zero-valued options fall back to defaults
func NewWithOptions(oracle snapshot.Oracle, opts Options) *Capturer {
	def := DefaultOptions()
	if opts.FS == nil {
		opts.FS = def.FS
	}
	if opts.BaseDir == "" {
		opts.BaseDir = def.BaseDir
	}
	if opts.Baseline == nil {
		opts.Baseline = def.Baseline
	}
	if opts.Logger == nil {
		opts.Logger = def.Logger
	}
	return &Capturer{oracle: oracle, opts: opts}
}

// Save captures tx, its signers and the accounts it touches into a freshly
// allocated directory. Any failure aborts the capture; files written
// before the failure are left in place.
func (c *Capturer) Save(ctx context.Context, tx *solana.Transaction, signers []solana.PrivateKey) (*Report, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}

	session, err := NewSession(c.opts.FS, c.opts.BaseDir, c.opts.Logger)
	if err != nil {
		return nil, err
	}
	session.SetReservedKeys(c.opts.ReservedKeys)
	report := &Report{Dir: session.Dir}

	if report.Keypairs, err = session.SaveKeypairs(signers); err != nil {
		return report, fmt.Errorf("save keypairs: %w", err)
	}

	accounts, err := session.SaveAccounts(ctx, c.oracle, c.opts.Baseline, tx)
	if err != nil {
		return report, fmt.Errorf("save accounts: %w", err)
	}
	report.Debugee = accounts.Debugee
	report.Accounts = accounts.Accounts

	if err := session.SaveTransaction(tx); err != nil {
		return report, fmt.Errorf("save transaction: %w", err)
	}
	report.TransactionFile = session.TransactionFile
	return report, nil
}

// Save captures tx with default options
func Save(ctx context.Context, oracle snapshot.Oracle, tx *solana.Transaction, signers []solana.PrivateKey) (*Report, error) {
	return New(oracle).Save(ctx, tx, signers)
}
