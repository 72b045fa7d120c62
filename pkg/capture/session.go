package capture

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gagliardetto/solana-go"
	"github.com/go-git/go-billy/v5"
)

const (
	// DefaultBaseDir is where capture directories are allocated
	DefaultBaseDir = "debug_input"

	// DirPrefix prefixes every numbered capture directory
	DirPrefix = "program_input_"

	KeypairsDirName     = "keypairs"
	AccountsDirName     = "accounts"
	TransactionFileName = "transaction.json"
)

// Session holds the resolved output paths of one capture. It is
// allocated once per invocation and never reuses an existing directory.
type Session struct {
	Dir             string
	KeypairsDir     string
	AccountsDir     string
	TransactionFile string

	fs       billy.Filesystem
	logger   log.Logger
	reserved map[solana.PublicKey]struct{}
}

// NewSession ensures baseDir exists and allocates the lowest-numbered
// program_input_<N> directory that does not exist yet, along with its
// keypairs and accounts subdirectories.
func NewSession(fs billy.Filesystem, baseDir string, logger log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Root()
	}
	if err := fs.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create base directory %s: %w", baseDir, err)
	}

	var dir string
	for n := 1; ; n++ {
		dir = fs.Join(baseDir, DirPrefix+strconv.Itoa(n))
		_, err := fs.Stat(dir)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}
	}

	logger.Info("Create output directory", "dir", dir)
	if err := claimDir(fs, dir); err != nil {
		return nil, err
	}

	s := &Session{
		Dir:             dir,
		KeypairsDir:     fs.Join(dir, KeypairsDirName),
		AccountsDir:     fs.Join(dir, AccountsDirName),
		TransactionFile: fs.Join(dir, TransactionFileName),
		fs:              fs,
		logger:          logger,
	}
	for _, d := range []string{s.KeypairsDir, s.AccountsDir} {
		if err := fs.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return s, nil
}

// SetReservedKeys marks addresses that instructions can never write to.
// They are reported as read-only in the transaction file.
func (s *Session) SetReservedKeys(keys []solana.PublicKey) {
	s.reserved = make(map[solana.PublicKey]struct{}, len(keys))
	for _, k := range keys {
		s.reserved[k] = struct{}{}
	}
}

// claimDir creates dir and fails with os.ErrExist when another writer has
// already put something into it.
func claimDir(fs billy.Filesystem, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s is already in use", os.ErrExist, dir)
	}
	return nil
}

// writeFile creates name exclusively, so a file written by a concurrent
// session into the same directory makes this one fail.
func (s *Session) writeFile(name string, data []byte, perm os.FileMode) error {
	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}
