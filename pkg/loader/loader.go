// Package loader reads a capture directory back into typed values.
package loader

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/willibrandon/txcapture/pkg/bank"
	"github.com/willibrandon/txcapture/pkg/capture"
	"github.com/willibrandon/txcapture/pkg/format"
	"github.com/willibrandon/txcapture/pkg/snapshot"
)

var ErrNotCapture = errors.New("not a capture directory")

// Account is one captured account file
type Account struct {
	File    string
	Key     solana.PublicKey
	Account *snapshot.Account
}

// Input is the full content of a capture directory
type Input struct {
	Dir         string
	Keypairs    []solana.PrivateKey
	Accounts    []Account
	Transaction *format.TransactionFile
}

// Load reads keypairs, accounts and the transaction of the capture in dir.
// Numbered files are returned in numeric order.
func Load(fs billy.Filesystem, dir string) (*Input, error) {
	txPath := fs.Join(dir, capture.TransactionFileName)
	raw, err := util.ReadFile(fs, txPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotCapture, dir, capture.TransactionFileName)
	}
	if err != nil {
		return nil, err
	}
	tx, err := format.DecodeTransaction(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", txPath, err)
	}
	in := &Input{Dir: dir, Transaction: tx}

	keypairFiles, err := numbered(fs, fs.Join(dir, capture.KeypairsDirName), "keypair_", "")
	if err != nil {
		return nil, err
	}
	for _, name := range keypairFiles {
		data, err := util.ReadFile(fs, name)
		if err != nil {
			return nil, err
		}
		key, err := format.DecodeKeypair(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		in.Keypairs = append(in.Keypairs, key)
	}

	accountFiles, err := numbered(fs, fs.Join(dir, capture.AccountsDirName), "account_", ".json")
	if err != nil {
		return nil, err
	}
	for _, name := range accountFiles {
		data, err := util.ReadFile(fs, name)
		if err != nil {
			return nil, err
		}
		key, acc, err := format.DecodeAccount(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		in.Accounts = append(in.Accounts, Account{File: name, Key: key, Account: acc})
	}
	return in, nil
}

// Seed stores every captured account in b
func (in *Input) Seed(b *bank.Bank) {
	for _, a := range in.Accounts {
		b.SetAccount(a.Key, a.Account)
	}
}

// Signer returns the captured keypair whose public key is key
func (in *Input) Signer(key solana.PublicKey) (solana.PrivateKey, bool) {
	for _, k := range in.Keypairs {
		if k.PublicKey().Equals(key) {
			return k, true
		}
	}
	return nil, false
}

// numbered lists <prefix><n><suffix> files in dir sorted by n. A missing
// directory yields no files.
func numbered(fs billy.Filesystem, dir, prefix, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type file struct {
		n    int
		name string
	}
	var files []file
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
		if err != nil || n < 1 {
			continue
		}
		files = append(files, file{n: n, name: fs.Join(dir, name)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.name
	}
	return out, nil
}
