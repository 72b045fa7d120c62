// Package diff compares two capture directories file by file.
package diff

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/willibrandon/txcapture/pkg/capture"
)

// Change classifies a file that differs between two captures
type Change int

const (
	Added Change = iota
	Removed
	Modified
)

func (c Change) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	}
	return "unknown"
}

// FileDiff is one differing file. Delta holds the ASCII rendering of a
// modification and is empty otherwise.
type FileDiff struct {
	Name   string
	Change Change
	Delta  string
}

// Options tunes the rendered delta
type Options struct {
	Coloring bool
}

// Compare pairs transaction.json and accounts/*.json of dirA and dirB by
// relative name. Keypairs are generated fresh on every run and are not
// compared.
func Compare(fs billy.Filesystem, dirA, dirB string) ([]FileDiff, error) {
	return CompareWithOptions(fs, dirA, dirB, Options{})
}

func CompareWithOptions(fs billy.Filesystem, dirA, dirB string, opts Options) ([]FileDiff, error) {
	left, err := collect(fs, dirA)
	if err != nil {
		return nil, err
	}
	right, err := collect(fs, dirB)
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{}, len(left)+len(right))
	for n := range left {
		names[n] = struct{}{}
	}
	for n := range right {
		names[n] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var diffs []FileDiff
	for _, name := range sorted {
		a, inA := left[name]
		b, inB := right[name]
		switch {
		case !inA:
			diffs = append(diffs, FileDiff{Name: name, Change: Added})
		case !inB:
			diffs = append(diffs, FileDiff{Name: name, Change: Removed})
		default:
			delta, modified, err := jsonDelta(a, b, opts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if modified {
				diffs = append(diffs, FileDiff{Name: name, Change: Modified, Delta: delta})
			}
		}
	}
	return diffs, nil
}

func jsonDelta(a, b []byte, opts Options) (string, bool, error) {
	d, err := gojsondiff.New().Compare(a, b)
	if err != nil {
		return "", false, err
	}
	if !d.Modified() {
		return "", false, nil
	}

	var leftObj interface{}
	if err := json.Unmarshal(a, &leftObj); err != nil {
		return "", false, err
	}
	f := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       opts.Coloring,
	})
	out, err := f.Format(d)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// collect reads the comparable files of one capture keyed by relative name
func collect(fs billy.Filesystem, dir string) (map[string][]byte, error) {
	files := make(map[string][]byte)

	tx, err := util.ReadFile(fs, fs.Join(dir, capture.TransactionFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s is not a capture directory", dir)
	}
	if err != nil {
		return nil, err
	}
	files[capture.TransactionFileName] = tx

	accountsDir := fs.Join(dir, capture.AccountsDirName)
	entries, err := fs.ReadDir(accountsDir)
	if errors.Is(err, os.ErrNotExist) {
		return files, nil
	}
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := util.ReadFile(fs, fs.Join(accountsDir, e.Name()))
		if err != nil {
			return nil, err
		}
		files[capture.AccountsDirName+"/"+e.Name()] = data
	}
	return files, nil
}
