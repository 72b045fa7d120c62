// Package archive packs a capture directory into a single tar stream and
// restores it elsewhere.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
)

var (
	ErrUnsafePath = errors.New("archive entry escapes the target directory")
	ErrExists     = errors.New("archive entry already exists")
)

// Pack writes every file under dir to w. Entry names are relative to dir
// and use forward slashes. It returns the number of files written.
func Pack(fs billy.Filesystem, dir string, w io.Writer, compressionType CompressionType) (int, error) {
	cw, closeCompressor, err := newCompressedWriter(w, compressionType)
	if err != nil {
		return 0, err
	}
	tw := tar.NewWriter(cw)

	n, err := packDir(fs, tw, dir, "")
	if err != nil {
		return n, err
	}
	if err := tw.Close(); err != nil {
		return n, err
	}
	return n, closeCompressor()
}

func packDir(fs billy.Filesystem, tw *tar.Writer, root, rel string) (int, error) {
	entries, err := fs.ReadDir(fs.Join(root, rel))
	if err != nil {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	count := 0
	for _, e := range entries {
		name := path.Join(rel, e.Name())
		if e.IsDir() {
			hdr := &tar.Header{Typeflag: tar.TypeDir, Name: name + "/", Mode: int64(e.Mode().Perm()), ModTime: e.ModTime()}
			if err := tw.WriteHeader(hdr); err != nil {
				return count, err
			}
			n, err := packDir(fs, tw, root, name)
			count += n
			if err != nil {
				return count, err
			}
			continue
		}
		if !e.Mode().IsRegular() {
			continue
		}

		hdr := &tar.Header{Typeflag: tar.TypeReg, Name: name, Mode: int64(e.Mode().Perm()), Size: e.Size(), ModTime: e.ModTime()}
		if err := tw.WriteHeader(hdr); err != nil {
			return count, err
		}
		f, err := fs.Open(fs.Join(root, name))
		if err != nil {
			return count, err
		}
		_, err = io.Copy(tw, f)
		f.Close()
		if err != nil {
			return count, fmt.Errorf("pack %s: %w", name, err)
		}
		count++
	}
	return count, nil
}

// Unpack restores an archive produced by Pack into dir. Existing files are
// never overwritten. It returns the number of files restored.
func Unpack(r io.Reader, fs billy.Filesystem, dir string, compressionType CompressionType) (int, error) {
	cr, closeDecompressor, err := newCompressedReader(r, compressionType)
	if err != nil {
		return 0, err
	}
	defer closeDecompressor()

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	tr := tar.NewReader(cr)
	count := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		name, err := safeName(hdr.Name)
		if err != nil {
			return count, err
		}
		target := fs.Join(dir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, 0755); err != nil {
				return count, err
			}
		case tar.TypeReg:
			if err := fs.MkdirAll(path.Dir(target), 0755); err != nil {
				return count, err
			}
			if err := writeEntry(fs, target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return count, err
			}
			count++
		default:
			return count, fmt.Errorf("unsupported archive entry %s (type %c)", hdr.Name, hdr.Typeflag)
		}
	}
}

func writeEntry(fs billy.Filesystem, target string, r io.Reader, perm os.FileMode) error {
	if perm == 0 {
		perm = 0644
	}
	f, err := fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrExists, target)
	}
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func safeName(name string) (string, error) {
	clean := path.Clean(strings.TrimSuffix(name, "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || clean == "." {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return clean, nil
}
