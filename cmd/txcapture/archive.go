package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/willibrandon/txcapture/pkg/archive"
)

func newPackCmd(a *app) *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "pack <dir> [archive]",
		Short: "Pack a capture directory into a tar archive",
		Long: `Pack a capture directory into a tar archive. Without an archive name the
output is written to <dir name>.tar.zst (or .tar when uncompressed) in the
working directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.path(args[0])
			if err != nil {
				return err
			}
			var out string
			if len(args) == 2 {
				out = args[1]
			}
			c, err := a.compression(cmd, compression, out)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Base(dir) + c.Extension()
			}

			f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
			if err != nil {
				return err
			}
			n, err := archive.Pack(a.fs, dir, f, c)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("pack %s: %w", dir, err)
			}
			a.logger.Info("Packed capture", "dir", dir, "archive", out, "files", n, "compression", c)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&compression, "compression", "", "Archive compression (zstd or none); defaults from the file name")
	return cmd
}

func newUnpackCmd(a *app) *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "unpack <archive> <dir>",
		Short: "Restore a packed capture into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.path(args[1])
			if err != nil {
				return err
			}
			c, err := a.compression(cmd, compression, args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := archive.Unpack(f, a.fs, dir, c)
			if err != nil {
				return fmt.Errorf("unpack %s: %w", args[0], err)
			}
			a.logger.Info("Unpacked capture", "archive", args[0], "dir", dir, "files", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&compression, "compression", "", "Archive compression (zstd or none); defaults from the file name")
	return cmd
}

// compression resolves the flag, then the file name, then the configuration
func (a *app) compression(cmd *cobra.Command, flag, name string) (archive.CompressionType, error) {
	if cmd.Flags().Changed("compression") {
		return archive.ParseCompression(flag)
	}
	if archive.DetectCompression(name) == archive.ZstdCompression {
		return archive.ZstdCompression, nil
	}
	if strings.HasSuffix(name, ".tar") {
		return archive.NoCompression, nil
	}
	return archive.ParseCompression(a.cfg.Compression)
}
