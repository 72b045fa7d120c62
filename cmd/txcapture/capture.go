package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/willibrandon/txcapture/pkg/bank"
	"github.com/willibrandon/txcapture/pkg/capture"
	"github.com/willibrandon/txcapture/pkg/rpcoracle"
)

func newCaptureCmd(a *app) *cobra.Command {
	var (
		txPath         string
		keypairPaths   []string
		rpcEndpoint    string
		commitment     string
		baseDir        string
		demoteReserved bool
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a transaction and the accounts it touches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("rpc") {
				a.cfg.RPCEndpoint = rpcEndpoint
			}
			if flags.Changed("commitment") {
				a.cfg.Commitment = commitment
			}
			if flags.Changed("base-dir") {
				a.cfg.BaseDir = baseDir
			}
			if flags.Changed("demote-reserved") {
				a.cfg.DemoteReserved = demoteReserved
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			raw, err := os.ReadFile(txPath)
			if err != nil {
				return err
			}
			tx, err := decodeTransaction(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", txPath, err)
			}

			signers := make([]solana.PrivateKey, 0, len(keypairPaths))
			for _, p := range keypairPaths {
				key, err := solana.PrivateKeyFromSolanaKeygenFile(p)
				if err != nil {
					return fmt.Errorf("read keypair %s: %w", p, err)
				}
				signers = append(signers, key)
			}

			base, err := a.path(a.cfg.BaseDir)
			if err != nil {
				return err
			}
			commit, err := rpcoracle.ParseCommitment(a.cfg.Commitment)
			if err != nil {
				return err
			}
			opts := capture.Options{
				FS:       a.fs,
				BaseDir:  base,
				Baseline: bank.Baseline,
				Logger:   a.logger,
			}
			if a.cfg.DemoteReserved {
				opts.ReservedKeys = bank.ReservedKeys()
			}

			oracle := rpcoracle.New(a.cfg.RPCEndpoint, commit)
			report, err := capture.NewWithOptions(oracle, opts).Save(cmd.Context(), tx, signers)
			if report != nil && report.Dir != "" {
				printReport(cmd, report)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&txPath, "tx", "", "File holding the base64 wire encoding of the transaction")
	cmd.Flags().StringArrayVar(&keypairPaths, "keypair", nil, "solana-keygen keypair file of a signer (repeatable)")
	cmd.Flags().StringVar(&rpcEndpoint, "rpc", "", "JSON-RPC endpoint of the harness validator")
	cmd.Flags().StringVar(&commitment, "commitment", "", "Commitment level for account reads")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Directory receiving program_input_<N> directories")
	cmd.Flags().BoolVar(&demoteReserved, "demote-reserved", false, "Report builtin program and sysvar ids read-only")
	cmd.MarkFlagRequired("tx")
	return cmd
}

// decodeTransaction parses a base64 encoded wire transaction
func decodeTransaction(data []byte) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return tx, nil
}

func printReport(cmd *cobra.Command, r *capture.Report) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Fprintf(out, "Capture %s\n", r.Dir)
	fmt.Fprintf(out, "  keypairs: %d\n", len(r.Keypairs))
	if r.Debugee != nil {
		fmt.Fprintf(out, "  debugee:  %s\n", r.Debugee)
	} else {
		yellow.Fprintln(out, "  debugee:  not found")
	}
	for _, rec := range r.Accounts {
		if rec.Decision == capture.Saved {
			green.Fprintf(out, "  saved    %s -> %s\n", rec.Key, rec.File)
		} else {
			fmt.Fprintf(out, "  skipped  %s (%s)\n", rec.Key, rec.Decision)
		}
	}
	if r.TransactionFile != "" {
		fmt.Fprintf(out, "  transaction: %s\n", r.TransactionFile)
	}
}
