package loader

import (
	"fmt"
	"path"

	"github.com/gagliardetto/solana-go"
	"github.com/xlab/treeprint"
)

// Tree renders the capture as a tree: keypairs, accounts and the
// instructions with their account metas.
func (in *Input) Tree() treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(in.Dir)

	keypairs := tree.AddBranch(fmt.Sprintf("keypairs (%d)", len(in.Keypairs)))
	for i, k := range in.Keypairs {
		keypairs.AddNode(fmt.Sprintf("keypair_%d %s", i+1, k.PublicKey()))
	}

	accounts := tree.AddBranch(fmt.Sprintf("accounts (%d)", len(in.Accounts)))
	for _, a := range in.Accounts {
		accounts.AddNode(fmt.Sprintf("%s %s lamports=%d owner=%s space=%d executable=%t",
			path.Base(a.File), a.Key, a.Account.Lamports, a.Account.Owner, a.Account.Space(), a.Account.Executable))
	}

	tx := tree.AddBranch("transaction payer=" + in.Transaction.Payer)
	for i, ix := range in.Transaction.Instructions {
		branch := tx.AddBranch(fmt.Sprintf("#%d %s data=%d bytes", i, ix.ProgramID, len(ix.Data)))
		for _, m := range ix.Accounts {
			node := fmt.Sprintf("%s %s", m.Pubkey, flags(m.IsSigner, m.IsWritable))
			if m.IsSigner && !in.hasKeypair(m.Pubkey) {
				node += " (no keypair)"
			}
			branch.AddNode(node)
		}
	}
	return tree
}

func flags(signer, writable bool) string {
	s := "r"
	if writable {
		s = "w"
	}
	if signer {
		s += "s"
	}
	return "[" + s + "]"
}

func (in *Input) hasKeypair(pubkey string) bool {
	key, err := solana.PublicKeyFromBase58(pubkey)
	if err != nil {
		return false
	}
	_, ok := in.Signer(key)
	return ok
}
