package capture

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// BPFLoaderUpgradeableID is the loader whose presence in a transaction keeps
// invoked program ids writable.
var BPFLoaderUpgradeableID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")

// accountTable answers signer and writability questions about a
// transaction's compiled account list.
type accountTable struct {
	msg               *solana.Message
	reserved          map[solana.PublicKey]struct{}
	invoked           map[int]bool
	upgradeableLoader bool
}

func newAccountTable(msg *solana.Message, reserved map[solana.PublicKey]struct{}) *accountTable {
	t := &accountTable{
		msg:      msg,
		reserved: reserved,
		invoked:  make(map[int]bool, len(msg.Instructions)),
	}
	for _, ix := range msg.Instructions {
		t.invoked[int(ix.ProgramIDIndex)] = true
	}
	for _, key := range msg.AccountKeys {
		if key.Equals(BPFLoaderUpgradeableID) {
			t.upgradeableLoader = true
			break
		}
	}
	return t
}

func (t *accountTable) len() int {
	return len(t.msg.AccountKeys)
}

// key resolves an index into the static account list
func (t *accountTable) key(idx int) (solana.PublicKey, error) {
	if idx < 0 || idx >= t.len() {
		return solana.PublicKey{}, fmt.Errorf("%w: index %d, %d account keys", ErrAccountIndex, idx, t.len())
	}
	return t.msg.AccountKeys[idx], nil
}

func (t *accountTable) isSigner(idx int) bool {
	return idx < int(t.msg.Header.NumRequiredSignatures)
}

// isWritableIndex applies only the header's read-only counts
func (t *accountTable) isWritableIndex(idx int) bool {
	h := t.msg.Header
	signed := int(h.NumRequiredSignatures)
	if idx < signed-int(h.NumReadonlySignedAccounts) {
		return true
	}
	return idx >= signed && idx < t.len()-int(h.NumReadonlyUnsignedAccounts)
}

// isWritable reports whether the account at idx may be written: the header
// must allow it, the key must not be reserved, and a key invoked as a
// program is demoted to read-only unless the upgradeable loader is present.
func (t *accountTable) isWritable(idx int) bool {
	if idx < 0 || idx >= t.len() || !t.isWritableIndex(idx) {
		return false
	}
	if _, ok := t.reserved[t.msg.AccountKeys[idx]]; ok {
		return false
	}
	if t.invoked[idx] && !t.upgradeableLoader {
		return false
	}
	return true
}

// payer returns the fee payer: the first account, which must be a writable signer
func (t *accountTable) payer() (solana.PublicKey, error) {
	if t.len() == 0 || !t.isSigner(0) || !t.isWritable(0) {
		return solana.PublicKey{}, ErrInvalidPayer
	}
	return t.msg.AccountKeys[0], nil
}
