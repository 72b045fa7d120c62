package bank

import "github.com/gagliardetto/solana-go"

var (
	NativeLoaderID          = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")
	SystemProgramID         = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	VoteProgramID           = solana.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")
	StakeProgramID          = solana.MustPublicKeyFromBase58("Stake11111111111111111111111111111111111111")
	ConfigProgramID         = solana.MustPublicKeyFromBase58("Config1111111111111111111111111111111111111")
	ComputeBudgetProgramID  = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
	AddressLookupTableID    = solana.MustPublicKeyFromBase58("AddressLookupTab1e1111111111111111111111111")
	BPFLoaderDeprecatedID   = solana.MustPublicKeyFromBase58("BPFLoader1111111111111111111111111111111111")
	BPFLoaderID             = solana.MustPublicKeyFromBase58("BPFLoader2111111111111111111111111111111111")
	BPFLoaderUpgradeableID  = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
	Ed25519ProgramID        = solana.MustPublicKeyFromBase58("Ed25519SigVerify111111111111111111111111111")
	Secp256k1ProgramID      = solana.MustPublicKeyFromBase58("KeccakSecp256k11111111111111111111111111111")
	FeatureProgramID        = solana.MustPublicKeyFromBase58("Feature111111111111111111111111111111111111")
	SysvarOwnerID           = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")
	SysvarClockID           = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
	SysvarRentID            = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	SysvarEpochScheduleID   = solana.MustPublicKeyFromBase58("SysvarEpochSchedu1e111111111111111111111111")
	SysvarInstructionsID    = solana.MustPublicKeyFromBase58("Sysvar1nstructions1111111111111111111111111")
	SysvarSlotHashesID      = solana.MustPublicKeyFromBase58("SysvarS1otHashes111111111111111111111111111")
	SysvarStakeHistoryID    = solana.MustPublicKeyFromBase58("SysvarStakeHistory1111111111111111111111111")
	SysvarRecentBlockhashes = solana.MustPublicKeyFromBase58("SysvarRecentB1ockHashes11111111111111111111")
)

// builtins are the native programs every environment carries, keyed by the
// name stored in their account data.
var builtins = []struct {
	name string
	id   solana.PublicKey
}{
	{"system_program", SystemProgramID},
	{"vote_program", VoteProgramID},
	{"stake_program", StakeProgramID},
	{"config_program", ConfigProgramID},
	{"compute_budget_program", ComputeBudgetProgramID},
	{"address_lookup_table_program", AddressLookupTableID},
	{"solana_bpf_loader_deprecated_program", BPFLoaderDeprecatedID},
	{"solana_bpf_loader_program", BPFLoaderID},
	{"solana_bpf_loader_upgradeable_program", BPFLoaderUpgradeableID},
	{"ed25519_program", Ed25519ProgramID},
	{"secp256k1_program", Secp256k1ProgramID},
	{"feature_gate_program", FeatureProgramID},
}

// ReservedKeys returns the builtin program and sysvar addresses. Transactions
// can never write to these accounts.
func ReservedKeys() []solana.PublicKey {
	keys := make([]solana.PublicKey, 0, len(builtins)+8)
	for _, b := range builtins {
		keys = append(keys, b.id)
	}
	return append(keys,
		NativeLoaderID,
		SysvarClockID,
		SysvarRentID,
		SysvarEpochScheduleID,
		SysvarInstructionsID,
		SysvarSlotHashesID,
		SysvarStakeHistoryID,
		SysvarRecentBlockhashes,
	)
}
