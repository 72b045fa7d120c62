package bank

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/willibrandon/txcapture/pkg/snapshot"
)

// RentExemptEpoch is the rent epoch stamped on accounts that never pay rent
const RentExemptEpoch = math.MaxUint64

// Bank is an in-memory ledger harness that answers snapshot queries.
// It implements snapshot.Oracle.
type Bank struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*snapshot.Account
}

// New creates a bank holding no accounts at all
func New() *Bank {
	return &Bank{accounts: make(map[solana.PublicKey]*snapshot.Account)}
}

// NewGenesis creates a bank holding what every fresh environment holds:
// the builtin programs and the sysvars. No user programs are loaded.
func NewGenesis() *Bank {
	b := New()
	for _, builtin := range builtins {
		b.accounts[builtin.id] = &snapshot.Account{
			Lamports:   1,
			Data:       []byte(builtin.name),
			Owner:      NativeLoaderID,
			Executable: true,
			RentEpoch:  RentExemptEpoch,
		}
	}
	for id, data := range genesisSysvars() {
		b.accounts[id] = &snapshot.Account{
			Lamports:  sysvarLamports(len(data)),
			Data:      data,
			Owner:     SysvarOwnerID,
			RentEpoch: RentExemptEpoch,
		}
	}
	return b
}

// Baseline is a snapshot.BaselineFunc that hands out a fresh genesis bank
func Baseline(ctx context.Context) (snapshot.Oracle, error) {
	return NewGenesis(), nil
}

// GetAccount returns a copy of the account stored at key, or nil if none exists
func (b *Bank) GetAccount(ctx context.Context, key solana.PublicKey) (*snapshot.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.accounts[key].Clone(), nil
}

// SetAccount stores a copy of acc at key, replacing any previous account
func (b *Bank) SetAccount(key solana.PublicKey, acc *snapshot.Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[key] = acc.Clone()
}

// DeleteAccount removes the account stored at key
func (b *Bank) DeleteAccount(key solana.PublicKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.accounts, key)
}

// Airdrop credits lamports to key, creating a system-owned account if needed
func (b *Bank) Airdrop(key solana.PublicKey, lamports uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[key]
	if !ok {
		acc = &snapshot.Account{Owner: SystemProgramID}
		b.accounts[key] = acc
	}
	acc.Lamports += lamports
}

// DeployProgram loads an executable program account owned by the BPF loader
func (b *Bank) DeployProgram(id solana.PublicKey, elf []byte) error {
	if len(elf) == 0 {
		return fmt.Errorf("program %s: empty program image", id)
	}
	b.SetAccount(id, &snapshot.Account{
		Lamports:   sysvarLamports(len(elf)),
		Data:       elf,
		Owner:      BPFLoaderID,
		Executable: true,
		RentEpoch:  RentExemptEpoch,
	})
	return nil
}

// Keys returns every address holding an account, in byte order
func (b *Bank) Keys() []solana.PublicKey {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]solana.PublicKey, 0, len(b.accounts))
	for k := range b.accounts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return keys
}

// Len returns the number of accounts held by the bank
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.accounts)
}

type clockSysvar struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

type rentSysvar struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

type epochScheduleSysvar struct {
	SlotsPerEpoch            uint64
	LeaderScheduleSlotOffset uint64
	Warmup                   bool
	FirstNormalEpoch         uint64
	FirstNormalSlot          uint64
}

func genesisSysvars() map[solana.PublicKey][]byte {
	return map[solana.PublicKey][]byte{
		SysvarClockID: mustEncode(&clockSysvar{LeaderScheduleEpoch: 1}),
		SysvarRentID: mustEncode(&rentSysvar{
			LamportsPerByteYear: 3480,
			ExemptionThreshold:  2.0,
			BurnPercent:         50,
		}),
		SysvarEpochScheduleID: mustEncode(&epochScheduleSysvar{
			SlotsPerEpoch:            432000,
			LeaderScheduleSlotOffset: 432000,
		}),
	}
}

func mustEncode(v interface{}) []byte {
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(v); err != nil {
		panic(fmt.Sprintf("bank: encode sysvar: %v", err))
	}
	return buf.Bytes()
}

// sysvarLamports is the rent-exempt minimum for an account of n bytes
func sysvarLamports(n int) uint64 {
	const accountStorageOverhead = 128
	return uint64(n+accountStorageOverhead) * 3480 * 2
}
