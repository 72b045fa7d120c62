package format

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TransactionFile is the on-disk layout of transaction.json
type TransactionFile struct {
	Payer        string        `json:"payer"`
	Instructions []Instruction `json:"instructions"`
}

// Instruction is one instruction with its account metas resolved to addresses
type Instruction struct {
	ProgramID string        `json:"program_id"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      ByteArray     `json:"data"`
}

// AccountMeta describes how an instruction accesses one account
type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// ByteArray marshals as a JSON array of unsigned byte values instead of
// the base64 string encoding/json uses for []byte.
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	return b.compact(), nil
}

func (b ByteArray) compact() []byte {
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']')
}

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	// a []uint8 target would accept a base64 string, so decode as wider ints
	var wide []uint16
	if err := json.Unmarshal(data, &wide); err != nil {
		return err
	}
	values := make([]byte, len(wide))
	for i, v := range wide {
		if v > 0xff {
			return fmt.Errorf("byte %d: value %d out of range", i, v)
		}
		values[i] = byte(v)
	}
	*b = values
	return nil
}

// EncodeTransaction renders a transaction file as indented JSON
func EncodeTransaction(f *TransactionFile) ([]byte, error) {
	if f.Instructions == nil {
		f.Instructions = []Instruction{}
	}
	for i := range f.Instructions {
		if f.Instructions[i].Accounts == nil {
			f.Instructions[i].Accounts = []AccountMeta{}
		}
		if f.Instructions[i].Data == nil {
			f.Instructions[i].Data = ByteArray{}
		}
	}
	return marshal(f)
}

// DecodeTransaction parses a transaction file
func DecodeTransaction(data []byte) (*TransactionFile, error) {
	var f TransactionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
