// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2021 The forkcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forkcash/forkd/txscript/opcode"
	"github.com/forkcash/forkd/txscript/parsescript"
)

// TestDisasmString checks disassembly output of a few scripts including one
// that fails to parse.
func TestDisasmString(t *testing.T) {
	t.Parallel()

	script := []byte{
		opcode.OP_1, opcode.OP_DATA_2, 0xab, 0xcd, opcode.OP_ADD,
	}
	disasm, err := DisasmString(script)
	require.Nil(t, err)
	require.Equal(t, "1 abcd OP_ADD", disasm)

	// Truncated push disassembles up to the failure point.
	bad := []byte{opcode.OP_1, opcode.OP_DATA_2, 0xab}
	disasm, err = DisasmString(bad)
	require.NotNil(t, err)
	require.Equal(t, "1[error]", disasm)
}

// TestIsPayToScriptHash ensures exact template matching of p2sh outputs.
func TestIsPayToScriptHash(t *testing.T) {
	t.Parallel()

	p2sh := make([]byte, 0, 23)
	p2sh = append(p2sh, opcode.OP_HASH160, opcode.OP_DATA_20)
	p2sh = append(p2sh, make([]byte, 20)...)
	p2sh = append(p2sh, opcode.OP_EQUAL)
	require.True(t, IsPayToScriptHash(p2sh))

	// Trailing opcode breaks the template.
	require.False(t, IsPayToScriptHash(append(p2sh, opcode.OP_NOP)))
	// Wrong sized push breaks the template.
	notP2sh := make([]byte, 0, 22)
	notP2sh = append(notP2sh, opcode.OP_HASH160, opcode.OP_DATA_19)
	notP2sh = append(notP2sh, make([]byte, 19)...)
	notP2sh = append(notP2sh, opcode.OP_EQUAL)
	require.False(t, IsPayToScriptHash(notP2sh))
}

// TestWitnessPrograms ensures witness program detection and extraction for
// both standard program sizes and for non-zero versions.
func TestWitnessPrograms(t *testing.T) {
	t.Parallel()

	p2wkh := append([]byte{opcode.OP_0, opcode.OP_DATA_20}, make([]byte, 20)...)
	p2wsh := append([]byte{opcode.OP_0, opcode.OP_DATA_32}, make([]byte, 32)...)
	v1 := append([]byte{opcode.OP_1, opcode.OP_DATA_32}, make([]byte, 32)...)

	require.True(t, IsPayToWitnessPubKeyHash(p2wkh))
	require.False(t, IsPayToWitnessPubKeyHash(p2wsh))
	require.True(t, IsPayToWitnessScriptHash(p2wsh))
	require.True(t, IsWitnessProgram(p2wkh))
	require.True(t, IsWitnessProgram(p2wsh))
	require.True(t, IsWitnessProgram(v1))
	require.False(t, IsWitnessProgram([]byte{opcode.OP_0, opcode.OP_1}))

	version, program, err := ExtractWitnessProgramInfo(v1)
	require.Nil(t, err)
	require.Equal(t, 1, version)
	require.Equal(t, make([]byte, 32), program)

	_, _, err = ExtractWitnessProgramInfo([]byte{opcode.OP_TRUE})
	require.NotNil(t, err)
}

// TestRemoveOpcodeByData ensures signature data is stripped from scripts
// only when pushed canonically.
func TestRemoveOpcodeByData(t *testing.T) {
	t.Parallel()

	data := []byte{0x01, 0x02, 0x03, 0x04}
	script := []byte{opcode.OP_DATA_4, 0x01, 0x02, 0x03, 0x04, opcode.OP_DUP}
	pops, err := parsescript.ParseScript(script)
	require.Nil(t, err)

	filtered := removeOpcodeByData(pops, data)
	require.Len(t, filtered, 1)
	require.Equal(t, byte(opcode.OP_DUP), filtered[0].Opcode.Value)

	// Unrelated data stays.
	filtered = removeOpcodeByData(pops, []byte{0xff})
	require.Len(t, filtered, 2)
}

// TestIsUnspendable ensures provably unspendable outputs are recognized.
func TestIsUnspendable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pkScript []byte
		want     bool
	}{
		// Unspendable
		{[]byte{0x6a, 0x04, 0x74, 0x65, 0x73, 0x74}, true},
		// Spendable
		{[]byte{0x76, 0xa9, 0x14, 0x29, 0x95, 0xa0,
			0xfe, 0x68, 0x43, 0xfa, 0x9b, 0x95, 0x45,
			0x97, 0xf0, 0xdc, 0xa7, 0xa4, 0x4d, 0xf6,
			0xfa, 0x0b, 0x5c, 0x88, 0xac}, false},
	}

	for i, test := range tests {
		require.Equalf(t, test.want, IsUnspendable(test.pkScript),
			"test %d", i)
	}
}

// TestCanonicalPush checks the canonical form requirements used by
// signature data removal and witness program detection.
func TestCanonicalPush(t *testing.T) {
	t.Parallel()

	// Small ints must use OP_N, not a data push.
	pops, err := parsescript.ParseScript([]byte{opcode.OP_DATA_1, 0x05})
	require.Nil(t, err)
	require.False(t, canonicalPush(pops[0]))

	pops, err = parsescript.ParseScript([]byte{opcode.OP_5})
	require.Nil(t, err)
	require.True(t, canonicalPush(pops[0]))

	// PUSHDATA1 of one byte is not canonical, OP_DATA_1 is.
	pops, err = parsescript.ParseScript([]byte{opcode.OP_PUSHDATA1, 0x01, 0x20})
	require.Nil(t, err)
	require.False(t, canonicalPush(pops[0]))

	pops, err = parsescript.ParseScript([]byte{opcode.OP_DATA_1, 0x20})
	require.Nil(t, err)
	require.True(t, canonicalPush(pops[0]))

	// Non-push opcodes are trivially canonical.
	pops, err = parsescript.ParseScript([]byte{opcode.OP_CHECKSIG})
	require.Nil(t, err)
	require.True(t, canonicalPush(pops[0]))
}
