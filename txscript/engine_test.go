// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2021 The forkcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil"

	"github.com/forkcash/forkd/er"
	"github.com/forkcash/forkd/txscript/opcode"
	"github.com/forkcash/forkd/txscript/txscripterr"
)

// engineTestTx returns a transaction spending a fake outpoint with the given
// signature script so an engine can be constructed around it.
func engineTestTx(sigScript []byte) *wire.MsgTx {
	prevHash := chainhash.Hash{0x0f}
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), sigScript, nil))
	tx.AddTxOut(wire.NewTxOut(5000000000, nil))
	return tx
}

// executeScripts runs the engine over the provided script pair and returns
// the execution result.
func executeScripts(sigScript, pkScript []byte, flags ScriptFlags) er.R {
	tx := engineTestTx(sigScript)
	vm, err := NewEngine(pkScript, tx, 0, flags, nil, nil, 0)
	if err != nil {
		return err
	}
	return vm.Execute()
}

// TestEngineScripts runs full script pairs through the engine covering the
// arithmetic and splice opcodes end to end.
func TestEngineScripts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		sigScript []byte
		pkScript  []byte
		flags     ScriptFlags
		errCd     *er.ErrorCode
	}{
		{
			name:      "add",
			sigScript: []byte{opcode.OP_2, opcode.OP_3},
			pkScript:  []byte{opcode.OP_ADD, opcode.OP_5, opcode.OP_EQUAL},
		},
		{
			name:      "add wrong sum",
			sigScript: []byte{opcode.OP_2, opcode.OP_3},
			pkScript:  []byte{opcode.OP_ADD, opcode.OP_6, opcode.OP_EQUAL},
			errCd:     txscripterr.ErrEvalFalse,
		},
		{
			name:      "mul",
			sigScript: []byte{opcode.OP_6, opcode.OP_7},
			pkScript: []byte{
				opcode.OP_MUL, opcode.OP_DATA_1, 42, opcode.OP_EQUAL,
			},
		},
		{
			name:      "floor div",
			sigScript: []byte{opcode.OP_7, opcode.OP_1NEGATE, opcode.OP_2, opcode.OP_MUL},
			pkScript: []byte{
				// 7 / -2 == -4
				opcode.OP_DIV, opcode.OP_DATA_1, 0x84, opcode.OP_EQUAL,
			},
		},
		{
			name:      "mod",
			sigScript: []byte{opcode.OP_7, opcode.OP_2},
			pkScript:  []byte{opcode.OP_MOD, opcode.OP_1, opcode.OP_EQUAL},
		},
		{
			name:      "div by zero",
			sigScript: []byte{opcode.OP_7, opcode.OP_0},
			pkScript:  []byte{opcode.OP_DIV},
			errCd:     txscripterr.ErrDivideByZero,
		},
		{
			name:      "lshift",
			sigScript: []byte{opcode.OP_1, opcode.OP_5},
			pkScript: []byte{
				opcode.OP_LSHIFT, opcode.OP_DATA_1, 32, opcode.OP_EQUAL,
			},
		},
		{
			name: "left",
			sigScript: []byte{
				opcode.OP_DATA_6, 'a', 'b', 'c', 'd', 'e', 'f',
				opcode.OP_3,
			},
			pkScript: []byte{
				opcode.OP_LEFT,
				opcode.OP_DATA_3, 'a', 'b', 'c',
				opcode.OP_EQUAL,
			},
		},
		{
			name: "substr",
			sigScript: []byte{
				opcode.OP_DATA_6, 'a', 'b', 'c', 'd', 'e', 'f',
				opcode.OP_1, opcode.OP_3,
			},
			pkScript: []byte{
				opcode.OP_SUBSTR,
				opcode.OP_DATA_3, 'b', 'c', 'd',
				opcode.OP_EQUAL,
			},
		},
		{
			name: "right zero count is empty",
			sigScript: []byte{
				opcode.OP_DATA_6, 'a', 'b', 'c', 'd', 'e', 'f',
				opcode.OP_0,
			},
			pkScript: []byte{
				opcode.OP_RIGHT, opcode.OP_0, opcode.OP_EQUAL,
			},
		},
		{
			name:      "conditional",
			sigScript: []byte{opcode.OP_1},
			pkScript: []byte{
				opcode.OP_IF, opcode.OP_2, opcode.OP_ELSE, opcode.OP_3,
				opcode.OP_ENDIF, opcode.OP_2, opcode.OP_EQUAL,
			},
		},
		{
			name:      "disabled opcode",
			sigScript: []byte{opcode.OP_1, opcode.OP_1},
			pkScript:  []byte{opcode.OP_CAT},
			errCd:     txscripterr.ErrDisabledOpcode,
		},
		{
			name:      "unbalanced conditional",
			sigScript: []byte{opcode.OP_1},
			pkScript:  []byte{opcode.OP_IF, opcode.OP_1},
			errCd:     txscripterr.ErrUnbalancedConditional,
		},
		{
			name:      "leftover stack items",
			sigScript: []byte{opcode.OP_1, opcode.OP_1},
			pkScript:  []byte{opcode.OP_NOP},
			flags:     ScriptBip16 | ScriptVerifyCleanStack,
			errCd:     txscripterr.ErrCleanStack,
		},
		{
			name:      "false result",
			sigScript: []byte{opcode.OP_0},
			pkScript:  nil,
			errCd:     txscripterr.ErrEvalFalse,
		},
	}

	for _, test := range tests {
		err := executeScripts(test.sigScript, test.pkScript, test.flags)
		if test.errCd != nil {
			require.Truef(t, test.errCd.Is(err), "%s: got %v, want %v",
				test.name, err, test.errCd)
			continue
		}
		require.Nilf(t, err, "%s", test.name)
	}
}

// TestEngineP2SH verifies the extra script evaluation round for
// pay-to-script-hash spends.
func TestEngineP2SH(t *testing.T) {
	t.Parallel()

	// Redeem script: OP_2 OP_EQUAL, spender pushes a 2.
	redeemScript := []byte{opcode.OP_2, opcode.OP_EQUAL}
	scriptHash := btcutil.Hash160(redeemScript)

	pkScript := make([]byte, 0, 23)
	pkScript = append(pkScript, opcode.OP_HASH160, opcode.OP_DATA_20)
	pkScript = append(pkScript, scriptHash...)
	pkScript = append(pkScript, opcode.OP_EQUAL)

	sigScript := []byte{
		opcode.OP_2,
		opcode.OP_DATA_2, opcode.OP_2, opcode.OP_EQUAL,
	}

	err := executeScripts(sigScript, pkScript, ScriptBip16)
	require.Nil(t, err)

	// An extra push in the signature script survives the redeem script
	// evaluation and trips the clean stack check.
	dirtySigScript := append([]byte{opcode.OP_1}, sigScript...)
	err = executeScripts(dirtySigScript, pkScript, ScriptBip16|ScriptVerifyCleanStack)
	require.True(t, txscripterr.ErrCleanStack.Is(err))

	// A signature script with a non-push opcode is rejected for p2sh.
	badSigScript := append([]byte{opcode.OP_NOP}, sigScript...)
	err = executeScripts(badSigScript, pkScript, ScriptBip16)
	require.True(t, txscripterr.ErrNotPushOnly.Is(err))
}

// TestEngineFlagValidation covers the invariants NewEngine enforces on its
// inputs before execution begins.
func TestEngineFlagValidation(t *testing.T) {
	t.Parallel()

	pkScript := []byte{opcode.OP_1}

	// Clean stack without p2sh or witness is invalid.
	tx := engineTestTx(nil)
	_, err := NewEngine(pkScript, tx, 0, ScriptVerifyCleanStack, nil, nil, 0)
	require.True(t, txscripterr.ErrInvalidFlags.Is(err))

	// Witness without p2sh is invalid.
	_, err = NewEngine(pkScript, tx, 0, ScriptVerifyWitness, nil, nil, 0)
	require.True(t, txscripterr.ErrInvalidFlags.Is(err))

	// Input index out of range.
	_, err = NewEngine(pkScript, tx, 1, 0, nil, nil, 0)
	require.True(t, txscripterr.ErrInvalidIndex.Is(err))

	// Both scripts empty short circuits to a false result.
	_, err = NewEngine(nil, tx, 0, 0, nil, nil, 0)
	require.True(t, txscripterr.ErrEvalFalse.Is(err))

	// Oversized public key script.
	big := make([]byte, 10001)
	_, err = NewEngine(big, tx, 0, 0, nil, nil, 0)
	require.True(t, txscripterr.ErrScriptTooBig.Is(err))

	// Signature script with non-push opcodes when push only is required.
	tx = engineTestTx([]byte{opcode.OP_NOP})
	_, err = NewEngine(pkScript, tx, 0, ScriptVerifySigPushOnly, nil, nil, 0)
	require.True(t, txscripterr.ErrNotPushOnly.Is(err))
}

// TestEngineTooManyOperations ensures the per script operation budget is
// enforced.
func TestEngineTooManyOperations(t *testing.T) {
	t.Parallel()

	// 202 executed non-push opcodes exceeds the limit of 201.
	pkScript := bytes.Repeat([]byte{opcode.OP_NOP}, 202)
	pkScript = append(pkScript, opcode.OP_1)

	err := executeScripts([]byte{opcode.OP_1}, pkScript, 0)
	require.True(t, txscripterr.ErrTooManyOperations.Is(err))
}

// TestEngineStep walks a script manually and verifies the error condition
// checks on an unfinished script.
func TestEngineStep(t *testing.T) {
	t.Parallel()

	tx := engineTestTx([]byte{opcode.OP_2})
	pkScript := []byte{opcode.OP_2, opcode.OP_EQUAL}
	vm, err := NewEngine(pkScript, tx, 0, 0, nil, nil, 0)
	require.Nil(t, err)

	// Error checking before the script has finished must fail.
	err = vm.CheckErrorCondition(true)
	require.True(t, txscripterr.ErrScriptUnfinished.Is(err))

	disasm, err := vm.DisasmPC()
	require.Nil(t, err)
	require.Equal(t, "00:0000: OP_2", disasm)

	done, err := vm.Step()
	require.Nil(t, err)
	require.False(t, done)
	require.Equal(t, [][]byte{{2}}, vm.GetStack())

	for !done {
		done, err = vm.Step()
		require.Nil(t, err)
	}
	require.Nil(t, vm.CheckErrorCondition(true))
}

// TestEngineGetSetStack ensures stack contents can be inspected and replaced
// mid execution.
func TestEngineGetSetStack(t *testing.T) {
	t.Parallel()

	tx := engineTestTx([]byte{opcode.OP_1})
	vm, err := NewEngine([]byte{opcode.OP_DROP, opcode.OP_1}, tx, 0, 0,
		nil, nil, 0)
	require.Nil(t, err)

	vm.SetStack([][]byte{{4}, {5}})
	require.Equal(t, [][]byte{{4}, {5}}, vm.GetStack())

	vm.SetAltStack([][]byte{{6}})
	require.Equal(t, [][]byte{{6}}, vm.GetAltStack())
}
