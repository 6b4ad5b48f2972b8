// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2021 The forkcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forkcash/forkd/er"
	"github.com/forkcash/forkd/txscript/opcode"
	"github.com/forkcash/forkd/txscript/parsescript"
	"github.com/forkcash/forkd/txscript/scriptnum"
	"github.com/forkcash/forkd/txscript/txscripterr"
)

// mkPop returns a parsed opcode with no data for direct handler invocation.
func mkPop(op byte) *parsescript.ParsedOpcode {
	return &parsescript.ParsedOpcode{Opcode: opcode.MkOpcode(op)}
}

// TestOpcodeTableTotality ensures every one of the 256 possible opcode
// values dispatches to a handler so execution can never hit a nil entry.
func TestOpcodeTableTotality(t *testing.T) {
	t.Parallel()

	for i := 0; i < 256; i++ {
		require.NotNilf(t, opcodeHandlers[i],
			"no handler for opcode 0x%02x (%s)", i,
			opcode.OpcodeName(byte(i)))
	}
}

// TestDisabledOpcodes ensures the splice and bitwise logic opcodes which
// remain disabled return the expected error when executed, even when they
// appear in an unexecuted branch.
func TestDisabledOpcodes(t *testing.T) {
	t.Parallel()

	disabled := []byte{
		opcode.OP_CAT, opcode.OP_INVERT, opcode.OP_AND, opcode.OP_OR,
		opcode.OP_XOR,
	}
	for _, op := range disabled {
		vm := Engine{}
		err := vm.executeOpcode(mkPop(op))
		require.Truef(t, txscripterr.ErrDisabledOpcode.Is(err),
			"%s: got %v", opcode.OpcodeName(op), err)

		// Hidden behind a false conditional makes no difference.
		vm = Engine{condStack: []int{OpCondFalse}}
		err = vm.executeOpcode(mkPop(op))
		require.Truef(t, txscripterr.ErrDisabledOpcode.Is(err),
			"%s in false branch: got %v", opcode.OpcodeName(op), err)
	}
}

// TestAlwaysIllegalOpcodes ensures OP_VERIF and OP_VERNOTIF fail even in an
// unexecuted branch.
func TestAlwaysIllegalOpcodes(t *testing.T) {
	t.Parallel()

	for _, op := range []byte{opcode.OP_VERIF, opcode.OP_VERNOTIF} {
		vm := Engine{condStack: []int{OpCondFalse}}
		err := vm.executeOpcode(mkPop(op))
		require.Truef(t, txscripterr.ErrReservedOpcode.Is(err),
			"%s: got %v", opcode.OpcodeName(op), err)
	}
}

// spliceTest describes a single invocation of one of the splice opcode
// handlers against a prepared stack.
type spliceTest struct {
	name  string
	item  []byte
	args  []int64
	want  []byte
	errCd *er.ErrorCode
}

// runSpliceTests executes the handler for the given opcode against each of
// the test vectors.
func runSpliceTests(t *testing.T, op byte, handler opcodeHandler, tests []spliceTest) {
	for _, test := range tests {
		vm := Engine{}
		vm.dstack.PushByteArray(test.item)
		for _, arg := range test.args {
			vm.dstack.PushInt(scriptnum.ScriptNum(arg))
		}

		err := handler(mkPop(op), &vm)
		if test.errCd != nil {
			require.Truef(t, test.errCd.Is(err), "%s: got %v, want %v",
				test.name, err, test.errCd)
			continue
		}
		require.Nilf(t, err, "%s", test.name)

		got, err := vm.dstack.PopByteArray()
		require.Nil(t, err)
		require.Equalf(t, test.want, got, "%s", test.name)
		require.Equal(t, int32(0), vm.dstack.Depth(), test.name)
	}
}

// TestOpcodeSubstr exercises the re-enabled OP_SUBSTR semantics, notably
// that out of range offsets truncate rather than fail.
func TestOpcodeSubstr(t *testing.T) {
	t.Parallel()

	abcdef := []byte("abcdef")
	runSpliceTests(t, opcode.OP_SUBSTR, opcodeSubstr, []spliceTest{
		{"mid range", abcdef, []int64{1, 3}, []byte("bcd"), nil},
		{"from start", abcdef, []int64{0, 2}, []byte("ab"), nil},
		{"count past end", abcdef, []int64{4, 100}, []byte("ef"), nil},
		{"start past end", abcdef, []int64{10, 2}, []byte{}, nil},
		{"zero count", abcdef, []int64{2, 0}, []byte{}, nil},
		{"whole item", abcdef, []int64{0, 6}, abcdef, nil},
		{"negative start", abcdef, []int64{-1, 2}, nil,
			txscripterr.ErrInvalidNumberRange},
		{"negative count", abcdef, []int64{1, -2}, nil,
			txscripterr.ErrInvalidNumberRange},
	})
}

// TestOpcodeLeft exercises the re-enabled OP_LEFT semantics.
func TestOpcodeLeft(t *testing.T) {
	t.Parallel()

	abcdef := []byte("abcdef")
	runSpliceTests(t, opcode.OP_LEFT, opcodeLeft, []spliceTest{
		{"prefix", abcdef, []int64{3}, []byte("abc"), nil},
		{"zero count", abcdef, []int64{0}, []byte{}, nil},
		{"count past end", abcdef, []int64{42}, abcdef, nil},
		{"empty item", []byte{}, []int64{3}, []byte{}, nil},
		{"negative count", abcdef, []int64{-1}, nil,
			txscripterr.ErrInvalidNumberRange},
	})
}

// TestOpcodeRight exercises the re-enabled OP_RIGHT semantics, notably that
// a zero count pushes an empty item.
func TestOpcodeRight(t *testing.T) {
	t.Parallel()

	abcdef := []byte("abcdef")
	runSpliceTests(t, opcode.OP_RIGHT, opcodeRight, []spliceTest{
		{"suffix", abcdef, []int64{2}, []byte("ef"), nil},
		{"zero count", abcdef, []int64{0}, nil, nil},
		{"count past end", abcdef, []int64{42}, abcdef, nil},
		{"negative count", abcdef, []int64{-1}, nil,
			txscripterr.ErrInvalidNumberRange},
	})
}

// arithTest describes a single invocation of a binary arithmetic opcode
// handler.
type arithTest struct {
	name  string
	a, b  int64
	want  int64
	errCd *er.ErrorCode
}

// runArithTests pushes a then b and runs the handler, comparing the numeric
// result on the stack.
func runArithTests(t *testing.T, op byte, handler opcodeHandler, tests []arithTest) {
	for _, test := range tests {
		vm := Engine{}
		vm.dstack.PushInt(scriptnum.ScriptNum(test.a))
		vm.dstack.PushInt(scriptnum.ScriptNum(test.b))

		err := handler(mkPop(op), &vm)
		if test.errCd != nil {
			require.Truef(t, test.errCd.Is(err), "%s: got %v, want %v",
				test.name, err, test.errCd)
			continue
		}
		require.Nilf(t, err, "%s", test.name)

		got, err := vm.dstack.PopInt()
		require.Nil(t, err)
		require.Equalf(t, scriptnum.ScriptNum(test.want), got, "%s", test.name)
	}
}

// TestOpcodeMul exercises the re-enabled OP_MUL.
func TestOpcodeMul(t *testing.T) {
	t.Parallel()

	runArithTests(t, opcode.OP_MUL, opcodeMul, []arithTest{
		{"basic", 6, 7, 42, nil},
		{"by zero", 1234, 0, 0, nil},
		{"negative", -3, 5, -15, nil},
		{"both negative", -3, -5, 15, nil},

		// The product of two 4-byte operands may overflow the numeric
		// operand range but remains a valid stack item.
		{"overflowing product", 2147483647, 2, 4294967294, nil},
	})
}

// TestOpcodeDivMod exercises the re-enabled OP_DIV and OP_MOD, which round
// toward negative infinity rather than truncating toward zero.
func TestOpcodeDivMod(t *testing.T) {
	t.Parallel()

	runArithTests(t, opcode.OP_DIV, opcodeDiv, []arithTest{
		{"exact", 8, 2, 4, nil},
		{"inexact", 7, 2, 3, nil},
		{"negative dividend", -7, 2, -4, nil},
		{"negative divisor", 7, -2, -4, nil},
		{"both negative", -7, -2, 3, nil},
		{"divide by zero", 7, 0, 0, txscripterr.ErrDivideByZero},
	})

	runArithTests(t, opcode.OP_MOD, opcodeMod, []arithTest{
		{"exact", 8, 2, 0, nil},
		{"inexact", 7, 2, 1, nil},
		{"negative dividend", -7, 2, 1, nil},
		{"negative divisor", 7, -2, -1, nil},
		{"both negative", -7, -2, -1, nil},
		{"modulo by zero", 7, 0, 0, txscripterr.ErrDivideByZero},
	})
}

// TestOpcodeShifts exercises the re-enabled OP_LSHIFT and OP_RSHIFT
// including the shift count bounds.
func TestOpcodeShifts(t *testing.T) {
	t.Parallel()

	runArithTests(t, opcode.OP_LSHIFT, opcodeLShift, []arithTest{
		{"by zero", 5, 0, 5, nil},
		{"basic", 5, 3, 40, nil},
		{"negative value", -5, 1, -10, nil},
		{"max count", 1, 32, 4294967296, nil},
		{"count too big", 1, 33, 0, txscripterr.ErrInvalidNumberRange},
		{"negative count", 1, -1, 0, txscripterr.ErrInvalidNumberRange},
	})

	runArithTests(t, opcode.OP_RSHIFT, opcodeRShift, []arithTest{
		{"by zero", 5, 0, 5, nil},
		{"basic", 40, 3, 5, nil},

		// Arithmetic shift rounds toward negative infinity.
		{"negative value", -5, 1, -3, nil},
		{"shifted out", 1, 32, 0, nil},
		{"count too big", 1, 33, 0, txscripterr.ErrInvalidNumberRange},
		{"negative count", 1, -1, 0, txscripterr.ErrInvalidNumberRange},
	})
}

// TestOpcode2Mul2Div exercises the re-enabled OP_2MUL and OP_2DIV.
func TestOpcode2Mul2Div(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op      byte
		handler opcodeHandler
		in      int64
		want    int64
	}{
		{opcode.OP_2MUL, opcode2Mul, 21, 42},
		{opcode.OP_2MUL, opcode2Mul, -21, -42},
		{opcode.OP_2MUL, opcode2Mul, 0, 0},
		{opcode.OP_2DIV, opcode2Div, 42, 21},
		{opcode.OP_2DIV, opcode2Div, 7, 3},
		{opcode.OP_2DIV, opcode2Div, -7, -4},
		{opcode.OP_2DIV, opcode2Div, 0, 0},
	}
	for _, test := range tests {
		vm := Engine{}
		vm.dstack.PushInt(scriptnum.ScriptNum(test.in))
		err := test.handler(mkPop(test.op), &vm)
		require.Nil(t, err)
		got, err := vm.dstack.PopInt()
		require.Nil(t, err)
		require.Equalf(t, scriptnum.ScriptNum(test.want), got,
			"%s(%d)", opcode.OpcodeName(test.op), test.in)
	}
}

// TestOpcodePick ensures OP_PICK copies the Nth item rather than moving it.
func TestOpcodePick(t *testing.T) {
	t.Parallel()

	vm := Engine{}
	vm.dstack.PushByteArray([]byte("a"))
	vm.dstack.PushByteArray([]byte("b"))
	vm.dstack.PushByteArray([]byte("c"))
	vm.dstack.PushInt(2)

	err := opcodePick(mkPop(opcode.OP_PICK), &vm)
	require.Nil(t, err)

	top, err := vm.dstack.PopByteArray()
	require.Nil(t, err)
	require.Equal(t, []byte("a"), top)
	require.Equal(t, int32(3), vm.dstack.Depth())
}

// TestOpcodeWithin ensures OP_WITHIN treats the lower bound as inclusive and
// the upper bound as exclusive.
func TestOpcodeWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x, min, max int64
		want        bool
	}{
		{5, 1, 10, true},
		{1, 1, 10, true},   // lower bound inclusive
		{10, 1, 10, false}, // upper bound exclusive
		{0, 1, 10, false},
		{-3, -5, 0, true},
	}
	for _, test := range tests {
		vm := Engine{}
		vm.dstack.PushInt(scriptnum.ScriptNum(test.x))
		vm.dstack.PushInt(scriptnum.ScriptNum(test.min))
		vm.dstack.PushInt(scriptnum.ScriptNum(test.max))

		err := opcodeWithin(mkPop(opcode.OP_WITHIN), &vm)
		require.Nil(t, err)

		got, err := vm.dstack.PopBool()
		require.Nil(t, err)
		require.Equalf(t, test.want, got, "within(%d, [%d, %d))",
			test.x, test.min, test.max)
	}
}

// TestOpcode0NotEqual ensures OP_0NOTEQUAL decodes its operand as a boolean,
// so negative zero encodings and oversized items count as false and true
// respectively rather than failing the numeric range checks.
func TestOpcode0NotEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []byte
		want int64
	}{
		{nil, 0},
		{[]byte{0x00}, 0},
		{[]byte{0x80}, 0}, // negative zero
		{[]byte{0x01}, 1},
		{[]byte{0x81}, 1},
		{[]byte{0x00, 0x00, 0x00, 0x00, 0x01}, 1}, // wider than 4 bytes
	}
	for _, test := range tests {
		vm := Engine{}
		vm.dstack.PushByteArray(test.in)
		err := opcode0NotEqual(mkPop(opcode.OP_0NOTEQUAL), &vm)
		require.Nil(t, err)
		got, err := vm.dstack.PopInt()
		require.Nil(t, err)
		require.Equalf(t, scriptnum.ScriptNum(test.want), got, "%x", test.in)
	}
}

// TestOpcodeEqual covers raw byte equality including the empty item.
func TestOpcodeEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b []byte
		want bool
	}{
		{[]byte("abc"), []byte("abc"), true},
		{nil, nil, true},
		{[]byte{0x00}, nil, false}, // equality is bytewise, not numeric
		{[]byte("abc"), []byte("abd"), false},
	}
	for _, test := range tests {
		vm := Engine{}
		vm.dstack.PushByteArray(test.a)
		vm.dstack.PushByteArray(test.b)
		err := opcodeEqual(mkPop(opcode.OP_EQUAL), &vm)
		require.Nil(t, err)
		got, err := vm.dstack.PopBool()
		require.Nil(t, err)
		require.Equalf(t, test.want, got, "equal(%x, %x)", test.a, test.b)
	}
}

// TestOpcodeNumberRange ensures numeric opcodes reject operands encoded in
// more than 4 bytes while EQUAL style opcodes accept them.
func TestOpcodeNumberRange(t *testing.T) {
	t.Parallel()

	wide := []byte{0x01, 0x00, 0x00, 0x00, 0x00} // 5 byte encoding of 1

	vm := Engine{}
	vm.dstack.PushByteArray(wide)
	vm.dstack.PushInt(1)
	err := opcodeAdd(mkPop(opcode.OP_ADD), &vm)
	require.True(t, txscripterr.ErrNumberTooBig.Is(err))

	vm = Engine{}
	vm.dstack.PushByteArray(wide)
	vm.dstack.PushByteArray(wide)
	err = opcodeEqual(mkPop(opcode.OP_EQUAL), &vm)
	require.Nil(t, err)
	got, err := vm.dstack.PopBool()
	require.Nil(t, err)
	require.True(t, got)
}

// TestOpcodeNames ensures the name table round trips through OpcodeByName
// for the named opcodes.
func TestOpcodeNames(t *testing.T) {
	t.Parallel()

	for name, val := range OpcodeByName {
		// A few aliases parse to the same value, the canonical name
		// is the one reported by OpcodeName.
		switch name {
		case "OP_FALSE", "OP_TRUE", "OP_NOP2", "OP_NOP3":
			continue
		}
		require.Equalf(t, name, opcode.OpcodeName(val), "0x%02x", val)
	}
}
