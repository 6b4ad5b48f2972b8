// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2021 The forkcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package parsescript

import (
	"testing"

	"github.com/forkcash/forkd/txscript/opcode"
	"github.com/forkcash/forkd/txscript/txscripterr"
)

// TestParseOpcode tests a few opcodes of each length category to ensure the
// lengths encoded in the opcode table drive parsing correctly.
func TestParseOpcode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		script  []byte
		numPops int
		valid   bool
	}{
		{
			name:    "empty script",
			script:  nil,
			numPops: 0,
			valid:   true,
		},
		{
			name:    "single byte opcodes",
			script:  []byte{opcode.OP_0, opcode.OP_1, opcode.OP_DUP},
			numPops: 3,
			valid:   true,
		},
		{
			name:    "fixed length push",
			script:  []byte{opcode.OP_DATA_3, 0x01, 0x02, 0x03},
			numPops: 1,
			valid:   true,
		},
		{
			name:   "fixed length push truncated",
			script: []byte{opcode.OP_DATA_3, 0x01, 0x02},
			valid:  false,
		},
		{
			name:    "pushdata1",
			script:  []byte{opcode.OP_PUSHDATA1, 0x02, 0xaa, 0xbb},
			numPops: 1,
			valid:   true,
		},
		{
			name:   "pushdata1 missing length",
			script: []byte{opcode.OP_PUSHDATA1},
			valid:  false,
		},
		{
			name:   "pushdata1 truncated data",
			script: []byte{opcode.OP_PUSHDATA1, 0x05, 0xaa},
			valid:  false,
		},
		{
			name:    "pushdata2",
			script:  []byte{opcode.OP_PUSHDATA2, 0x02, 0x00, 0xaa, 0xbb},
			numPops: 1,
			valid:   true,
		},
		{
			name:   "pushdata2 truncated data",
			script: []byte{opcode.OP_PUSHDATA2, 0xff, 0x00, 0xaa},
			valid:  false,
		},
		{
			name:    "pushdata4",
			script:  []byte{opcode.OP_PUSHDATA4, 0x01, 0x00, 0x00, 0x00, 0xaa},
			numPops: 1,
			valid:   true,
		},
		{
			name:   "pushdata4 truncated data",
			script: []byte{opcode.OP_PUSHDATA4, 0xff, 0xff, 0xff, 0xff},
			valid:  false,
		},
	}

	for _, test := range tests {
		pops, err := ParseScript(test.script)
		if test.valid {
			if err != nil {
				t.Errorf("%s: unexpected error %v", test.name, err)
				continue
			}
			if len(pops) != test.numPops {
				t.Errorf("%s: got %d parsed opcodes, want %d",
					test.name, len(pops), test.numPops)
			}
			continue
		}
		if !txscripterr.ErrMalformedPush.Is(err) {
			t.Errorf("%s: got error %v, want malformed push",
				test.name, err)
		}
	}
}

// TestIsPushOnly ensures classification of scripts as push only behaves
// per consensus, in particular that OP_RESERVED counts as a push.
func TestIsPushOnly(t *testing.T) {
	t.Parallel()

	pushOnly := []byte{
		opcode.OP_0, opcode.OP_1NEGATE, opcode.OP_16, opcode.OP_RESERVED,
		opcode.OP_DATA_2, 0x01, 0x02,
	}
	pops, err := ParseScript(pushOnly)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !IsPushOnly(pops) {
		t.Fatal("push only script was classified as not push only")
	}

	notPushOnly := []byte{opcode.OP_1, opcode.OP_DUP}
	pops, err = ParseScript(notPushOnly)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if IsPushOnly(pops) {
		t.Fatal("script with OP_DUP was classified as push only")
	}
}
