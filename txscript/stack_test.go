// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2021 The forkcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"

	"github.com/forkcash/forkd/er"
	"github.com/forkcash/forkd/txscript/scriptnum"
	"github.com/forkcash/forkd/txscript/txscripterr"
)

// TestAsBool ensures the boolean interpretation of stack items treats any
// encoding of zero, including negative zero, as false.
func TestAsBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []byte
		want bool
	}{
		{nil, false},
		{[]byte{0x00}, false},
		{[]byte{0x00, 0x00}, false},
		{[]byte{0x80}, false},             // negative zero
		{[]byte{0x00, 0x80}, false},       // negative zero
		{[]byte{0x00, 0x00, 0x80}, false}, // negative zero
		{[]byte{0x01}, true},
		{[]byte{0x80, 0x00}, true}, // 128 is not negative zero
		{[]byte{0x00, 0x01}, true},
		{[]byte{0x00, 0x00, 0x01}, true},
	}

	for _, test := range tests {
		if got := asBool(test.in); got != test.want {
			t.Errorf("asBool(%x): got %v, want %v", test.in, got,
				test.want)
		}
	}
}

// TestStack exercises the primitive operations used by the opcode handlers.
func TestStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		before [][]byte
		op     func(*stack) er.R
		err    *er.ErrorCode
		after  [][]byte
	}{
		{
			"noop",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			func(s *stack) er.R {
				return nil
			},
			nil,
			[][]byte{{1}, {2}, {3}, {4}, {5}},
		},
		{
			"pop",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) er.R {
				val, err := s.PopByteArray()
				if err != nil {
					return err
				}
				if !bytes.Equal(val, []byte{3}) {
					return er.New("not equal")
				}
				return err
			},
			nil,
			[][]byte{{1}, {2}},
		},
		{
			"pop everything",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) er.R {
				for i := 0; i < 3; i++ {
					if _, err := s.PopByteArray(); err != nil {
						return err
					}
				}
				_, err := s.PopByteArray()
				return err
			},
			txscripterr.ErrInvalidStackOperation,
			nil,
		},
		{
			"pop int",
			[][]byte{scriptnum.ScriptNum(5190).Bytes()},
			func(s *stack) er.R {
				v, err := s.PopInt()
				if err != nil {
					return err
				}
				if v != 5190 {
					return er.New("not equal")
				}
				return nil
			},
			nil,
			nil,
		},
		{
			"pop negative int",
			[][]byte{scriptnum.ScriptNum(-1).Bytes()},
			func(s *stack) er.R {
				v, err := s.PopInt()
				if err != nil {
					return err
				}
				if v != -1 {
					return er.New("not equal")
				}
				return nil
			},
			nil,
			nil,
		},
		{
			"peek bool negative zero",
			[][]byte{{0x00, 0x80}},
			func(s *stack) er.R {
				val, err := s.PeekBool(0)
				if err != nil {
					return err
				}
				if val {
					return er.New("negative zero was true")
				}
				return nil
			},
			nil,
			[][]byte{{0x00, 0x80}},
		},
		{
			"dupN",
			[][]byte{{1}, {2}},
			func(s *stack) er.R {
				return s.DupN(2)
			},
			nil,
			[][]byte{{1}, {2}, {1}, {2}},
		},
		{
			"dupN too much",
			[][]byte{{1}},
			func(s *stack) er.R {
				return s.DupN(2)
			},
			txscripterr.ErrInvalidStackOperation,
			nil,
		},
		{
			"nipN middle",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) er.R {
				return s.NipN(1)
			},
			nil,
			[][]byte{{1}, {3}},
		},
		{
			"tuck",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) er.R {
				return s.Tuck()
			},
			nil,
			[][]byte{{1}, {3}, {2}, {3}},
		},
		{
			"dropN",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) er.R {
				return s.DropN(2)
			},
			nil,
			[][]byte{{1}},
		},
		{
			"rotN",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) er.R {
				return s.RotN(1)
			},
			nil,
			[][]byte{{2}, {3}, {1}},
		},
		{
			"swapN",
			[][]byte{{1}, {2}},
			func(s *stack) er.R {
				return s.SwapN(1)
			},
			nil,
			[][]byte{{2}, {1}},
		},
		{
			"overN",
			[][]byte{{1}, {2}},
			func(s *stack) er.R {
				return s.OverN(1)
			},
			nil,
			[][]byte{{1}, {2}, {1}},
		},
		{
			"pickN",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) er.R {
				return s.PickN(2)
			},
			nil,
			[][]byte{{1}, {2}, {3}, {1}},
		},
		{
			"rollN",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) er.R {
				return s.RollN(2)
			},
			nil,
			[][]byte{{2}, {3}, {1}},
		},
	}

	for _, test := range tests {
		s := stack{}
		for i := range test.before {
			s.PushByteArray(test.before[i])
		}
		err := test.op(&s)
		if test.err != nil {
			if !test.err.Is(err) {
				t.Errorf("%s: got error %v, want %v", test.name,
					err, test.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}

		after := make([][]byte, 0, s.Depth())
		for i := int32(s.Depth() - 1); i >= 0; i-- {
			val, err := s.PeekByteArray(i)
			if err != nil {
				t.Errorf("%s: can't peek %dth item: %v",
					test.name, i, err)
				break
			}
			after = append(after, val)
		}
		if len(after) != len(test.after) {
			t.Errorf("%s: stack depth %d, want %d", test.name,
				len(after), len(test.after))
			continue
		}
		for i := range after {
			if !bytes.Equal(after[i], test.after[i]) {
				t.Errorf("%s: item %d is %x, want %x",
					test.name, i, after[i], test.after[i])
			}
		}
	}
}

// TestStackMinimalData ensures that popping a non-minimally encoded number
// fails when the stack is configured to verify minimal encodings.
func TestStackMinimalData(t *testing.T) {
	t.Parallel()

	s := stack{verifyMinimalData: true}
	s.PushByteArray([]byte{0x01, 0x00})
	if _, err := s.PopInt(); !txscripterr.ErrMinimalData.Is(err) {
		t.Fatalf("got error %v, want minimal data violation", err)
	}

	s = stack{}
	s.PushByteArray([]byte{0x01, 0x00})
	v, err := s.PopInt()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 {
		t.Fatalf("got %d, want 1", v)
	}
}
