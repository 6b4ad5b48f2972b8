// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2021 The forkcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements the bitcoin-derived transaction script language.

A complete stack-based execution engine is provided to execute scripts with
all of the consensus rules this chain enforces.  Notably, in contrast to the
upstream rules, the splice and extended arithmetic opcodes (OP_SUBSTR,
OP_LEFT, OP_RIGHT, OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT, OP_RSHIFT, OP_2MUL,
OP_2DIV) are enabled, and signature hashes for non-witness spends commit to
a fork ID when the engine is configured for fork-identified replay
protection.

Bitcoin Scripts

Bitcoin provides a stack-based, FORTH-like language for the scripts in
the bitcoin transactions.  This language is not turing complete
although it is still fairly powerful.  A description of the language
can be found at https://en.bitcoin.it/wiki/Script

Errors

The errors returned by this package are wrapped in the er.R type and carry
one of the ErrorCode values registered in the txscripterr subpackage.  The
caller can use txscripterr.ErrXXX.Is(err) to programmatically detect a
specific failure.
*/
package txscript
