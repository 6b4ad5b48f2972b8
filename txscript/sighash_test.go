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

	"github.com/forkcash/forkd/txscript/opcode"
	"github.com/forkcash/forkd/txscript/params"
	"github.com/forkcash/forkd/txscript/txscripterr"
)

// sigHashTestTx builds a two input, two output transaction for exercising
// the sighash calculations.  The contents are arbitrary but deterministic.
func sigHashTestTx() *wire.MsgTx {
	prevHash1 := chainhash.Hash{0x01}
	prevHash2 := chainhash.Hash{0x02}

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash1, 0), nil, nil))
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash2, 1), nil, nil))
	tx.AddTxOut(wire.NewTxOut(100000000, []byte{opcode.OP_TRUE}))
	tx.AddTxOut(wire.NewTxOut(200000000, []byte{opcode.OP_TRUE}))
	tx.LockTime = 0
	return tx
}

// testPkScript is a stand-in previous output script for the sighash tests.
var testPkScript = []byte{
	opcode.OP_DUP, opcode.OP_HASH160, opcode.OP_DATA_20,
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09,
	0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13,
	opcode.OP_EQUALVERIFY, opcode.OP_CHECKSIG,
}

// TestForkIDRequired ensures the fork-identified sighash refuses to produce
// a digest when the hash type does not carry the fork ID bit.  This is a
// hard failure rather than a fallback to a different construction.
func TestForkIDRequired(t *testing.T) {
	t.Parallel()

	tx := sigHashTestTx()
	for _, hashType := range []params.SigHashType{
		params.SigHashAll,
		params.SigHashNone,
		params.SigHashSingle,
		params.SigHashAll | params.SigHashAnyOneCanPay,
	} {
		_, err := CalcSignatureHashForkID(testPkScript, hashType, tx, 0,
			100000000)
		require.Truef(t, txscripterr.ErrForkIDRequired.Is(err),
			"hash type 0x%x: got %v", hashType, err)
	}
}

// TestForkIDDigestLayout ensures the fork-identified digest uses the same
// construction as the segwit v0 digest, including the input amount
// commitment and the full hash type with the fork ID bit in the trailing
// four bytes.
func TestForkIDDigestLayout(t *testing.T) {
	t.Parallel()

	tx := sigHashTestTx()
	const amt = 100000000

	for _, baseType := range []params.SigHashType{
		params.SigHashAll,
		params.SigHashNone,
		params.SigHashSingle,
		params.SigHashAll | params.SigHashAnyOneCanPay,
	} {
		hashType := baseType | params.SigHashForkID

		forkDigest, err := CalcSignatureHashForkID(testPkScript,
			hashType, tx, 0, amt)
		require.Nil(t, err)

		witDigest, err := CalcWitnessSigHash(testPkScript,
			NewTxSigHashes(tx), hashType, tx, 0, amt)
		require.Nil(t, err)

		require.Equalf(t, witDigest, forkDigest, "hash type 0x%x",
			hashType)
	}
}

// TestForkIDCommitsToAmount ensures changing the input amount changes the
// fork-identified digest, unlike the legacy construction which has no
// knowledge of the value being spent.
func TestForkIDCommitsToAmount(t *testing.T) {
	t.Parallel()

	tx := sigHashTestTx()
	hashType := params.SigHashAll | params.SigHashForkID

	d1, err := CalcSignatureHashForkID(testPkScript, hashType, tx, 0, 100)
	require.Nil(t, err)
	d2, err := CalcSignatureHashForkID(testPkScript, hashType, tx, 0, 101)
	require.Nil(t, err)
	require.False(t, bytes.Equal(d1, d2))
}

// TestLegacySigHashSingleBug ensures the legacy construction reproduces the
// original one-as-a-uint256 result when SigHashSingle is used with an input
// index that has no matching output, instead of failing.
func TestLegacySigHashSingleBug(t *testing.T) {
	t.Parallel()

	tx := sigHashTestTx()
	tx.TxOut = tx.TxOut[:1] // two inputs, one output

	digest, err := CalcSignatureHash(testPkScript, params.SigHashSingle,
		tx, 1)
	require.Nil(t, err)

	want := make([]byte, 32)
	want[0] = 0x01
	require.Equal(t, want, digest)
}

// TestLegacySigHashTypes ensures the distinct hash types commit to different
// digests and that undefined hash types are treated like SigHashAll.
func TestLegacySigHashTypes(t *testing.T) {
	t.Parallel()

	tx := sigHashTestTx()

	digests := make(map[string]params.SigHashType)
	for _, hashType := range []params.SigHashType{
		params.SigHashAll,
		params.SigHashNone,
		params.SigHashSingle,
		params.SigHashAll | params.SigHashAnyOneCanPay,
	} {
		digest, err := CalcSignatureHash(testPkScript, hashType, tx, 0)
		require.Nil(t, err)
		prev, ok := digests[string(digest)]
		require.Falsef(t, ok, "hash types 0x%x and 0x%x collide",
			prev, hashType)
		digests[string(digest)] = hashType
	}

	// The serialized hash type trails the digest preimage, so even an
	// undefined type yields a distinct digest despite hashing the
	// transaction like SigHashAll.
	allDigest, err := CalcSignatureHash(testPkScript, params.SigHashAll, tx, 0)
	require.Nil(t, err)
	undefDigest, err := CalcSignatureHash(testPkScript, 0x07, tx, 0)
	require.Nil(t, err)
	require.False(t, bytes.Equal(allDigest, undefDigest))
}

// TestLegacyIgnoresWitness ensures witness data does not influence the
// legacy digest.
func TestLegacyIgnoresWitness(t *testing.T) {
	t.Parallel()

	tx := sigHashTestTx()
	digest1, err := CalcSignatureHash(testPkScript, params.SigHashAll, tx, 0)
	require.Nil(t, err)

	tx.TxIn[0].Witness = wire.TxWitness{[]byte{0x01, 0x02}}
	digest2, err := CalcSignatureHash(testPkScript, params.SigHashAll, tx, 0)
	require.Nil(t, err)

	require.Equal(t, digest1, digest2)
}

// TestCalcSignatureHashForAlgorithm ensures the dispatcher routes each
// algorithm to its construction and rejects unknown algorithms.
func TestCalcSignatureHashForAlgorithm(t *testing.T) {
	t.Parallel()

	tx := sigHashTestTx()
	const amt = 100000000

	legacy, err := CalcSignatureHashForAlgorithm(SigHashLegacy,
		testPkScript, params.SigHashAll, tx, 0, amt)
	require.Nil(t, err)
	wantLegacy, err := CalcSignatureHash(testPkScript, params.SigHashAll, tx, 0)
	require.Nil(t, err)
	require.Equal(t, wantLegacy, legacy)

	segwit, err := CalcSignatureHashForAlgorithm(SigHashSegwitV0,
		testPkScript, params.SigHashAll, tx, 0, amt)
	require.Nil(t, err)
	wantSegwit, err := CalcWitnessSigHash(testPkScript, NewTxSigHashes(tx),
		params.SigHashAll, tx, 0, amt)
	require.Nil(t, err)
	require.Equal(t, wantSegwit, segwit)

	forkType := params.SigHashAll | params.SigHashForkID
	fork, err := CalcSignatureHashForAlgorithm(SigHashForkID,
		testPkScript, forkType, tx, 0, amt)
	require.Nil(t, err)
	wantFork, err := CalcSignatureHashForkID(testPkScript, forkType, tx, 0, amt)
	require.Nil(t, err)
	require.Equal(t, wantFork, fork)

	// The three algorithms must not agree on a digest for this input.
	require.False(t, bytes.Equal(legacy, segwit))
	require.False(t, bytes.Equal(segwit, fork))

	_, err = CalcSignatureHashForAlgorithm(SigHashAlgorithm(42),
		testPkScript, params.SigHashAll, tx, 0, amt)
	require.NotNil(t, err)
}

// TestSigHashAlgorithmString ensures the algorithm names are stable since
// they appear in logs and error messages.
func TestSigHashAlgorithmString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "legacy", SigHashLegacy.String())
	require.Equal(t, "segwitv0", SigHashSegwitV0.String())
	require.Equal(t, "forkid", SigHashForkID.String())
}

// TestHashCache exercises adding, fetching and purging cached partial
// sighashes.
func TestHashCache(t *testing.T) {
	t.Parallel()

	cache := NewHashCache(10)
	tx := sigHashTestTx()
	txid := tx.TxHash()

	require.False(t, cache.ContainsHashes(&txid))
	cache.AddSigHashes(tx)
	require.True(t, cache.ContainsHashes(&txid))

	hashes, ok := cache.GetSigHashes(&txid)
	require.True(t, ok)
	want := NewTxSigHashes(tx)
	require.Equal(t, want, hashes)

	cache.PurgeSigHashes(&txid)
	require.False(t, cache.ContainsHashes(&txid))
}
