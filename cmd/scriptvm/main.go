// Copyright (c) 2021 The forkcash developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/forkcash/forkd/txscript"
)

type config struct {
	Disasm      string `short:"d" long:"disasm" description:"Disassemble the given hex encoded script and exit"`
	SigScript   string `short:"s" long:"sigscript" description:"Hex encoded signature script"`
	PkScript    string `short:"p" long:"pkscript" description:"Hex encoded public key script"`
	Amount      int64  `short:"a" long:"amount" description:"Value of the output being spent, in satoshis"`
	P2SH        bool   `long:"p2sh" description:"Enable pay-to-script-hash evaluation"`
	Witness     bool   `long:"witness" description:"Enable witness program evaluation (implies p2sh)"`
	MinimalData bool   `long:"minimaldata" description:"Require minimally encoded data pushes"`
	CleanStack  bool   `long:"cleanstack" description:"Require a clean stack after evaluation"`
	Strict      bool   `long:"strict" description:"Require strict signature, pubkey and hash type encoding"`
	ForkID      bool   `long:"forkid" description:"Require fork-identified signature hashes"`
	Step        bool   `long:"step" description:"Print each opcode before it is executed"`
	Trace       bool   `short:"v" long:"trace" description:"Enable execution trace logging to stderr"`
}

// engineFlags converts the command line switches into the script engine's
// flag bitmask.
func engineFlags(cfg *config) txscript.ScriptFlags {
	var sf txscript.ScriptFlags
	if cfg.P2SH || cfg.Witness {
		sf |= txscript.ScriptBip16
	}
	if cfg.Witness {
		sf |= txscript.ScriptVerifyWitness
	}
	if cfg.MinimalData {
		sf |= txscript.ScriptVerifyMinimalData
	}
	if cfg.CleanStack {
		sf |= txscript.ScriptVerifyCleanStack
	}
	if cfg.Strict {
		sf |= txscript.ScriptVerifyStrictEncoding |
			txscript.ScriptVerifyDERSignatures
	}
	if cfg.ForkID {
		sf |= txscript.ScriptVerifySigHashForkID
	}
	return sf
}

// spendingTx returns a transaction with a single input carrying the given
// signature script so the engine has something to execute against.
func spendingTx(sigScript []byte, value int64) *wire.MsgTx {
	outPoint := wire.NewOutPoint(&chainhash.Hash{}, ^uint32(0))
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(outPoint, sigScript, nil))
	tx.AddTxOut(wire.NewTxOut(value, nil))
	return tx
}

func main() {
	cfg := config{}
	parser := flags.NewParser(&cfg, flags.Default)
	_, errr := parser.Parse()
	if errr != nil {
		if e, ok := errr.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return
	}

	if cfg.Disasm != "" {
		script, errr := hex.DecodeString(cfg.Disasm)
		if errr != nil {
			fmt.Fprintf(os.Stderr, "invalid script hex: %v\n", errr)
			os.Exit(1)
		}
		disasm, err := txscript.DisasmString(script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n%v\n", disasm, err)
			os.Exit(1)
		}
		fmt.Println(disasm)
		return
	}

	if cfg.PkScript == "" {
		fmt.Fprintln(os.Stderr, "a public key script is required, see --help")
		os.Exit(1)
	}
	pkScript, errr := hex.DecodeString(cfg.PkScript)
	if errr != nil {
		fmt.Fprintf(os.Stderr, "invalid pkscript hex: %v\n", errr)
		os.Exit(1)
	}
	sigScript, errr := hex.DecodeString(cfg.SigScript)
	if errr != nil {
		fmt.Fprintf(os.Stderr, "invalid sigscript hex: %v\n", errr)
		os.Exit(1)
	}

	if cfg.Trace {
		backend := btclog.NewBackend(os.Stderr)
		logger := backend.Logger("SCRP")
		logger.SetLevel(btclog.LevelTrace)
		txscript.UseLogger(logger)
	}

	tx := spendingTx(sigScript, cfg.Amount)
	vm, err := txscript.NewEngine(pkScript, tx, 0, engineFlags(&cfg), nil,
		nil, cfg.Amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create engine: %v\n", err)
		os.Exit(1)
	}

	if cfg.Step {
		for {
			disasm, err := vm.DisasmPC()
			if err == nil {
				fmt.Println(disasm)
			}
			done, err := vm.Step()
			if err != nil {
				fmt.Fprintf(os.Stderr, "script failed: %v\n", err)
				os.Exit(1)
			}
			for _, item := range vm.GetStack() {
				fmt.Printf("    %x\n", item)
			}
			if done {
				break
			}
		}
		if err := vm.CheckErrorCondition(true); err != nil {
			fmt.Fprintf(os.Stderr, "script failed: %v\n", err)
			os.Exit(1)
		}
	} else if err := vm.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "script failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("script verified")
}
