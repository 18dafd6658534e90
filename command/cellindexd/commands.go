// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/processor"
	"github.com/bitmark-inc/cellindexd/zmqutil"
)

const (
	publishPublicKeyFilename  = "publish.public"
	publishPrivateKeyFilename = "publish.private"
)

// setup command handler
//
// commands that run to create key files these commands cannot access
// any internal database or states or the configuration file
func processSetupCommand(program string, arguments []string) bool {
	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-publish-identity", "publish":
		publicKeyFilename := getFilenameWithDirectory(arguments, publishPublicKeyFilename)
		privateKeyFilename := getFilenameWithDirectory(arguments, publishPrivateKeyFilename)
		err := zmqutil.MakeKeyPair(publicKeyFilename, privateKeyFilename)
		if nil != err {
			fmt.Printf("generate private key: %q and public key: %q error: %s\n", privateKeyFilename, publicKeyFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated private key: %q and public key: %q\n", privateKeyFilename, publicKeyFilename)

	case "start", "run":
		return false // continue processing

	case "config-test", "cfg":
		return false // defer processing until configuration is read

	case "tip", "rollback", "rb", "prune":
		return false // defer processing until database is opened

	case "version", "v":
		fmt.Printf("%s\n", version)

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                        (h)       - display this message\n\n")
		fmt.Printf("  version                     (v)       - display version sting\n\n")

		fmt.Printf("  gen-publish-identity [DIR]  (publish) - create private key in: %q\n", "DIR/"+publishPrivateKeyFilename)
		fmt.Printf("                                          and the public key in: %q\n", "DIR/"+publishPublicKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  start                       (run)     - just run the program, same as no arguments\n")
		fmt.Printf("                                          for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                 (cfg)     - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  tip                                   - display the last indexed block\n")
		fmt.Printf("\n")

		fmt.Printf("  rollback [COUNT]            (rb)      - undo the last COUNT blocks, default 1\n")
		fmt.Printf("\n")

		fmt.Printf("  prune                                 - drop rollback data older than the keep depth\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {
	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the index database is open so these commands can access and/or
// change it
func processDataCommand(log *logger.L, arguments []string, p *processor.Processor) bool {
	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "start", "run":
		return false // continue processing

	case "tip":
		printTip(p)

	case "rollback", "rb":
		count := uint64(1)
		if len(arguments) > 0 {
			n, err := strconv.ParseUint(arguments[0], 10, 64)
			if nil != err {
				exitwithstatus.Message("error in count: %s", err)
			}
			count = n
		}
		for i := uint64(0); i < count; i += 1 {
			err := p.Rollback()
			if fault.ErrEmptyChain == err {
				fmt.Printf("chain is empty after: %d blocks\n", i)
				break
			}
			if nil != err {
				log.Errorf("rollback error: %s", err)
				exitwithstatus.Message("rollback error: %s", err)
			}
		}
		printTip(p)

	case "prune":
		if err := p.Prune(); nil != err {
			log.Errorf("prune error: %s", err)
			exitwithstatus.Message("prune error: %s", err)
		}

	default:
		exitwithstatus.Message("error: no such command: %q", command)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

func printTip(p *processor.Processor) {
	tip, err := p.Tip()
	if nil != err {
		exitwithstatus.Message("tip error: %s", err)
	}
	if nil == tip {
		fmt.Printf("no blocks indexed\n")
		return
	}
	s, err := json.MarshalIndent(tip, "", "  ")
	if nil != err {
		exitwithstatus.Message("tip JSON error: %s", err)
	}
	fmt.Printf("%s\n", s)
}

func getFilenameWithDirectory(arguments []string, name string) string {
	dir := "."
	if len(arguments) >= 1 {
		dir = arguments[0]
	}
	return filepath.Join(dir, name)
}
