// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/cellindexd/storage"
)

type metadata struct {
	store    storage.Store
	snapshot storage.Snapshot
	verbose  bool
	e        io.Writer
	w        io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	// only critical messages, stdout is reserved for results
	logging := logger.Configuration{
		Directory: os.TempDir(),
		File:      "cellindex-cli.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		fmt.Fprintf(os.Stderr, "logger setup failed with error: %s\n", err)
		os.Exit(1)
	}

	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	logger.Finalise()
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "cellindex-cli"
	app.Usage = "query a cell index database"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "database, d",
			Value: "",
			Usage: "*index database `DIRECTORY`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "tip",
			Usage:     "last indexed block",
			ArgsUsage: "\n   (* = required)",
			Action:    runTip,
		},
		{
			Name:      "balance",
			Usage:     "native balance of a lock",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "lock-hash, l",
					Value: "",
					Usage: "*lock script `HASH`",
				},
			},
			Action: runBalance,
		},
		{
			Name:      "token-balance",
			Usage:     "token balances of a token type",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "type-hash, t",
					Value: "",
					Usage: "*token type script `HASH`",
				},
				cli.StringFlag{
					Name:  "lock-hash, l",
					Value: "",
					Usage: " only this lock script `HASH`",
				},
				cli.IntFlag{
					Name:  "count, c",
					Value: 20,
					Usage: " maximum number of balances `COUNT`",
				},
			},
			Action: runTokenBalance,
		},
		{
			Name:      "cells",
			Usage:     "live deposit and claim cells of a key hash",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "key-hash, k",
					Value: "",
					Usage: "*20 byte key `HASH`",
				},
			},
			Action: runCells,
		},
		{
			Name:      "maturity",
			Usage:     "matured and immature cellbase rewards of a lock",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "lock-hash, l",
					Value: "",
					Usage: "*lock script `HASH`",
				},
			},
			Action: runMaturity,
		},
		{
			Name:      "allowed",
			Usage:     "membership of a key in a rule list",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "args, a",
					Value: "",
					Usage: "*rule list type script args `HEX`",
				},
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "*member key `HASH`",
				},
			},
			Action: runAllowed,
		},
		{
			Name:      "transaction",
			Usage:     "block containing a transaction",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "hash, t",
					Value: "",
					Usage: "*transaction `HASH`",
				},
			},
			Action: runTransaction,
		},
		{
			Name:      "script",
			Usage:     "lock script by its 20 byte short hash",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "short-hash, s",
					Value: "",
					Usage: "*script short `HASH`",
				},
			},
			Action: runScript,
		},
		{
			Name:      "cell",
			Usage:     "a live cell by out-point",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "tx-hash, t",
					Value: "",
					Usage: "*transaction `HASH`",
				},
				cli.IntFlag{
					Name:  "index, i",
					Value: 0,
					Usage: " output `INDEX`",
				},
			},
			Action: runCell,
		},
		{
			Name:  "version",
			Usage: "display cellindex-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// open the database
	app.Before = func(c *cli.Context) error {
		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress opening the database for certain commands
		command := c.Args().Get(0)
		if "" == command || "version" == command || "help" == command || "h" == command {
			return nil
		}

		directory := c.GlobalString("database")
		if "" == directory {
			return fmt.Errorf("database directory is required")
		}
		if verbose {
			fmt.Fprintf(e, "database: %q\n", directory)
		}

		store, err := storage.Open(directory, storage.ReadOnly)
		if nil != err {
			return err
		}
		snapshot, err := store.Snapshot()
		if nil != err {
			store.Close()
			return err
		}

		c.App.Metadata["config"] = &metadata{
			store:    store,
			snapshot: snapshot,
			verbose:  verbose,
			e:        e,
			w:        w,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		m.snapshot.Release()
		return m.store.Close()
	}

	return app
}
