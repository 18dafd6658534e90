// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/background"
	"github.com/bitmark-inc/cellindexd/blocksource"
	"github.com/bitmark-inc/cellindexd/configuration"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/messagebus"
	"github.com/bitmark-inc/cellindexd/processor"
	"github.com/bitmark-inc/cellindexd/publish"
	"github.com/bitmark-inc/cellindexd/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "memory-stats", HasArg: getoptions.NO_ARGUMENT, Short: 'm'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	config, err := configuration.ExtensionConfig(theConfiguration.Index.Scripts, theConfiguration.Index.MaturityEpochs)
	if nil != err {
		exitwithstatus.Message("%s: invalid scripts in: %q  error: %s", program, configurationFile, err)
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0o600)
		if nil != err {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	log.Infof("database: %q", theConfiguration.Database.Name)
	log.Infof("blocks: %q", theConfiguration.Blocks.Directory)
	log.Infof("keep depth: %d  prune interval: %d", theConfiguration.Index.KeepDepth, theConfiguration.Index.PruneInterval)
	log.Debugf("%s = %#v", "Publishing", theConfiguration.Publishing)

	// start the data storage
	log.Info("initialise storage")
	store, err := storage.Open(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer store.Close()

	extensions, err := makeExtensions(store, config, theConfiguration.Index.Extensions)
	if nil != err {
		log.Criticalf("extensions initialise error: %s", err)
		exitwithstatus.Message("extensions initialise error: %s", err)
	}
	for _, e := range extensions {
		log.Infof("extension: %s  namespace: %s", e.Name(), e.Namespace())
	}

	events := messagebus.NewQueue(theConfiguration.EventQueue)

	log.Info("initialise processor")
	p, err := processor.New(store, theConfiguration.Index.KeepDepth, events, extensions...)
	if nil != err {
		log.Criticalf("processor initialise error: %s", err)
		exitwithstatus.Message("processor initialise error: %s", err)
	}

	// these commands are allowed to access the internal database
	if len(arguments) > 0 && processDataCommand(log, arguments, p) {
		return
	}

	if tip, err := p.Tip(); nil != err {
		log.Criticalf("read tip error: %s", err)
		exitwithstatus.Message("read tip error: %s", err)
	} else if nil != tip {
		log.Infof("resume after block: %d  hash: %s", tip.Number, tip.Hash)
	}

	source, err := blocksource.New(theConfiguration.Blocks.Directory)
	if nil != err {
		log.Criticalf("block source initialise error: %s", err)
		exitwithstatus.Message("block source initialise error: %s", err)
	}

	// start up the publishing background processes
	if 0 != len(theConfiguration.Publishing.Broadcast) {
		err = publish.Initialise(&theConfiguration.Publishing, events, version)
		if nil != err {
			log.Criticalf("publish initialise error: %s", err)
			exitwithstatus.Message("publish initialise error: %s", err)
		}
		defer publish.Finalise()
	}

	syncer := processor.NewSyncer(p, source, theConfiguration.Blocks.PollRate, theConfiguration.Blocks.Burst, theConfiguration.Index.PruneInterval)
	processes := background.Start(background.Processes{source, syncer}, nil)
	defer processes.Stop()

	// if memory logging enabled
	if len(options["memory-stats"]) > 0 {
		go memstats(events)
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
