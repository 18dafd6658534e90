// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/cellindexd/configuration"
	"github.com/bitmark-inc/cellindexd/messagebus"
	"github.com/bitmark-inc/cellindexd/publish"
	"github.com/bitmark-inc/cellindexd/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "cells.leveldb"
	defaultBlockDirectory   = "blocks"

	defaultKeepDepth     = 100
	defaultPruneInterval = 100
	defaultPollRate      = 200.0
	defaultPollBurst     = 50

	defaultLogDirectory = "log"
	defaultLogFile      = "cellindexd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - location of the index database
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// BlocksType - where blocks arrive and how fast they are consumed
type BlocksType struct {
	Directory string  `gluamapper:"directory" json:"directory"`
	PollRate  float64 `gluamapper:"poll_rate" json:"poll_rate"`
	Burst     int     `gluamapper:"burst" json:"burst"`
}

// IndexType - rollback window, script identities and enabled indexes
type IndexType struct {
	KeepDepth      uint64                          `gluamapper:"keep_depth" json:"keep_depth"`
	PruneInterval  uint64                          `gluamapper:"prune_interval" json:"prune_interval"`
	MaturityEpochs uint64                          `gluamapper:"maturity_epochs" json:"maturity_epochs"`
	Scripts        map[string]configuration.Script `gluamapper:"scripts" json:"scripts"`
	Extensions     []string                        `gluamapper:"extensions" json:"extensions"`
}

// Configuration - the daemon configuration file
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string       `gluamapper:"pidfile" json:"pidfile"`
	EventQueue    int          `gluamapper:"event_queue" json:"event_queue"`
	Database      DatabaseType `gluamapper:"database" json:"database"`
	Blocks        BlocksType   `gluamapper:"blocks" json:"blocks"`
	Index         IndexType    `gluamapper:"index" json:"index"`

	Publishing publish.Configuration `gluamapper:"publishing" json:"publishing"`
	Logging    logger.Configuration  `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {
	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		EventQueue:    messagebus.DefaultQueueSize,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Blocks: BlocksType{
			Directory: defaultBlockDirectory,
			PollRate:  defaultPollRate,
			Burst:     defaultPollBurst,
		},

		Index: IndexType{
			KeepDepth:     defaultKeepDepth,
			PruneInterval: defaultPruneInterval,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	if options.EventQueue <= 0 {
		return nil, fmt.Errorf("event queue: %d must be positive", options.EventQueue)
	}
	if err := checkExtensionNames(options.Index.Extensions); nil != err {
		return nil, err
	}
	if options.Blocks.PollRate <= 0 || options.Blocks.Burst <= 0 {
		return nil, fmt.Errorf("blocks: poll rate: %f and burst: %d must be positive", options.Blocks.PollRate, options.Blocks.Burst)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Blocks.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	// blank publishing keys select plain text
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.Publishing.PublicKey,
		&options.Publishing.PrivateKey,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// publishing addresses are IP:port
	for i, address := range options.Publishing.Broadcast {
		canonical, err := util.CanonicalIPandPort("tcp://", address)
		if nil != err {
			return nil, fmt.Errorf("broadcast[%d]: %q  error: %s", i, address, err)
		}
		options.Publishing.Broadcast[i] = canonical
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Blocks.Directory,
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0o700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}
