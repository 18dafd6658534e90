// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type InvariantError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised     = ExistsError("already initialised")
	ErrBalanceOverflow        = InvariantError("balance overflow")
	ErrBatchClosed            = ProcessError("batch is closed")
	ErrBatchInUse             = ProcessError("batch already in use")
	ErrBlockNotFound          = NotFoundError("block not found")
	ErrBlockNotLinked         = InvalidError("block does not extend the current tip")
	ErrCellAlreadyInSet       = InvariantError("cell already in set")
	ErrCellNotFound           = NotFoundError("cell not found")
	ErrCellNotInSet           = InvariantError("cell not in set")
	ErrDatabaseVersion        = InvalidError("database version mismatch")
	ErrDuplicateNamespace     = ExistsError("duplicate namespace")
	ErrEmptyChain             = NotFoundError("no blocks have been indexed")
	ErrInvalidBlockKey        = InvalidError("invalid block key")
	ErrInvalidCount           = InvalidError("invalid count")
	ErrInvalidDigest          = InvalidError("invalid digest")
	ErrInvalidIPAddress       = InvalidError("invalid IP address")
	ErrInvalidLength          = InvalidError("invalid length")
	ErrInvalidLoggerChannel   = ProcessError("invalid logger channel")
	ErrInvalidMolecule        = InvalidError("invalid molecule encoding")
	ErrInvalidPortNumber      = InvalidError("invalid port number")
	ErrInvalidPrivateKeyFile  = InvalidError("invalid private key file")
	ErrInvalidPublicKeyFile   = InvalidError("invalid public key file")
	ErrInvalidRecord          = InvalidError("invalid record")
	ErrInvalidScriptPattern   = InvalidError("invalid script pattern")
	ErrInvalidWitness         = InvalidError("invalid witness")
	ErrKeyFileAlreadyExists   = ExistsError("key file already exists")
	ErrMaturityQueueMismatch  = InvariantError("maturity queue does not match due entry")
	ErrNegativeBalance        = InvariantError("balance would become negative")
	ErrNoBroadcastAddress     = InvalidError("no broadcast address")
	ErrNotInitialised         = NotFoundError("not initialised")
	ErrReadOnly               = ProcessError("store is read only")
	ErrRollbackRecordNotFound = NotFoundError("rollback record not found")
	ErrUnknownExtension       = NotFoundError("unknown extension")
)

// Error - the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string    { return string(e) }
func (e InvalidError) Error() string   { return string(e) }
func (e InvariantError) Error() string { return string(e) }
func (e NotFoundError) Error() string  { return string(e) }
func (e ProcessError) Error() string   { return string(e) }

// determine the class of an error, looking through any wrapping
func IsErrExists(e error) bool    { var x ExistsError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool   { var x InvalidError; return errors.As(e, &x) }
func IsErrInvariant(e error) bool { var x InvariantError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool  { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool   { var x ProcessError; return errors.As(e, &x) }
