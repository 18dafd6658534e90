// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zmqutil - curve keys and server sockets for ZeroMQ
package zmqutil

import (
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/cellindexd/fault"
)

const (
	heartbeatInterval = 15 * time.Second
	heartbeatTimeout  = 60 * time.Second
	heartbeatTTL      = 120 * time.Second

	lingerTime = 250 * time.Millisecond
)

// NewBind - one socket bound to every address ("tcp://host:port")
//
// an empty private key gives a plain text socket, otherwise the
// socket is a curve server accepting any client
func NewBind(log *logger.L, socketType zmq.Type, zapDomain string, privateKey []byte, publicKey []byte, listen []string) (*zmq.Socket, error) {
	if 0 == len(listen) {
		return nil, fault.ErrNoBroadcastAddress
	}

	socket, err := NewServerSocket(socketType, zapDomain, privateKey, publicKey)
	if nil != err {
		return nil, err
	}

	for i, address := range listen {
		if strings.Contains(address, "[") {
			socket.SetIpv6(true)
		}
		if err := socket.Bind(address); nil != err {
			log.Errorf("cannot bind[%d]: %q  error: %s", i, address, err)
			socket.Close()
			return nil, err
		}
		log.Infof("bind[%d]: %q", i, address)
	}
	return socket, nil
}

// NewServerSocket - create a socket suitable for a server side connection
func NewServerSocket(socketType zmq.Type, zapDomain string, privateKey []byte, publicKey []byte) (*zmq.Socket, error) {
	socket, err := zmq.NewSocket(socketType)
	if nil != err {
		return nil, err
	}

	socket.SetLinger(lingerTime)

	if 0 != len(privateKey) {
		// allow any client to connect
		zmq.AuthCurveAdd(zapDomain, zmq.CURVE_ALLOW_ANY)

		socket.SetCurveServer(1)
		socket.SetCurveSecretkey(string(privateKey))
		socket.SetZapDomain(zapDomain)
		socket.SetIdentity(string(publicKey))
	}

	socket.SetHeartbeatIvl(heartbeatInterval)
	socket.SetHeartbeatTimeout(heartbeatTimeout)
	socket.SetHeartbeatTtl(heartbeatTTL)

	return socket, nil
}
