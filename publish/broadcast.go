// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"encoding/json"
	"time"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/cellindexd/messagebus"
	"github.com/bitmark-inc/cellindexd/zmqutil"
)

const (
	heartbeatTopic    = "heart"
	heartbeatInterval = 60 * time.Second
	zapDomain         = "publish"
)

type broadcaster struct {
	log     *logger.L
	socket  *zmq.Socket
	events  *messagebus.Queue
	version string
}

func (brdc *broadcaster) initialise(privateKey []byte, publicKey []byte, broadcast []string, events *messagebus.Queue, version string) error {
	log := logger.New("broadcaster")
	brdc.log = log
	brdc.events = events
	brdc.version = version

	log.Info("initialising…")

	socket, err := zmqutil.NewBind(log, zmq.PUB, zapDomain, privateKey, publicKey, broadcast)
	if nil != err {
		log.Errorf("bind error: %s", err)
		return err
	}
	brdc.socket = socket
	return nil
}

// Run - implements background.Process
func (brdc *broadcaster) Run(args interface{}, shutdown <-chan struct{}) {
	log := brdc.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case item := <-brdc.events.Chan():
			if err := brdc.send(item); nil != err {
				log.Errorf("send error: %s", err)
			}

		case <-time.After(heartbeatInterval):
			if _, err := brdc.socket.SendMessage(heartbeatTopic, brdc.version); nil != err {
				log.Errorf("heartbeat error: %s", err)
			}
		}
	}

	brdc.socket.Close()
	log.Info("shutting down…")
	log.Flush()
}

// each message is [topic, JSON item]
func (brdc *broadcaster) send(item messagebus.Message) error {
	data, err := json.Marshal(item.Item)
	if nil != err {
		return err
	}
	brdc.log.Debugf("topic: %s  data: %s", item.From, data)
	_, err = brdc.socket.SendMessage(item.From, data)
	return err
}
