// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish_test

import (
	"encoding/json"
	"testing"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/cellindexd/blockdigest"
	"github.com/bitmark-inc/cellindexd/fault"
	"github.com/bitmark-inc/cellindexd/messagebus"
	"github.com/bitmark-inc/cellindexd/processor"
	"github.com/bitmark-inc/cellindexd/publish"
)

const broadcastAddress = "tcp://127.0.0.1:25871"

func TestInitialiseErrors(t *testing.T) {
	err := publish.Finalise()
	assert.Equal(t, fault.ErrNotInitialised, err, "finalise before initialise")

	events := messagebus.NewQueue(10)
	err = publish.Initialise(&publish.Configuration{}, events, "test")
	assert.Equal(t, fault.ErrNoBroadcastAddress, err, "no address")

	config := &publish.Configuration{
		Broadcast:  []string{broadcastAddress},
		PrivateKey: "absent.private",
		PublicKey:  "absent.public",
	}
	err = publish.Initialise(config, events, "test")
	assert.NotNil(t, err, "absent key files")
}

func TestBroadcast(t *testing.T) {
	events := messagebus.NewQueue(10)
	config := &publish.Configuration{
		Broadcast: []string{broadcastAddress},
	}
	err := publish.Initialise(config, events, "test")
	assert.Nil(t, err, "initialise error")
	defer publish.Finalise()

	err = publish.Initialise(config, events, "test")
	assert.Equal(t, fault.ErrAlreadyInitialised, err, "second initialise")

	subscriber, err := zmq.NewSocket(zmq.SUB)
	assert.Nil(t, err, "socket error")
	defer subscriber.Close()
	subscriber.SetLinger(0)
	subscriber.SetRcvtimeo(100 * time.Millisecond)
	assert.Nil(t, subscriber.SetSubscribe(processor.Name), "subscribe error")
	assert.Nil(t, subscriber.Connect(broadcastAddress), "connect error")

	event := processor.Event{
		Action: processor.Appended,
		Number: 12,
		Hash:   blockdigest.NewDigest([]byte("block 12")),
	}

	// a subscriber misses messages sent before it has joined
	var parts [][]byte
	for i := 0; i < 50 && nil == parts; i += 1 {
		events.Send(processor.Name, event)
		parts, _ = subscriber.RecvMessageBytes(0)
	}

	if !assert.Equal(t, 2, len(parts), "message parts") {
		return
	}
	assert.Equal(t, processor.Name, string(parts[0]), "topic")

	received := processor.Event{}
	assert.Nil(t, json.Unmarshal(parts[1], &received), "unmarshal error")
	assert.Equal(t, event, received, "event")
}
