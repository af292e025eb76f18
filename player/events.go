package player

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/storyplay/storyplay/log"
)

// propertyCallback receives mpv property changes and other events.
type propertyCallback func(name string, data interface{})

// eventListener keeps one connection open to mpv and forwards observed property changes.
// Observers are registered on that same connection, because mpv only notifies the client
// that asked.
type eventListener struct {
	conn     net.Conn
	callback propertyCallback
	done     chan struct{}
	once     sync.Once
}

// listen connects to socketPath and observes the given properties.
func listen(socketPath string, callback propertyCallback, properties ...string) (*eventListener, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range properties {
		payload, err := encodeCommand([]interface{}{"observe_property", i + 1, name})
		if err == nil {
			_, err = conn.Write(payload)
		}
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el := &eventListener{
		conn:     conn,
		callback: callback,
		done:     make(chan struct{}),
	}
	go el.readLoop()

	return el, nil
}

// Done is closed when the read loop stops.
func (el *eventListener) Done() <-chan struct{} {
	return el.done
}

// Stop closes the connection, which ends the read loop.
func (el *eventListener) Stop() {
	el.once.Do(func() {
		_ = el.conn.Close()
	})
}

// readLoop reads newline-delimited JSON messages until the connection closes.
func (el *eventListener) readLoop() {
	defer close(el.done)

	reader := bufio.NewReader(el.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			el.processEvent(line)
		}
		if err != nil {
			log.Debugf("mpv event listener stopped: %v", err)
			return
		}
	}
}

// processEvent parses and dispatches a single mpv message. Command replies are ignored.
func (el *eventListener) processEvent(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || el.callback == nil {
		return
	}

	var event map[string]interface{}
	if err := json.Unmarshal(line, &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return
	}

	switch eventType {
	case "property-change":
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
	default:
		el.callback(eventType, event)
	}
}
