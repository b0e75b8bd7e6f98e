package player

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/reelmark-cli/reelmark/log"
)

// EventCallback is the function signature for mpv event notifications.
// Property changes arrive as (property, value); other events as (event name, raw event).
type EventCallback func(name string, data any)

// ObservedProperties are the mpv properties an EventListener subscribes to.
var ObservedProperties = []string{"time-pos", "duration", "pause", "eof-reached"}

// EventListener provides real-time mpv event monitoring via observe_property.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	stopCh     chan struct{}
	done       chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
	}
}

// Start opens a dedicated connection, subscribes to ObservedProperties on it and starts the read loop.
// mpv scopes observers to the connection that registered them.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range ObservedProperties {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.stopCh = make(chan struct{})
	el.done = make(chan struct{})
	el.listening = true

	go el.readLoop(conn, el.stopCh, el.done)

	log.Infof("mpv event listener started on %s (observing: %v)", el.socketPath, ObservedProperties)
	return nil
}

// Stop terminates the event listener and waits for its read loop to return.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}

	close(el.stopCh)
	_ = el.conn.Close()
	el.listening = false
	done := el.done
	el.mu.Unlock()

	<-done
}

// readLoop reads newline-delimited JSON events until stopped or the connection fails.
func (el *EventListener) readLoop(conn net.Conn, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	buf := make([]byte, readBufSize)
	var remainder []byte

	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			select {
			case <-stop:
			default:
				log.Warnf("event listener read error: %v", err)
			}
			return
		}

		remainder = el.consume(append(remainder, buf[:n]...))
	}
}

// consume dispatches every complete line in data and returns the unterminated tail.
func (el *EventListener) consume(data []byte) []byte {
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return data
		}

		line := bytes.TrimSpace(data[:i])
		data = data[i+1:]
		if len(line) > 0 {
			el.processEvent(line)
		}
	}
}

// processEvent parses and dispatches a single mpv event JSON line.
// Command replies carry no "event" field and are skipped.
func (el *EventListener) processEvent(line []byte) {
	if el.callback == nil {
		return
	}

	var event map[string]any
	if err := json.Unmarshal(line, &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return
	}

	if eventType == "property-change" {
		if name, _ := event["name"].(string); name != "" {
			el.callback(name, event["data"])
		}
		return
	}

	el.callback(eventType, event)
}
