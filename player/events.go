package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/hlsplay/hlsplay/log"
	"golang.org/x/time/rate"
)

var observedProperties = []string{"time-pos", "pause", "eof-reached"}

// eventListener holds a persistent mpv connection. Property observers are
// scoped to the client that registered them, so they are sent on that same
// connection before reading.
type eventListener struct {
	conn    net.Conn
	limiter *rate.Limiter
	emit    func(Event)
	done    chan struct{}
	once    sync.Once
}

func newEventListener(socketPath string, updatesPerSecond int, emit func(Event)) (*eventListener, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("event listener connect: %w", err)
	}

	limit := rate.Inf
	if updatesPerSecond > 0 {
		limit = rate.Limit(updatesPerSecond)
	}

	el := &eventListener{
		conn:    conn,
		limiter: rate.NewLimiter(limit, 1),
		emit:    emit,
		done:    make(chan struct{}),
	}

	for i, name := range observedProperties {
		payload, err := encodeCommand(nextRequestID(), []any{"observe_property", i + 1, name})
		if err != nil {
			_ = conn.Close()
			return nil, err
		}

		if _, err := conn.Write(payload); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	go el.readLoop()

	log.Infof("mpv event listener started on %s", socketPath)
	return el, nil
}

func (el *eventListener) readLoop() {
	defer close(el.done)

	scanner := bufio.NewScanner(el.conn)
	for scanner.Scan() {
		event, ok := decodeEvent(scanner.Bytes())
		if !ok {
			continue
		}

		if event.Kind == TimeUpdated && !el.limiter.Allow() {
			continue
		}

		el.emit(event)
	}

	if err := scanner.Err(); err != nil {
		log.Debugf("mpv event listener stopped: %v", err)
	}
}

func (el *eventListener) Stop() {
	el.once.Do(func() {
		_ = el.conn.Close()
		<-el.done
	})
}

// decodeEvent maps an mpv property-change line onto an element event.
// Replies to our own commands and unrelated events are skipped.
func decodeEvent(line []byte) (Event, bool) {
	var msg ipcMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return Event{}, false
	}

	if msg.Event != "property-change" {
		return Event{}, false
	}

	switch msg.Name {
	case "time-pos":
		// nil while nothing is loaded
		seconds, ok := msg.Data.(float64)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: TimeUpdated, Seconds: seconds}, true
	case "pause":
		paused, ok := msg.Data.(bool)
		if !ok {
			return Event{}, false
		}
		if paused {
			return Event{Kind: Paused}, true
		}
		return Event{Kind: Played}, true
	case "eof-reached":
		if reached, ok := msg.Data.(bool); ok && reached {
			return Event{Kind: Paused}, true
		}
	}

	return Event{}, false
}
