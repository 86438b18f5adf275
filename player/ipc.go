package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcMessage is any line mpv writes to a client: a reply carries request_id,
// an event carries event.
type ipcMessage struct {
	Data      any    `json:"data"`
	Error     string `json:"error"`
	RequestID int64  `json:"request_id"`
	Event     string `json:"event"`
	Name      string `json:"name"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = time.Second
)

var requestID atomic.Int64

func nextRequestID() int64 {
	return requestID.Add(1)
}

func encodeCommand(id int64, command []any) ([]byte, error) {
	payload, err := json.Marshal(ipcCommand{Command: command, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	return append(payload, '\n'), nil
}

// sendCommand runs a single mpv command, retrying transient socket failures.
func (m *MPV) sendCommand(command ...any) (any, error) {
	m.ipcMu.Lock()
	defer m.ipcMu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(m.socketPath, command)
		if err == nil {
			return result, nil
		}

		if _, ok := err.(mpvError); ok {
			// mpv understood and refused; retrying will not help
			return nil, err
		}

		lastErr = err
	}

	return nil, fmt.Errorf("ipc command %v failed after %d attempts: %w", command[0], maxRetries, lastErr)
}

// mpvError is a refusal reported by mpv itself.
type mpvError string

func (e mpvError) Error() string {
	return "mpv: " + string(e)
}

func doSendCommand(socketPath string, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	id := nextRequestID()
	payload, err := encodeCommand(id, command)
	if err != nil {
		return nil, err
	}

	if _, err = conn.Write(payload); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	// mpv broadcasts some events to every client, so skip lines until our reply shows up
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		reply, ok := decodeReply(scanner.Bytes(), id)
		if !ok {
			continue
		}

		if reply.Error != "" && reply.Error != "success" {
			return nil, mpvError(reply.Error)
		}

		return reply.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return nil, fmt.Errorf("read: connection closed before reply")
}

// decodeReply reports whether line is the reply to request id.
func decodeReply(line []byte, id int64) (ipcMessage, bool) {
	var msg ipcMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return msg, false
	}

	if msg.Event != "" || msg.RequestID != id {
		return msg, false
	}

	return msg, true
}
