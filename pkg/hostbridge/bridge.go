// Package hostbridge is the embedding surface for simulation hosts. A host
// calls the bridge with colon-delimited commands and string argument
// arrays; responses are returned synchronously, while session lifecycle
// acknowledgements arrive on the callback channel.
package hostbridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/virtualrange/weaponsim/internal/dispatcher"
)

// Callback is an asynchronous message for the host, such as the
// session-start acknowledgement that tells it to begin sending data.
type Callback struct {
	Command string
	Data    []string
}

// Bridge routes host commands to the dispatcher. It is safe for
// concurrent use by multiple host threads.
type Bridge struct {
	version    string
	dispatcher *dispatcher.Dispatcher
	callbacks  chan Callback
}

// New creates a bridge. callbackBuffer bounds the number of undelivered
// callbacks; Write fails once the host stops draining them.
func New(version string, d *dispatcher.Dispatcher, callbackBuffer int) *Bridge {
	if callbackBuffer <= 0 {
		callbackBuffer = 64
	}
	return &Bridge{
		version:    version,
		dispatcher: d,
		callbacks:  make(chan Callback, callbackBuffer),
	}
}

// Version returns the bridge version string. Hosts call this first as a
// handshake before sending commands.
func (b *Bridge) Version() string {
	return b.version
}

// Call handles a bare command with no argument array. The command may
// carry pipe-delimited inline arguments for hosts that cannot send
// arrays.
func (b *Bridge) Call(command string) string {
	if command == ":TIMESTAMP:" {
		return getTimestamp()
	}

	parts := strings.Split(command, "|")
	return b.CallArgs(parts[0], parts[1:])
}

// CallArgs handles a command with a string argument array.
func (b *Bridge) CallArgs(command string, args []string) string {
	if b.dispatcher == nil || !b.dispatcher.HasHandler(command) {
		return fmt.Sprintf(`["error", "no handler registered for %s"]`, command)
	}

	event := dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	}

	result, err := b.dispatcher.Dispatch(event)
	return formatDispatchResponse(command, result, err)
}

// Write queues an asynchronous callback for the host. It implements the
// session manager's CallbackWriter.
func (b *Bridge) Write(command string, data ...string) error {
	select {
	case b.callbacks <- Callback{Command: command, Data: data}:
		return nil
	default:
		return fmt.Errorf("callback buffer full, dropping %s", command)
	}
}

// Callbacks returns the channel the host drains for asynchronous
// messages.
func (b *Bridge) Callbacks() <-chan Callback {
	return b.callbacks
}

// formatDispatchResponse formats the dispatcher result for the host.
func formatDispatchResponse(command string, result any, err error) string {
	if err != nil {
		return fmt.Sprintf(`["error", "%s"]`, err.Error())
	}
	if result == nil {
		return `["ok"]`
	}
	if s, ok := result.(string); ok {
		return fmt.Sprintf(`["ok", "%s"]`, s)
	}
	encoded, jsonErr := json.Marshal(result)
	if jsonErr != nil {
		return fmt.Sprintf(`["error", "failed to encode result: %s"]`, jsonErr.Error())
	}
	return fmt.Sprintf(`["ok", %s]`, string(encoded))
}

func getTimestamp() string {
	return fmt.Sprintf("%d", time.Now().UTC().UnixNano())
}
