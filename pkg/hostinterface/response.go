package hostinterface

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/sailnavsim/advancedboats/internal/dispatcher"
)

// ErrNotInitialized is returned for commands that arrive before a dispatcher
// is installed.
var ErrNotInitialized = errors.New("library not initialized")

// Execute dispatches one text command and returns the host reply.
func Execute(command string, args []string) string {
	d := GetDispatcher()
	if d == nil {
		return formatResponse(nil, ErrNotInitialized)
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return formatResponse(result, err)
}

// formatResponse renders a reply as a JSON array: ["ok"], ["ok", value] or
// ["error", message].
func formatResponse(result any, err error) string {
	if err != nil {
		return `["error", ` + quote(err.Error()) + `]`
	}
	if result == nil {
		return `["ok"]`
	}

	data, err := json.Marshal(result)
	if err != nil {
		return `["error", ` + quote("encoding reply: "+err.Error()) + `]`
	}
	return `["ok", ` + string(data) + `]`
}

func quote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// truncate cuts s to fit a buffer of size bytes including the terminating NUL,
// never splitting a UTF-8 sequence.
func truncate(s string, size int) string {
	if size <= 0 {
		return ""
	}
	if len(s) < size {
		return s
	}
	cut := size - 1
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
