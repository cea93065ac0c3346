package gateway

import (
	"encoding/json"
	"errors"

	"github.com/pitchside/server/internal/live"
)

// clientMessage is the inbound wire envelope, the mirror of events.Event.
type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseClientMessage decodes an inbound frame into a coordinator command.
// The payload stays raw; each command handler decodes its own shape.
func ParseClientMessage(raw []byte) (live.Command, error) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return live.Command{}, err
	}
	if msg.Type == "" {
		return live.Command{}, errors.New("message has no type")
	}
	return live.Command{Type: msg.Type, Data: msg.Data}, nil
}
