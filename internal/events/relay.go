package events

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSRelay mirrors broadcast events onto NATS subjects so consumers outside
// the websocket fan-out (stream overlays, loggers) can tap the same stream.
// Publishing is best-effort: the websocket broadcast stays authoritative and
// a relay failure must never delay it.
type NATSRelay struct {
	nc            *nats.Conn
	subjectPrefix string
}

// NewNATSRelay connects to the given NATS URL. Subjects are formed as
// <prefix>.<event type with ':' replaced by '.'>, e.g. match.events.timer.start.
func NewNATSRelay(url, subjectPrefix string) (*NATSRelay, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSRelay{nc: nc, subjectPrefix: subjectPrefix}, nil
}

// Publish implements Sink.
func (r *NATSRelay) Publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_type", ev.Type).Msg("failed to marshal event for relay")
		return
	}

	subject := r.subjectPrefix + "." + strings.ReplaceAll(ev.Type, ":", ".")
	if err := r.nc.Publish(subject, payload); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("failed to relay event to NATS")
	}
}

// Close drains the connection.
func (r *NATSRelay) Close() {
	if err := r.nc.Drain(); err != nil {
		log.Warn().Err(err).Msg("failed to drain NATS connection")
	}
}
