// Package events defines the wire envelope shared by the websocket gateway
// and the NATS relay, and the server-to-client event vocabulary.
package events

// Server-to-client event types.
const (
	TypeTimerStart  = "timer:start"
	TypeTimerPause  = "timer:pause"
	TypeTimerResume = "timer:resume"
	TypeTimerStop   = "timer:stop"
	TypeMatchInfo   = "match:info"
	TypeGoalScored  = "goal:scored"
	TypeCommandAck  = "command:ack"
)

// Event is the envelope every realtime message travels in, both over the
// websocket fan-out and the NATS relay.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Sink receives every event the coordinator decides to broadcast.
type Sink interface {
	Publish(Event)
}

// TimerPayload carries the remaining seconds for start/pause/resume signals.
type TimerPayload struct {
	Seconds int `json:"seconds"`
}

// GoalScoredPayload names the scorer for transient goal banners.
type GoalScoredPayload struct {
	Player string `json:"player"`
	Team   string `json:"team"`
}

// AckPayload is the per-connection acknowledgement for an admin command.
// Applied is false when the command was ignored; Reason says why.
type AckPayload struct {
	Command string `json:"command"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// TimerStart signals a fresh countdown from the given seconds.
func TimerStart(seconds int) Event {
	return Event{Type: TypeTimerStart, Data: TimerPayload{Seconds: clamp(seconds)}}
}

// TimerPause freezes the countdown at the given seconds.
func TimerPause(seconds int) Event {
	return Event{Type: TypeTimerPause, Data: TimerPayload{Seconds: clamp(seconds)}}
}

// TimerResume restarts the countdown from the given seconds.
func TimerResume(seconds int) Event {
	return Event{Type: TypeTimerResume, Data: TimerPayload{Seconds: clamp(seconds)}}
}

// TimerStop blanks the scoreboard clock.
func TimerStop() Event {
	return Event{Type: TypeTimerStop}
}

// GoalScored announces a goal for transient display.
func GoalScored(player, team string) Event {
	return Event{Type: TypeGoalScored, Data: GoalScoredPayload{Player: player, Team: team}}
}

// Ack acknowledges an applied command.
func Ack(command string) Event {
	return Event{Type: TypeCommandAck, Data: AckPayload{Command: command, Applied: true}}
}

// Nack reports an ignored command with the reason it was ignored.
func Nack(command, reason string) Event {
	return Event{Type: TypeCommandAck, Data: AckPayload{Command: command, Reason: reason}}
}

// Viewers render a stopped clock for overruns; never send negative seconds.
func clamp(seconds int) int {
	if seconds < 0 {
		return 0
	}
	return seconds
}
