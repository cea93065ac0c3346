package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"github.com/pitchside/server/internal/clock"
	"github.com/pitchside/server/internal/events"
	"github.com/pitchside/server/internal/matches"
	"github.com/pitchside/server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*models.Match
	goals []models.Goal
}

func newFakeStore(ms ...*models.Match) *fakeStore {
	s := &fakeStore{byID: make(map[uuid.UUID]*models.Match)}
	for _, m := range ms {
		s.byID[m.ID] = m
	}
	return s
}

func (s *fakeStore) FindLive(ctx context.Context) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.byID {
		if m.IsLive {
			clone := *m
			clone.HomeGoals = append([]models.Goal(nil), m.HomeGoals...)
			clone.AwayGoals = append([]models.Goal(nil), m.AwayGoals...)
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) SetLive(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, m := range s.byID {
		m.IsLive = false
	}
	target.IsLive = true
	return nil
}

func (s *fakeStore) UpdateLiveState(ctx context.Context, id uuid.UUID, upd matches.StateUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if upd.Status != nil {
		m.Status = *upd.Status
	}
	if upd.Stage != nil {
		m.Stage = *upd.Stage
	}
	if upd.StartTime != nil {
		t := *upd.StartTime
		m.StartTime = &t
	}
	if upd.FirstHalfElapsed != nil {
		m.FirstHalfElapsed = *upd.FirstHalfElapsed
	}
	if upd.SecondHalfElapsed != nil {
		m.SecondHalfElapsed = *upd.SecondHalfElapsed
	}
	if upd.ExtraTimeElapsed != nil {
		m.ExtraTimeElapsed = *upd.ExtraTimeElapsed
	}
	return nil
}

func (s *fakeStore) AppendGoal(ctx context.Context, req matches.AppendGoalRequest) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal := models.Goal{
		ID:        uuid.New(),
		MatchID:   req.MatchID,
		TeamID:    req.TeamID,
		PlayerID:  req.PlayerID,
		Side:      req.Side,
		IsPenalty: req.IsPenalty,
	}
	s.goals = append(s.goals, goal)
	if m, ok := s.byID[req.MatchID]; ok {
		if req.Side == models.SideHome {
			m.HomeGoals = append(m.HomeGoals, goal)
		} else {
			m.AwayGoals = append(m.AwayGoals, goal)
		}
	}
	return &goal, nil
}

func (s *fakeStore) match(id uuid.UUID) models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.byID[id]
}

func (s *fakeStore) liveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.byID {
		if m.IsLive {
			n++
		}
	}
	return n
}

func (s *fakeStore) goalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.goals)
}

type fakePlayers struct {
	byID map[uuid.UUID]*models.Player
	err  error
}

func (p *fakePlayers) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	if p.err != nil {
		return nil, p.err
	}
	if pl, ok := p.byID[id]; ok {
		return pl, nil
	}
	return nil, fmt.Errorf("failed to get player: %w", pgx.ErrNoRows)
}

type fakeSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *fakeSink) Publish(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *fakeSink) all() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.Event(nil), s.events...)
}

func (s *fakeSink) last(t *testing.T, typ string) events.Event {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Type == typ {
			return s.events[i]
		}
	}
	t.Fatalf("no %s event broadcast", typ)
	return events.Event{}
}

type harness struct {
	coord   *Coordinator
	store   *fakeStore
	players *fakePlayers
	sink    *fakeSink
	fc      *clockwork.FakeClock
	cancel  context.CancelFunc
}

var startAt = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, cfg clock.Config, ms ...*models.Match) *harness {
	t.Helper()

	store := newFakeStore(ms...)
	players := &fakePlayers{byID: make(map[uuid.UUID]*models.Player)}
	sink := &fakeSink{}
	fc := clockwork.NewFakeClockAt(startAt)

	coord := NewCoordinator(store, players, cfg, fc, sink)

	ctx, cancel := context.WithCancel(context.Background())
	go coord.Run(ctx)
	t.Cleanup(cancel)

	return &harness{coord: coord, store: store, players: players, sink: sink, fc: fc, cancel: cancel}
}

// send dispatches a command and waits for its ack, returning the ack payload
// and any other per-connection replies. Because the ack is the last event a
// command emits, receiving it means all broadcasts have been published.
func (h *harness) send(t *testing.T, cmdType string, data any) (events.AckPayload, []events.Event) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		require.NoError(t, err)
		raw = b
	}

	replies := make(chan events.Event, 16)
	err := h.coord.Dispatch(context.Background(), Command{
		Type:  cmdType,
		Data:  raw,
		Reply: func(ev events.Event) { replies <- ev },
	})
	require.NoError(t, err)

	var others []events.Event
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-replies:
			if ev.Type == events.TypeCommandAck {
				return ev.Data.(events.AckPayload), others
			}
			others = append(others, ev)
		case <-deadline:
			t.Fatalf("timed out waiting for ack of %s", cmdType)
		}
	}
}

// request dispatches a state pull (timer:request / match:request) and
// returns the single reply it produces.
func (h *harness) request(t *testing.T, cmdType string) events.Event {
	t.Helper()

	replies := make(chan events.Event, 1)
	err := h.coord.Dispatch(context.Background(), Command{
		Type:  cmdType,
		Reply: func(ev events.Event) { replies <- ev },
	})
	require.NoError(t, err)

	select {
	case ev := <-replies:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s reply", cmdType)
		return events.Event{}
	}
}

func fixture() (*models.Match, *models.Team, *models.Team) {
	home := &models.Team{ID: uuid.New(), Name: "Dynamo"}
	away := &models.Team{ID: uuid.New(), Name: "Shakhtar"}
	m := &models.Match{
		ID:         uuid.New(),
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		IsLive:     true,
		Status:     models.MatchStatusNotStarted,
		HomeTeam:   home,
		AwayTeam:   away,
	}
	return m, home, away
}

func seconds(t *testing.T, ev events.Event) int {
	t.Helper()
	payload, ok := ev.Data.(events.TimerPayload)
	require.True(t, ok, "event %s carries no timer payload", ev.Type)
	return payload.Seconds
}

func TestStartPauseResumeScenario(t *testing.T) {
	cfg := clock.Config{HalfDuration: 900, ExtraTimeDuration: 900, PenaltyShootoutDuration: 900}
	m, _, _ := fixture()
	h := newHarness(t, cfg, m)

	ack, _ := h.send(t, "match:start-firstHalf", nil)
	require.True(t, ack.Applied)
	assert.Equal(t, 900, seconds(t, h.sink.last(t, events.TypeTimerStart)))

	h.fc.Advance(300 * time.Second)
	ack, _ = h.send(t, "match:pause", nil)
	require.True(t, ack.Applied)
	assert.Equal(t, 600, seconds(t, h.sink.last(t, events.TypeTimerPause)))

	stored := h.store.match(m.ID)
	assert.Equal(t, models.MatchStatusPaused, stored.Status)
	assert.Equal(t, 300, stored.FirstHalfElapsed)

	h.fc.Advance(100 * time.Second)
	ack, _ = h.send(t, "match:resume", nil)
	require.True(t, ack.Applied)
	assert.Equal(t, 600, seconds(t, h.sink.last(t, events.TypeTimerResume)))

	stored = h.store.match(m.ID)
	assert.Equal(t, models.MatchStatusInProgress, stored.Status)
	require.NotNil(t, stored.StartTime)
	assert.Equal(t, startAt.Add(400*time.Second).Add(-300*time.Second), *stored.StartTime)

	// A viewer connecting now derives the same countdown.
	ev := h.request(t, CmdTimerRequest)
	assert.Equal(t, events.TypeTimerStart, ev.Type)
	assert.Equal(t, 600, seconds(t, ev))
}

func TestSecondPauseIsIgnored(t *testing.T) {
	m, _, _ := fixture()
	h := newHarness(t, clock.DefaultConfig(), m)

	h.send(t, "match:start-firstHalf", nil)
	h.fc.Advance(time.Minute)
	ack, _ := h.send(t, "match:pause", nil)
	require.True(t, ack.Applied)

	before := len(h.sink.all())
	stored := h.store.match(m.ID)

	ack, _ = h.send(t, "match:pause", nil)
	assert.False(t, ack.Applied)
	assert.Equal(t, "precondition not met", ack.Reason)
	assert.Len(t, h.sink.all(), before, "second pause must not broadcast")
	assert.Equal(t, stored, h.store.match(m.ID), "second pause must not change state")
}

func TestGoalAttributionFollowsStage(t *testing.T) {
	m, home, _ := fixture()
	h := newHarness(t, clock.DefaultConfig(), m)

	striker := &models.Player{ID: uuid.New(), Name: "Marchenko", TeamID: home.ID, Team: home}
	h.players.byID[striker.ID] = striker

	h.send(t, "match:start-firstHalf", nil)
	ack, _ := h.send(t, "match:make-goal", map[string]string{
		"teamId": home.ID.String(), "playerId": striker.ID.String(),
	})
	require.True(t, ack.Applied)

	h.send(t, "match:start-penaltyShootout", nil)
	ack, _ = h.send(t, "match:make-goal", map[string]string{
		"teamId": home.ID.String(), "playerId": striker.ID.String(),
	})
	require.True(t, ack.Applied)

	stored := h.store.match(m.ID)
	require.Len(t, stored.HomeGoals, 2)
	assert.False(t, stored.HomeGoals[0].IsPenalty)
	assert.True(t, stored.HomeGoals[1].IsPenalty)

	scored := h.sink.last(t, events.TypeGoalScored)
	assert.Equal(t, events.GoalScoredPayload{Player: "Marchenko", Team: "Dynamo"}, scored.Data)

	info, ok := h.sink.last(t, events.TypeMatchInfo).Data.(*Snapshot)
	require.True(t, ok)
	assert.Len(t, info.HomeTeamGoals, 2)
	assert.True(t, info.HomeTeamGoals[1].IsPenalty)
}

func TestGoalForStrangerIsDropped(t *testing.T) {
	m, home, _ := fixture()
	h := newHarness(t, clock.DefaultConfig(), m)
	h.send(t, "match:start-firstHalf", nil)

	before := len(h.sink.all())

	// Unknown player: rejected with an explicit nack, nothing persisted,
	// nothing broadcast.
	ack, _ := h.send(t, "match:make-goal", map[string]string{
		"teamId": home.ID.String(), "playerId": uuid.New().String(),
	})
	assert.False(t, ack.Applied)
	assert.Equal(t, 0, h.store.goalCount())
	assert.Len(t, h.sink.all(), before)

	// Player of a team not contesting this match.
	other := &models.Team{ID: uuid.New(), Name: "Metalist"}
	outsider := &models.Player{ID: uuid.New(), Name: "Koval", TeamID: other.ID, Team: other}
	h.players.byID[outsider.ID] = outsider

	ack, _ = h.send(t, "match:make-goal", map[string]string{
		"teamId": other.ID.String(), "playerId": outsider.ID.String(),
	})
	assert.False(t, ack.Applied)
	assert.Equal(t, 0, h.store.goalCount())
}

func TestGoalLookupFailureIsInternalError(t *testing.T) {
	m, home, _ := fixture()
	h := newHarness(t, clock.DefaultConfig(), m)
	h.send(t, "match:start-firstHalf", nil)

	// A store outage must surface as an internal error, not as a
	// player-validation reject.
	h.players.err = errors.New("connection refused")
	ack, _ := h.send(t, "match:make-goal", map[string]string{
		"teamId": home.ID.String(), "playerId": uuid.New().String(),
	})
	assert.False(t, ack.Applied)
	assert.Equal(t, "internal error", ack.Reason)
	assert.Equal(t, 0, h.store.goalCount())

	h.players.err = nil
	ack, _ = h.send(t, "match:make-goal", map[string]string{
		"teamId": home.ID.String(), "playerId": uuid.New().String(),
	})
	assert.False(t, ack.Applied)
	assert.Equal(t, "unknown player", ack.Reason)
}

func TestHalftimeStopsClockAndShowsStage(t *testing.T) {
	m, _, _ := fixture()
	h := newHarness(t, clock.DefaultConfig(), m)

	h.send(t, "match:start-firstHalf", nil)
	h.fc.Advance(15 * time.Minute)
	ack, _ := h.send(t, "match:declare-halftime", nil)
	require.True(t, ack.Applied)

	info := h.request(t, CmdMatchRequest)
	snap, ok := info.Data.(*Snapshot)
	require.True(t, ok)
	assert.Equal(t, models.StageHalftime, snap.Stage)

	timer := h.request(t, CmdTimerRequest)
	assert.Equal(t, events.TypeTimerStop, timer.Type)
}

func TestCommandsWithoutLiveMatchAreIgnored(t *testing.T) {
	h := newHarness(t, clock.DefaultConfig())

	for _, cmdType := range []string{"match:start-firstHalf", "match:pause", "match:finish"} {
		ack, _ := h.send(t, cmdType, nil)
		assert.False(t, ack.Applied, cmdType)
		assert.Equal(t, "no live match", ack.Reason)
	}
	assert.Empty(t, h.sink.all())

	assert.Equal(t, events.TypeTimerStop, h.request(t, CmdTimerRequest).Type)
	assert.Nil(t, h.request(t, CmdMatchRequest).Data)
}

func TestSetLiveKeepsSingleLiveness(t *testing.T) {
	m1, _, _ := fixture()
	m2, _, _ := fixture()
	m2.IsLive = false
	h := newHarness(t, clock.DefaultConfig(), m1, m2)

	require.NoError(t, h.coord.SetLive(context.Background(), m2.ID))
	assert.Equal(t, 1, h.store.liveCount())
	assert.True(t, h.store.match(m2.ID).IsLive)
	assert.False(t, h.store.match(m1.ID).IsLive)

	// The switch announces the new scoreboard to connected viewers.
	snap, ok := h.sink.last(t, events.TypeMatchInfo).Data.(*Snapshot)
	require.True(t, ok)
	assert.Equal(t, m2.ID, snap.ID)

	err := h.coord.SetLive(context.Background(), uuid.New())
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Equal(t, 1, h.store.liveCount())
}

func TestSetExtraTimeAppliesToNextPeriod(t *testing.T) {
	m, _, _ := fixture()
	h := newHarness(t, clock.DefaultConfig(), m)

	ack, _ := h.send(t, "match:set-extra-time", map[string]int{"extraTime": 5})
	require.True(t, ack.Applied)

	h.send(t, "match:start-extraTime", nil)
	assert.Equal(t, 300, seconds(t, h.sink.last(t, events.TypeTimerStart)))

	ack, _ = h.send(t, "match:set-extra-time", map[string]int{"extraTime": 0})
	assert.False(t, ack.Applied)
}

func TestUnknownCommandIsNacked(t *testing.T) {
	m, _, _ := fixture()
	h := newHarness(t, clock.DefaultConfig(), m)

	ack, _ := h.send(t, "match:teleport", nil)
	assert.False(t, ack.Applied)
	assert.Equal(t, "unknown command", ack.Reason)
}
