package test

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/sink"
	"chat-relay/transport/ws"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// next waits for one fanned-out payload or fails the test.
func next(req *require.Assertions, c *sink.Conn) any {
	select {
	case payload := <-c.Deliveries:
		return payload
	case <-time.After(1 * time.Second):
		req.FailNow("Expected a delivery but none arrived in time")
		return nil
	}
}

func usernames(roster []domain.UserProfile) []string {
	return lo.Map(roster, func(p domain.UserProfile, _ int) string {
		return p.Username
	})
}

func Test_Relay_Scenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// 1. Wire the real core: presence, hub and router under supervision
	presence := runtime.NewPresence()
	hub := workers.NewHub(log, 100, 1*time.Second)
	router := runtime.NewRouter(log, presence, hub)

	supervisor := workers.NewSupervisor(log, 200*time.Millisecond)
	go supervisor.Add(hub).Run(ctx)
	defer supervisor.Stop()

	// 2. One observer subscribed like every freshly accepted connection,
	// and bob's private mailbox
	observer := sink.NewConn(100)
	hub.Subscribe(contract.TopicPublic, "conn-observer", observer)
	hub.Subscribe(contract.TopicUsers, "conn-observer", observer)

	bobPrivate := sink.NewConn(100)
	hub.Subscribe(contract.PrivateTopic("bob"), "conn-bob", bobPrivate)

	aliceSession := ws.NewSession()
	bobSession := ws.NewSession()

	// When alice joins
	router.OnClientEvent(ctx, domain.ChatEvent{
		Sender: "alice", Gender: "f", PublicKey: "pkA", Type: domain.EventJoin,
	}, aliceSession)

	// Then the public topic echoes the JOIN
	evt, ok := next(req, observer).(domain.ChatEvent)
	req.True(ok)
	req.Equal(domain.EventJoin, evt.Type)
	req.Equal("alice", evt.Sender)

	// And the user-list topic pushes the full roster
	roster, ok := next(req, observer).([]domain.UserProfile)
	req.True(ok)
	req.Equal([]string{"alice"}, usernames(roster))

	// When bob joins, the roster push contains both (order unspecified)
	router.OnClientEvent(ctx, domain.ChatEvent{Sender: "bob", Type: domain.EventJoin}, bobSession)
	evt, _ = next(req, observer).(domain.ChatEvent)
	req.Equal("bob", evt.Sender)
	roster, _ = next(req, observer).([]domain.UserProfile)
	req.ElementsMatch([]string{"alice", "bob"}, usernames(roster))

	// When alice sends bob a private message
	router.OnClientEvent(ctx, domain.ChatEvent{
		Sender: "alice", Recipient: "bob", Content: "hi", Type: domain.EventPrivate,
	}, aliceSession)

	// Then exactly one delivery reaches bob's private topic, unchanged
	private, ok := next(req, bobPrivate).(domain.ChatEvent)
	req.True(ok)
	req.Equal("hi", private.Content)
	req.Equal("alice", private.Sender)
	// And nothing leaked to the public or user-list topics
	req.Empty(observer.Deliveries)

	// When alice's connection closes
	router.OnDisconnect(ctx, aliceSession)

	// Then the public topic gets a synthesized LEAVE without content
	evt, _ = next(req, observer).(domain.ChatEvent)
	req.Equal(domain.EventLeave, evt.Type)
	req.Equal("alice", evt.Sender)
	req.Empty(evt.Content)

	// And the roster push now contains only bob
	roster, _ = next(req, observer).([]domain.UserProfile)
	req.Equal([]string{"bob"}, usernames(roster))

	// When alice's connection closes again (already removed)
	router.OnDisconnect(ctx, aliceSession)

	// Then zero deliveries go out
	req.Empty(observer.Deliveries)
	req.Empty(bobPrivate.Deliveries)
	req.Equal(1, presence.Size())
}
