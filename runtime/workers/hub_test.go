package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHub_Fanout_To_Topic_Subscribers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hub := NewHub(slog.Default(), 10, time.Second)
	sinkA := mocks.NewMockEventSink(ctrl)
	sinkB := mocks.NewMockEventSink(ctrl)
	other := mocks.NewMockEventSink(ctrl)

	// Given two subscribers on the public topic and one elsewhere
	hub.Subscribe(contract.TopicPublic, "conn-a", sinkA)
	hub.Subscribe(contract.TopicPublic, "conn-b", sinkB)
	hub.Subscribe(contract.PrivateTopic("carol"), "conn-c", other)

	evt := domain.ChatEvent{Sender: "alice", Content: "hello", Type: domain.EventBroadcast}

	done := make(chan struct{})
	count := 0
	consumed := func(ctx context.Context, payload any) error {
		req.Equal(evt, payload)
		count++
		if count == 2 {
			close(done)
		}
		return nil
	}
	sinkA.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(consumed).Times(1)
	sinkB.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(consumed).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// When one payload is published to the public topic
	hub.Publish(ctx, contract.TopicPublic, evt)

	// Then both public subscribers got it and the other sink did not
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("Fan-out did not reach both sinks in time")
	}
}

func TestHub_Publish_Without_Subscribers_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 10, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// When publishing to a topic nobody subscribed to
	hub.Publish(ctx, contract.PrivateTopic("ghost"), domain.ChatEvent{Type: domain.EventPrivate})

	// Then the delivery is drained without any call
	req.Eventually(func() bool { return hub.Pending() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_Unsubscribe_Removes_Connection_From_All_Topics(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hub := NewHub(slog.Default(), 10, time.Second)
	sink := mocks.NewMockEventSink(ctrl)

	// Given one connection subscribed on three topics
	hub.Subscribe(contract.TopicPublic, "conn-a", sink)
	hub.Subscribe(contract.TopicUsers, "conn-a", sink)
	hub.Subscribe(contract.PrivateTopic("alice"), "conn-a", sink)
	req.Equal(3, hub.Topics())

	// When the connection goes away
	hub.Unsubscribe("conn-a")

	// Then no empty topic set is left behind
	req.Zero(hub.Topics())
}

func TestHub_Publish_Drops_When_Channel_Full(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default(), 1, time.Second)
	ctx := context.Background()

	// Given the hub is not draining and its buffer holds one delivery
	hub.Publish(ctx, contract.TopicPublic, domain.ChatEvent{Content: "first"})

	// When a second payload arrives, it is dropped rather than blocking
	hub.Publish(ctx, contract.TopicPublic, domain.ChatEvent{Content: "second"})

	req.Equal(1, hub.Pending())
}

func TestHub_Slow_Sink_Does_Not_Stall_Others(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sinkTimeout := 20 * time.Millisecond
	hub := NewHub(slog.Default(), 10, sinkTimeout)
	slow := mocks.NewMockEventSink(ctrl)
	fast := mocks.NewMockEventSink(ctrl)

	hub.Subscribe(contract.TopicPublic, "conn-slow", slow)
	hub.Subscribe(contract.TopicPublic, "conn-fast", fast)

	done := make(chan struct{})
	// Given one sink that never accepts until its context expires
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ any) error {
			<-ctx.Done() // Waiting for timeout to trigger cancellation
			return ctx.Err()
		}).
		AnyTimes()
	fast.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, any) error {
			close(done)
			return nil
		}).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	hub.Publish(ctx, contract.TopicPublic, domain.ChatEvent{Content: "hello"})

	// Then the healthy sink is still served
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("Healthy sink starved by a slow one")
	}
}
