//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

// Topic names understood by the Dispatcher. They are opaque routing
// keys: the relay never interprets them beyond building the private one.
const (
	TopicPublic = "topic.public"
	TopicUsers  = "topic.users"

	topicPrivatePrefix = "topic.private."
)

// PrivateTopic returns the per-recipient topic a PRIVATE event is
// delivered to.
func PrivateTopic(username string) string {
	return topicPrivatePrefix + username
}

// Dispatcher is the transport-facing capability that actually delivers
// a payload to the subscribers of a topic. Publish is fire-and-forget:
// the relay never waits for delivery confirmation. A payload is either
// a domain.ChatEvent or a []domain.UserProfile roster push.
type Dispatcher interface {
	Publish(ctx context.Context, topic string, payload any)
}

// Session is the per-connection username binding owned by the transport
// layer. The router binds at JOIN time and resolves at disconnect time.
type Session interface {
	Bind(username string)
	Resolve() (username string, ok bool)
}

// Presence owns the mapping of username to profile for currently
// connected users. All operations are safe for concurrent use.
type Presence interface {
	Add(profile domain.UserProfile)
	Remove(username string) (removed bool)
	Snapshot() []domain.UserProfile
	Size() int
}

// EventSink is a subscriber endpoint the hub fans deliveries out to.
type EventSink interface {
	Consume(ctx context.Context, payload any) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
