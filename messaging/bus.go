package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/models"
)

const (
	attrPattern       = "pattern"
	attrCorrelationId = "correlationId"
	attrReplyTopic    = "replyTopic"
	attrError         = "error"

	// DefaultRequestTimeout bounds every request/response exchange. A reply
	// arriving after this window is dropped and the caller sees
	// service-unavailable.
	DefaultRequestTimeout = 15 * time.Second
)

// Bus is the transport boundary. Request blocks until the remote side
// replies or the context/timeout expires; Emit is fire-and-forget with no
// delivery confirmation observable to the caller.
type Bus interface {
	Request(ctx context.Context, pattern string, payload interface{}, result interface{}) error
	Emit(ctx context.Context, pattern string, payload interface{}) error
}

type pendingReply struct {
	data chan []byte
	err  chan string
}

// PubSubBus routes request/response patterns through a request topic and a
// per-process reply subscription, matching replies by correlation id. Emits
// go to a per-pattern topic (ledger events or mail).
type PubSubBus struct {
	logger *logrus.Logger

	requestTopic *pubsub.Topic
	replyTopic   string
	emitTopics   map[string]*pubsub.Topic

	mu      sync.Mutex
	pending map[string]pendingReply
}

// NewPubSubBus wires the bus against the configured topics and starts the
// reply receiver on the given subscription. The receiver runs until ctx is
// cancelled.
func NewPubSubBus(ctx context.Context, logger *logrus.Logger) (*PubSubBus, error) {
	client, err := config.GetClient(ctx)
	if err != nil {
		return nil, err
	}

	requestTopicName, err := config.TopicName(config.EnvLedgerRequestTopic)
	if err != nil {
		return nil, err
	}
	replyTopicName, err := config.TopicName(config.EnvLedgerReplyTopic)
	if err != nil {
		return nil, err
	}
	eventsTopicName, err := config.TopicName(config.EnvLedgerEventsTopic)
	if err != nil {
		return nil, err
	}
	mailTopicName, err := config.TopicName(config.EnvMailTopic)
	if err != nil {
		return nil, err
	}

	eventsTopic := client.Topic(eventsTopicName)
	mailTopic := client.Topic(mailTopicName)

	bus := &PubSubBus{
		logger:       logger,
		requestTopic: client.Topic(requestTopicName),
		replyTopic:   replyTopicName,
		emitTopics: map[string]*pubsub.Topic{
			PatternRegisterCompany:   eventsTopic,
			PatternCreateDirector:    eventsTopic,
			PatternCreateShareholder: eventsTopic,
			PatternRemoveDirector:    eventsTopic,
			PatternRemoveShareholder: eventsTopic,
			PatternUpdateShareholder: eventsTopic,
			PatternSendNotification:  mailTopic,
		},
		pending: make(map[string]pendingReply),
	}

	replyTopic, err := config.CreateTopicIfNotExists(client, replyTopicName)
	if err != nil {
		return nil, err
	}
	replySubName, err := config.TopicName(config.EnvLedgerReplySubscription)
	if err != nil {
		return nil, err
	}
	sub, err := config.CreateSubscriptionIfNotExists(client, replySubName, replyTopic)
	if err != nil {
		return nil, err
	}
	go bus.receiveReplies(ctx, sub)

	return bus, nil
}

func (b *PubSubBus) receiveReplies(ctx context.Context, sub *pubsub.Subscription) {
	err := sub.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
		correlationId := msg.Attributes[attrCorrelationId]
		if correlationId == "" {
			msg.Ack()
			return
		}

		b.mu.Lock()
		waiter, ok := b.pending[correlationId]
		b.mu.Unlock()
		if !ok {
			// Late reply after the caller timed out.
			msg.Ack()
			return
		}

		if remoteError := msg.Attributes[attrError]; remoteError != "" {
			select {
			case waiter.err <- remoteError:
			default:
			}
		} else {
			select {
			case waiter.data <- msg.Data:
			default:
			}
		}
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		config.LogError(b.logger, "messaging", "receiveReplies", "reply subscription stopped", nil, err)
	}
}

// Request publishes the payload with a fresh correlation id and waits for
// the matching reply. Remote errors come back untranslated; callers run
// them through TranslateLedgerError with the field that fits the operation.
func (b *PubSubBus) Request(ctx context.Context, pattern string, payload interface{}, result interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	correlationId := uuid.NewString()
	waiter := pendingReply{
		data: make(chan []byte, 1),
		err:  make(chan string, 1),
	}
	b.mu.Lock()
	b.pending[correlationId] = waiter
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.pending, correlationId)
		b.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	publishResult := b.requestTopic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			attrPattern:       pattern,
			attrCorrelationId: correlationId,
			attrReplyTopic:    b.replyTopic,
		},
	})
	if _, err := publishResult.Get(ctx); err != nil {
		config.LogError(b.logger, "messaging", "Request", pattern, payload, err)
		return apperr.ServiceUnavailable(LedgerServiceName, models.ErrServiceUnavailable)
	}

	select {
	case replyData := <-waiter.data:
		if result == nil {
			return nil
		}
		return json.Unmarshal(replyData, result)
	case remoteError := <-waiter.err:
		return &RemoteError{Pattern: pattern, Message: remoteError}
	case <-ctx.Done():
		return apperr.ServiceUnavailable(LedgerServiceName, models.ErrServiceUnavailable)
	}
}

// Emit publishes fire-and-forget. Publish failures are logged and swallowed;
// local writes proceed regardless of emit outcome.
func (b *PubSubBus) Emit(ctx context.Context, pattern string, payload interface{}) error {
	topic, ok := b.emitTopics[pattern]
	if !ok {
		return errors.New("no topic configured for pattern " + pattern)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	result := topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{attrPattern: pattern},
	})
	go func() {
		waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := result.Get(waitCtx); err != nil {
			config.LogError(b.logger, "messaging", "Emit", pattern, payload, err)
		}
	}()
	return nil
}

// RemoteError is a raw remote rejection before taxonomy translation.
type RemoteError struct {
	Pattern string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Pattern + ": " + e.Message
}

// AsRemoteError unwraps a remote rejection, if err is one.
func AsRemoteError(err error) (*RemoteError, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote, true
	}
	return nil, false
}
