package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal/core/events"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/notification"
)

type captureSink struct {
	mu       sync.Mutex
	messages []notification.Message
	failFor  int64
}

func (s *captureSink) Send(ctx context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.RecipientID == s.failFor {
		return errors.New("chat unreachable")
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *captureSink) recipients() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.RecipientID
	}
	return out
}

var _ = Describe("Deliverer", func() {
	var (
		ctx  context.Context
		bus  *events.EventBus
		sink *captureSink
	)

	BeforeEach(func() {
		ctx = context.Background()
		bus = events.NewEventBus(quietLogger())
		sink = &captureSink{}
		notification.NewDeliverer(newDirectory(ctx), sink, quietLogger()).Register(bus)
	})

	It("should subscribe to every kind", func() {
		for _, kind := range notification.Kinds {
			Expect(bus.HandlerCount(string(kind))).To(Equal(1))
		}
	})

	It("should render one message per recipient", func() {
		Expect(bus.PublishSync(ctx, notification.LowBalance(workerID, money.FromUnits(-3)))).To(Succeed())
		Expect(sink.recipients()).To(ConsistOf(workerID, accountantID, ownerID, watcherID))
		for _, m := range sink.messages {
			Expect(m.Text).NotTo(BeEmpty())
			Expect(m.Kind).To(Equal(notification.KindLowBalance))
		}
	})

	It("should keep sending after one recipient fails", func() {
		sink.failFor = accountantID
		err := bus.PublishSync(ctx, notification.LimitExceeded(workerID, 0, 0, 0))
		Expect(err).To(HaveOccurred())
		Expect(sink.recipients()).To(ConsistOf(workerID, ownerID))
	})
})

var _ = Describe("Dispatcher", func() {
	var (
		bus        *events.EventBus
		dispatcher *notification.Dispatcher
		handled    atomic.Int64
		release    chan struct{}
	)

	BeforeEach(func() {
		handled.Store(0)
		release = make(chan struct{})
		bus = events.NewEventBus(quietLogger())
		bus.Subscribe(string(notification.KindLowBalance), func(ctx context.Context, e events.Event) error {
			select {
			case <-release:
			case <-ctx.Done():
				return ctx.Err()
			}
			handled.Add(1)
			return nil
		})
	})

	AfterEach(func() {
		dispatcher.Shutdown()
	})

	It("should deliver queued intents on the worker pool", func() {
		close(release)
		dispatcher = notification.NewDispatcher(bus, notification.DispatcherConfig{QueueSize: 16, Workers: 2}, quietLogger())

		for i := 0; i < 5; i++ {
			dispatcher.Notify(context.Background(), notification.LowBalance(1, 0))
		}
		Eventually(dispatcher.Delivered).Should(Equal(int64(5)))
		Expect(dispatcher.Dropped()).To(BeZero())
	})

	It("should drop rather than block when the queue is full", func() {
		dispatcher = notification.NewDispatcher(bus, notification.DispatcherConfig{QueueSize: 1, Workers: 1}, quietLogger())

		const sent = 10
		start := time.Now()
		for i := 0; i < sent; i++ {
			dispatcher.Notify(context.Background(), notification.LowBalance(1, 0))
		}
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		Expect(dispatcher.Dropped()).To(BeNumerically(">=", sent-3))

		close(release)
		Eventually(func() int64 { return dispatcher.Delivered() + dispatcher.Dropped() }).Should(Equal(int64(sent)))
	})

	It("should drop intents after shutdown", func() {
		close(release)
		dispatcher = notification.NewDispatcher(bus, notification.DispatcherConfig{}, quietLogger())
		dispatcher.Shutdown()

		dispatcher.Notify(context.Background(), notification.LowBalance(1, 0))
		Expect(dispatcher.Dropped()).To(Equal(int64(1)))
		Expect(handled.Load()).To(BeZero())
	})
})

var _ = Describe("WebhookSink", func() {
	var (
		ctx   context.Context
		calls atomic.Int32
		msg   notification.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		calls.Store(0)
		intent := notification.LowBalance(workerID, money.FromUnits(-1))
		msg = notification.Message{IntentID: intent.ID, Kind: intent.Kind, RecipientID: ownerID, Text: "hi", Intent: intent}
	})

	newSink := func(url string, retries uint64) *notification.WebhookSink {
		return notification.NewWebhookSink(notification.WebhookConfig{
			URL:        url,
			MaxRetries: retries,
			Backoff:    time.Millisecond,
		}, nil, quietLogger())
	}

	It("should post the message as JSON", func() {
		var got notification.Message
		var intentHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			intentHeader = r.Header.Get("X-Intent-ID")
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		Expect(newSink(server.URL, 3).Send(ctx, msg)).To(Succeed())
		Expect(calls.Load()).To(Equal(int32(1)))
		Expect(intentHeader).To(Equal(msg.IntentID))
		Expect(got.RecipientID).To(Equal(ownerID))
		Expect(got.Text).To(Equal("hi"))
	})

	It("should retry server errors", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		Expect(newSink(server.URL, 3).Send(ctx, msg)).To(Succeed())
		Expect(calls.Load()).To(Equal(int32(3)))
	})

	It("should give up after the retry budget", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		Expect(newSink(server.URL, 2).Send(ctx, msg)).NotTo(Succeed())
		Expect(calls.Load()).To(Equal(int32(3)))
	})

	It("should not retry client errors", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		Expect(newSink(server.URL, 3).Send(ctx, msg)).NotTo(Succeed())
		Expect(calls.Load()).To(Equal(int32(1)))
	})
})
