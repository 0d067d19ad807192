package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/walterneylp/process-doc/internal/core/ports"
	"github.com/walterneylp/process-doc/internal/infrastructure/resilience"
)

// Subjects names the three pipeline dispatch subjects.
type Subjects struct {
	MailFetched    string
	EmailReceived  string
	DocumentQueued string
}

func DefaultSubjects() Subjects {
	return Subjects{
		MailFetched:    "emails.ingest",
		EmailReceived:  "emails.process",
		DocumentQueued: "documents.process",
	}
}

type Queue struct {
	conn     *nats.Conn
	subjects Subjects
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url string, subjects Subjects) (*Queue, error) {
	return NewWithOptions(url, subjects, Options{})
}

func NewWithOptions(url string, subjects Subjects, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("process-doc"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subjects: subjects,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishEmailReceived(ctx context.Context, emailID string) error {
	return q.publish(ctx, q.subjects.EmailReceived, []byte(emailID))
}

func (q *Queue) PublishDocumentQueued(ctx context.Context, documentID string) error {
	return q.publish(ctx, q.subjects.DocumentQueued, []byte(documentID))
}

func (q *Queue) publish(ctx context.Context, subject string, data []byte) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// Subscribe binds all three subjects to a shared worker queue group and
// blocks until the context is canceled, then drains.
func (q *Queue) Subscribe(ctx context.Context, handlers ports.QueueHandlers) error {
	subs := make([]*nats.Subscription, 0, 3)

	bind := func(subject string, handle func(context.Context, *nats.Msg) error) error {
		sub, err := q.conn.QueueSubscribe(subject, "workers", func(msg *nats.Msg) {
			if errors.Is(ctx.Err(), context.Canceled) {
				return
			}
			handlerCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			if err := handle(handlerCtx, msg); err != nil {
				slog.Error("queue_handler_error", "subject", subject, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("nats subscribe %s: %w", subject, err)
		}
		subs = append(subs, sub)
		return nil
	}

	if handlers.MailFetched != nil {
		if err := bind(q.subjects.MailFetched, func(ctx context.Context, msg *nats.Msg) error {
			return handlers.MailFetched(ctx, msg.Data)
		}); err != nil {
			return err
		}
	}
	if handlers.EmailReceived != nil {
		if err := bind(q.subjects.EmailReceived, func(ctx context.Context, msg *nats.Msg) error {
			return handlers.EmailReceived(ctx, string(msg.Data))
		}); err != nil {
			return err
		}
	}
	if handlers.DocumentQueued != nil {
		if err := bind(q.subjects.DocumentQueued, func(ctx context.Context, msg *nats.Msg) error {
			return handlers.DocumentQueued(ctx, string(msg.Data))
		}); err != nil {
			return err
		}
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	for _, sub := range subs {
		if err := sub.Drain(); err != nil {
			return fmt.Errorf("nats drain subscription: %w", err)
		}
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
