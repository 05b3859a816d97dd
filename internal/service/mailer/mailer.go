package mailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskdo/backend/internal/logger"
	"github.com/taskdo/backend/internal/models"
)

const (
	defaultCountWorkers = 2
	defaultQueueSize    = 64
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one message. Delivery is best effort: the notifier logs
// failures and moves on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is the default Sender: it only logs the would-be delivery
type LogSender struct {
	Logger logger.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	s.Logger.Info("Mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Notifier is a fire-and-forget mail queue: producers enqueue without
// blocking, a small worker pool drains the queue through the Sender
type Notifier struct {
	queue        chan Message
	countWorkers int
	sender       Sender
	logger       logger.Logger
}

func New(sender Sender, logger logger.Logger) *Notifier {
	return &Notifier{
		queue:        make(chan Message, defaultQueueSize),
		countWorkers: defaultCountWorkers,
		sender:       sender,
		logger:       logger,
	}
}

// Run starts the workers. The returned channel closes when every worker has
// stopped; cancelling ctx stops accepting work and lets workers finish the
// message at hand.
func (n *Notifier) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < n.countWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.worker(ctx)
		}()
	}

	go func() {
		defer close(idleStopped)
		wg.Wait()
		n.logger.Debug("Mail notifier stopped")
	}()

	return idleStopped
}

func (n *Notifier) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-n.queue:
			if !ok {
				return
			}

			if err := n.sender.Send(ctx, msg); err != nil {
				n.logger.Error("Failed to send mail", "error", err, "to", msg.To)
			}
		}
	}
}

// EnqueueWelcome queues the registration greeting. Never blocks: when the
// queue is full the message is dropped with a warning, losing a greeting is
// cheaper than stalling a registration.
func (n *Notifier) EnqueueWelcome(user models.User) {
	msg := Message{
		To:      user.Email,
		Subject: "Registration confirmed",
		Body:    fmt.Sprintf("User with email %s was created successfully!", user.Email),
	}

	select {
	case n.queue <- msg:
	default:
		n.logger.Warn("Mail queue is full, dropping message", "to", msg.To)
	}
}
