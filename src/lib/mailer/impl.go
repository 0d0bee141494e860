package mailer

import (
	"context"
	"ddtours/src/config"
	"ddtours/src/lib"
	awslib "ddtours/src/lib/aws"
	"ddtours/src/types"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

type Message struct {
	From     string   `json:"from"`
	FromName string   `json:"from-name"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Html     bool     `json:"html"`
}

type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

type Queue interface {
	Send(ctx context.Context, body string) error
	Listen(ctx context.Context, handler types.Handler)
}

type SMTPTransport struct {
	cfg *config.Config
}

func NewSMTPTransport(cfg *config.Config) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	c, err := lib.GetSMTPClient(t.cfg)
	if err != nil {
		return err
	}
	m, err := lib.NewMailMsg(&lib.SendMailInput{
		From:     msg.From,
		FromName: msg.FromName,
		To:       msg.To,
		Subject:  msg.Subject,
		Body:     msg.Body,
		Html:     msg.Html,
	})
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, m)
}

type SESTransport struct {
	sender *awslib.SESSender
}

func NewSESTransport(sender *awslib.SESSender) *SESTransport {
	return &SESTransport{sender: sender}
}

func (t *SESTransport) Send(ctx context.Context, msg *Message) error {
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}
	return t.sender.SendHTML(ctx, from, msg.To, msg.Subject, msg.Body)
}

// Dispatcher delivers mail off the request path. Dispatch never blocks; when
// the buffer is full the message is dropped and logged.
type Dispatcher struct {
	transport Transport
	queue     Queue
	jobs      chan *Message
	workers   int
	timeout   time.Duration
	metrics   *lib.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(transport Transport, queue Queue, workers, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 64
	}
	return &Dispatcher{
		transport: transport,
		queue:     queue,
		jobs:      make(chan *Message, buffer),
		workers:   workers,
		timeout:   30 * time.Second,
		metrics:   lib.GetMetrics(),
	}
}

// Start launches the workers and, when a queue is configured, the consumer
// that drains it.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for msg := range d.jobs {
				d.deliver(msg)
			}
		}()
	}
	if d.queue != nil {
		go d.queue.Listen(ctx, d.HandleQueued)
	}
}

func (d *Dispatcher) Dispatch(msg *Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Println("[mailer] Dispatcher is stopped. Dropping message")
		d.metrics.Notifications.WithLabelValues("dropped").Inc()
		return false
	}
	select {
	case d.jobs <- msg:
		return true
	default:
		log.Printf("[mailer] Queue is full. Dropping message to %v\n", msg.To)
		d.metrics.Notifications.WithLabelValues("dropped").Inc()
		return false
	}
}

// Stop waits for buffered messages to be delivered.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) deliver(msg *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if d.queue != nil {
		body, err := json.Marshal(msg)
		if err == nil {
			if err = d.queue.Send(ctx, string(body)); err == nil {
				d.metrics.Notifications.WithLabelValues("queued").Inc()
				return
			}
		}
		log.Printf("[mailer] Error sending message to queue, delivering directly: %s\n", err.Error())
	}
	d.send(ctx, msg)
}

func (d *Dispatcher) send(ctx context.Context, msg *Message) {
	if err := d.transport.Send(ctx, msg); err != nil {
		log.Printf("[mailer] Error sending email to %v: %s\n", msg.To, err.Error())
		d.metrics.Notifications.WithLabelValues("failed").Inc()
		return
	}
	d.metrics.Notifications.WithLabelValues("sent").Inc()
}

// HandleQueued sends a message read back from the queue.
func (d *Dispatcher) HandleQueued(payload string) {
	msg, err := ParseQueued(payload)
	if err != nil {
		log.Printf("[mailer] Discarding queued message: %s\n", err.Error())
		d.metrics.Notifications.WithLabelValues("rejected").Inc()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	d.send(ctx, msg)
}

func ParseQueued(payload string) (*Message, error) {
	if !gjson.Valid(payload) {
		return nil, errors.New("payload is not valid JSON")
	}
	to := gjson.Get(payload, "to")
	if !to.IsArray() || len(to.Array()) == 0 {
		return nil, errors.New("payload has no recipients")
	}
	if gjson.Get(payload, "subject").String() == "" {
		return nil, errors.New("payload has no subject")
	}
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
