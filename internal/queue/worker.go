// Package queue answers analyze requests received over AMQP.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/presentation"
	"github.com/spigell/skill-matcher/internal/skills"
)

const (
	DefaultQueue    = "skill-matcher.analyze"
	DefaultPrefetch = 8

	StatusDone   = "done"
	StatusFailed = "failed"
)

type Config struct {
	URL      string `mapstructure:"-"`
	Queue    string `mapstructure:"queue"`
	Prefetch int    `mapstructure:"prefetch"`
}

type Deps struct {
	Logger     *zap.Logger
	Vocabulary *skills.Vocabulary
	Candidate  skills.SkillSet
	Display    *presentation.Scale
	Badge      *presentation.Scale
}

// Request is the JSON body of an analyze message.
type Request struct {
	ID             string   `json:"id,omitempty"`
	JobDescription string   `json:"job_description"`
	Skills         []string `json:"skills,omitempty"`
}

// Reply is published to the ReplyTo queue of the request.
type Reply struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	Result    *skills.MatchResult `json:"result,omitempty"`
	View      *presentation.View  `json:"view,omitempty"`
	Error     string              `json:"error,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Publisher is the part of *amqp.Channel used for replies.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Worker struct {
	publisher Publisher
	deps      Deps
	logger    *zap.Logger
}

func NewWorker(publisher Publisher, deps Deps) *Worker {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Vocabulary == nil {
		deps.Vocabulary = skills.DefaultVocabulary()
	}
	if deps.Candidate == nil {
		deps.Candidate = skills.DemoCandidateSkills()
	}
	if deps.Display == nil {
		deps.Display = presentation.DisplayScale()
	}
	if deps.Badge == nil {
		deps.Badge = presentation.BadgeScale()
	}

	return &Worker{
		publisher: publisher,
		deps:      deps,
		logger:    deps.Logger.Named("worker"),
	}
}

// Run connects to the broker and consumes the queue until ctx is done.
func Run(ctx context.Context, cfg Config, deps Deps) error {
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = DefaultPrefetch
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("dialling rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("opening rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("setting prefetch: %w", err)
	}

	if _, err := ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declaring queue %q: %w", cfg.Queue, err)
	}

	msgs, err := ch.Consume(
		cfg.Queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consuming queue %q: %w", cfg.Queue, err)
	}

	w := NewWorker(ch, deps)
	w.logger.Info("worker started", zap.String("queue", cfg.Queue), zap.Int("prefetch", cfg.Prefetch))

	return w.Consume(ctx, msgs)
}

// Consume handles deliveries one by one. It returns nil when ctx is done.
func (w *Worker) Consume(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			w.Handle(d)
		}
	}
}

// Handle analyzes one delivery and settles it. Malformed messages are rejected without requeue.
func (w *Worker) Handle(d amqp.Delivery) {
	var req Request
	err := json.Unmarshal(d.Body, &req)
	if err == nil && strings.TrimSpace(req.JobDescription) == "" {
		err = errors.New("job_description is required")
	}

	id := requestID(req, d)
	log := logger.WithRequestFields(w.logger, id, "amqp")

	if err != nil {
		log.Warn("rejecting malformed message", zap.Error(err))
		if d.ReplyTo != "" {
			failed := Reply{ID: id, Status: StatusFailed, Error: err.Error(), Timestamp: time.Now().UTC()}
			if perr := w.reply(d, failed); perr != nil {
				log.Warn("publishing failure reply", zap.Error(perr))
			}
		}
		if rerr := d.Reject(false); rerr != nil {
			log.Error("rejecting message", zap.Error(rerr))
		}
		return
	}

	candidate := w.deps.Candidate
	if requested := skills.Normalize(req.Skills); len(requested) > 0 {
		candidate = requested
	}

	result := skills.Analyze(req.JobDescription, candidate, w.deps.Vocabulary)
	view := presentation.NewView(result, w.deps.Display, w.deps.Badge)
	log.Info("message analyzed", append(logger.AnalysisFields(result), logger.JobPreview(req.JobDescription))...)

	if d.ReplyTo == "" {
		log.Warn("message has no reply-to; dropping result")
		w.ack(log, d)
		return
	}

	reply := Reply{
		ID:        id,
		Status:    StatusDone,
		Result:    &result,
		View:      &view,
		Timestamp: time.Now().UTC(),
	}
	if err := w.reply(d, reply); err != nil {
		// Requeue once. A redelivered message that still cannot be answered is dropped.
		requeue := !d.Redelivered
		log.Error("publishing reply", zap.Error(err), zap.Bool("requeue", requeue))
		if nerr := d.Nack(false, requeue); nerr != nil {
			log.Error("returning message to queue", zap.Error(nerr))
		}
		return
	}

	w.ack(log, d)
}

func (w *Worker) reply(d amqp.Delivery, reply Reply) error {
	body, err := json.Marshal(reply)
	if err != nil {
		return err
	}

	return w.publisher.Publish(
		"", // default exchange routes by queue name
		d.ReplyTo,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			Timestamp:     reply.Timestamp,
			Body:          body,
		},
	)
}

func (w *Worker) ack(log *zap.Logger, d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		log.Error("acknowledging message", zap.Error(err))
	}
}

func requestID(req Request, d amqp.Delivery) string {
	for _, id := range []string{req.ID, d.CorrelationId, d.MessageId} {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return uuid.NewString()
}
