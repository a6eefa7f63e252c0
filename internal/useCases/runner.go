package useCases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/larriantoniy/crosspost_translator/internal/domain"
	"github.com/larriantoniy/crosspost_translator/internal/metrics"
	"github.com/larriantoniy/crosspost_translator/internal/ports"
)

// MessageProcessor — одна relay-задача на одно сообщение
type MessageProcessor interface {
	Process(ctx context.Context, msg domain.Message) (Result, error)
}

// Runner слушает события платформы и на каждое запускает отдельную задачу.
// Tasks for different messages run concurrently without ordering.
type Runner struct {
	platform  ports.ChatPlatform
	processor MessageProcessor
	log       *slog.Logger
}

func NewRunner(platform ports.ChatPlatform, processor MessageProcessor, log *slog.Logger) *Runner {
	return &Runner{platform: platform, processor: processor, log: log}
}

// Run блокируется до закрытия канала событий (обычно по ctx.Done()) и ждет
// завершения запущенных задач.
func (r *Runner) Run(ctx context.Context) error {
	events, err := r.platform.Listen(ctx)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	var wg sync.WaitGroup
	for ev := range events {
		wg.Add(1)
		go func(ev domain.Event) {
			defer wg.Done()
			r.handle(ctx, ev)
		}(ev)
	}

	r.log.Info("Event stream closed, waiting for running tasks")
	wg.Wait()
	return nil
}

// handle never lets a failure of one message escape its goroutine.
func (r *Runner) handle(ctx context.Context, ev domain.Event) {
	done := metrics.TaskStarted()
	defer done()

	log := r.log.With("event", ev.Kind.String(), "message_id", ev.Message.ID)
	defer func() {
		if p := recover(); p != nil {
			log.Error("Relay task panicked", "panic", p)
		}
	}()

	if _, err := r.processor.Process(ctx, ev.Message); err != nil {
		log.Error("Failed to process message", "error", err)
	}
}
