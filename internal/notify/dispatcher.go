package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/review360/assessment-service/internal/config"
	"github.com/review360/assessment-service/pkg/logger/sl"
)

// Sender is the transport behind the dispatcher. Satisfied by
// MattermostClient; replaced with a fake in tests.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Dispatcher fans notifications out through a bounded worker pool. Enqueue
// never blocks the caller: when the queue is full the notification is
// dropped and logged. There is no retry queue.
type Dispatcher struct {
	sender      Sender
	log         *slog.Logger
	frontendURL string

	queue chan Notification
	wg    sync.WaitGroup
}

func NewDispatcher(cfg config.Mattermost, sender Sender, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		sender:      sender,
		log:         log,
		frontendURL: cfg.FrontendURL,
		queue:       make(chan Notification, 256),
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for n := range d.queue {
		// Per-call timeout comes from the sender's HTTP client; the
		// background context just detaches delivery from the request.
		if err := d.sender.Send(context.Background(), n); err != nil {
			d.log.Error("failed to deliver notification",
				slog.String("recipient", n.Recipient),
				sl.Err(err),
			)

			continue
		}

		d.log.Debug("notification delivered", slog.String("recipient", n.Recipient))
	}
}

// Close stops accepting new notifications and waits for in-flight
// deliveries to finish.
func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) enqueue(n Notification) {
	select {
	case d.queue <- n:
	default:
		d.log.Warn("notification queue is full, dropping",
			slog.String("recipient", n.Recipient),
			slog.String("title", n.Title),
		)
	}
}

func (d *Dispatcher) CycleStarted(recipient, cycleTitle string) {
	d.enqueue(Notification{
		Recipient:  recipient,
		Title:      "🎯 Запущен новый цикл оценки",
		Message:    fmt.Sprintf("Цикл оценки %q был запущен. Вы можете просмотреть доступные вам опросы и приступить к оценке.", cycleTitle),
		ActionURL:  d.frontendURL + "/assessments",
		ActionText: "Перейти к опросам",
	})
}

func (d *Dispatcher) AssessmentRequested(recipient, participantName, cycleTitle, respondentID string) {
	d.enqueue(Notification{
		Recipient:  recipient,
		Title:      "📝 Требуется ваша оценка",
		Message:    fmt.Sprintf("Вас попросили оценить %s в рамках цикла %q. Пожалуйста, пройдите опрос.", participantName, cycleTitle),
		ActionURL:  d.frontendURL + "/survey/" + respondentID,
		ActionText: "Пройти опрос",
	})
}

func (d *Dispatcher) ParticipantCompleted(recipient, cycleTitle string) {
	d.enqueue(Notification{
		Recipient:  recipient,
		Title:      "✅ Ваша оценка завершена",
		Message:    fmt.Sprintf("Все респонденты завершили вашу оценку в рамках цикла %q. Отчет готов к просмотру.", cycleTitle),
		ActionURL:  d.frontendURL + "/assessments",
		ActionText: "Просмотреть отчет",
	})
}
