package eod

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata" // America/Chicago embebida

	"github.com/robfig/cron/v3"
)

// DefaultSchedule dispara el job a las 16:05 hora de Chicago, lunes a
// viernes: cinco minutos después del cierre de CME, con o sin horario de
// verano.
const DefaultSchedule = "CRON_TZ=America/Chicago 0 5 16 * * 1-5"

// Scheduler ejecuta el Job con una expresión cron de 6 campos (con segundos).
type Scheduler struct {
	cron     *cron.Cron
	job      *Job
	schedule string
	timeout  time.Duration
	now      func() time.Time
}

// NewScheduler crea un scheduler. Las expresiones sin prefijo CRON_TZ= se
// interpretan en UTC. schedule vacío usa DefaultSchedule.
func NewScheduler(job *Job, schedule string) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		job:      job,
		schedule: schedule,
		timeout:  10 * time.Minute,
		now:      time.Now,
	}
}

// Start registra el job y arranca el cron en background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.tick); err != nil {
		return fmt.Errorf("eod.Scheduler.Start: schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	slog.Info("eod scheduler started", "schedule", s.schedule)
	return nil
}

// Stop para el cron y espera a que termine la ejecución en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("eod scheduler stopped")
}

// Next devuelve la próxima ejecución programada (zero si no arrancó).
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.job.Run(ctx, s.now()); err != nil {
		slog.Error("scheduled eod job failed", "err", err)
	}
}
