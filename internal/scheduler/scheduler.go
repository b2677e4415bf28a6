package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sweep — периодическая фоновая задача движка.
type Sweep struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler гоняет фоновые проходы по собственным таймерам, независимо
// от пользовательского трафика. Проходы повторновходимы: каждый запуск
// заново выбирает «созревшие» строки, ошибки логируются и не
// останавливают цикл.
type Scheduler struct {
	Sweeps []Sweep
	Log    zerolog.Logger

	wg sync.WaitGroup
}

// Run блокируется до отмены контекста; каждый проход крутится
// в своей горутине с немедленным первым запуском.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, sweep := range s.Sweeps {
		sweep := sweep
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.loop(ctx, sweep)
		}()
	}

	<-ctx.Done()
	s.wg.Wait()
	return ctx.Err()
}

func (s *Scheduler) loop(ctx context.Context, sweep Sweep) {
	t := time.NewTicker(sweep.Interval)
	defer t.Stop()

	s.tick(ctx, sweep)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick(ctx, sweep)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, sweep Sweep) {
	if err := sweep.Run(ctx); err != nil {
		s.Log.Error().Err(err).Str("sweep", sweep.Name).Msg("sweep failed")
	}
}
