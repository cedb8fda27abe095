package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ChielvanV/BugBeheer/internal/config"
)

type refresher interface {
	RefreshSnapshot(ctx context.Context) error
}

type sweeper interface {
	Sweep() int
}

// Cron drives the two recurring jobs: the wholesale snapshot refresh from
// the record store and the session expiry sweep.
type Cron struct {
	cfg config.Config
	log zerolog.Logger
	c   *cron.Cron
}

func New(cfg config.Config, log zerolog.Logger, svc refresher, sessions sweeper) *Cron {
	loc, _ := time.LoadLocation(cfg.TZ)
	c := cron.New(cron.WithLocation(loc))
	cr := &Cron{cfg: cfg, log: log, c: c}

	_, _ = c.AddFunc(every(cfg.RefreshInterval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := svc.RefreshSnapshot(ctx); err != nil {
			log.Error().Err(err).Msg("cron: snapshot refresh failed")
		}
	})
	_, _ = c.AddFunc(every(cfg.SessionSweep), func() {
		if n := sessions.Sweep(); n > 0 {
			log.Info().Int("expired", n).Msg("cron: sessions swept")
		}
	})
	return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func every(d time.Duration) string { return fmt.Sprintf("@every %s", d) }
