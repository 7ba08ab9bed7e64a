package worker

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/legal-desk/internal/config"
	"github.com/spec-kit/legal-desk/internal/observability"
	"github.com/spec-kit/legal-desk/internal/persistence"
)

func TestRunAllExecutesEveryJob(t *testing.T) {
	runs := map[string]int{}
	jobs := []Job{
		{Name: "first", Run: func(context.Context) (int, int, error) {
			runs["first"]++
			return 3, 0, nil
		}},
		{Name: "second", Run: func(context.Context) (int, int, error) {
			runs["second"]++
			return 0, 1, nil
		}},
		{Name: "broken", Run: func(context.Context) (int, int, error) {
			runs["broken"]++
			return 0, 0, errors.New("boom")
		}},
	}

	scheduler := NewScheduler(config.SchedulerConfig{Enabled: true},
		persistence.NewJobLock(nil), observability.NewMetrics(), zap.NewNop(), jobs...)
	scheduler.RunAll(context.Background())

	for _, name := range []string{"first", "second", "broken"} {
		if runs[name] != 1 {
			t.Errorf("job %s ran %d times, want 1", name, runs[name])
		}
	}

	// a failing job never stops the others
	scheduler.RunAll(context.Background())
	if runs["second"] != 2 {
		t.Errorf("job second ran %d times after second sweep, want 2", runs["second"])
	}
}

func TestStartDisabled(t *testing.T) {
	scheduler := NewScheduler(config.SchedulerConfig{Enabled: false},
		persistence.NewJobLock(nil), observability.NewMetrics(), zap.NewNop())

	// returns immediately instead of looping
	scheduler.Start(context.Background())
}
