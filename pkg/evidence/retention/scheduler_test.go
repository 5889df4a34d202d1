package retention

import (
	"context"
	"testing"
	"time"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/evidence/storage"
	"cellgate-hq/pricelock/pkg/telemetry/logging"
)

func newScheduler(schedule string) *Scheduler {
	cfg := &config.RetentionConfig{Days: 30, PruneSchedule: schedule}
	return NewScheduler(NewPruner(storage.NewMemoryStorage(), cfg, logging.Discard().Slog()))
}

func TestScheduler_StartStop(t *testing.T) {
	s := newScheduler("0 3 * * *")

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if next := s.NextRun(); next == nil || next.Hour() != 3 || next.Minute() != 0 {
		t.Errorf("NextRun() = %v, want 03:00", next)
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	s.Stop()
}

func TestScheduler_Schedules(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantErr     bool
		wantRunning bool
	}{
		{name: "hourly", schedule: "0 * * * *", wantRunning: true},
		{name: "empty disables", schedule: ""},
		{name: "invalid", schedule: "every day", wantErr: true},
		{name: "six fields", schedule: "0 0 3 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScheduler(tt.schedule)
			defer s.Stop()

			err := s.Start(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Start() error = %v, wantErr %v", err, tt.wantErr)
			}
			if s.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", s.IsRunning(), tt.wantRunning)
			}
			if !tt.wantRunning && s.NextRun() != nil {
				t.Errorf("NextRun() = %v, want nil", s.NextRun())
			}
		})
	}
}

func TestScheduler_StopsWithContext(t *testing.T) {
	s := newScheduler("0 3 * * *")
	ctx, cancel := context.WithCancel(context.Background())

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler still running after context cancel")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
