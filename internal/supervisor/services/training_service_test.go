// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/recommend"
)

// mockTrainingEngine records training calls.
type mockTrainingEngine struct {
	mu         sync.Mutex
	ready      bool
	trainCalls int
	trainErr   error
	next       time.Time
	trained    chan struct{}
}

func newMockTrainingEngine(ready bool) *mockTrainingEngine {
	return &mockTrainingEngine{ready: ready, trained: make(chan struct{}, 16)}
}

func (m *mockTrainingEngine) Train(context.Context) error {
	m.mu.Lock()
	m.trainCalls++
	err := m.trainErr
	if err == nil {
		m.ready = true
	}
	m.mu.Unlock()

	select {
	case m.trained <- struct{}{}:
	default:
	}
	return err
}

func (m *mockTrainingEngine) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *mockTrainingEngine) SetNextScheduledTraining(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = t
}

func (m *mockTrainingEngine) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trainCalls
}

func (m *mockTrainingEngine) nextScheduled() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}

func TestTrainingService_Startup(t *testing.T) {
	tests := []struct {
		name      string
		ready     bool
		onStartup bool
		wantCalls int
	}{
		{"untrained engine trains", false, false, 1},
		{"restored engine skips", true, false, 0},
		{"restored engine with train on startup", true, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockTrainingEngine(tt.ready)
			svc := NewTrainingService(engine, TrainingServiceConfig{
				TrainOnStartup: tt.onStartup,
				TrainInterval:  time.Hour,
			}, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() = %v, want deadline exceeded", err)
			}
			if got := engine.calls(); got != tt.wantCalls {
				t.Errorf("Train() called %d times, want %d", got, tt.wantCalls)
			}
			if engine.nextScheduled().IsZero() {
				t.Error("next scheduled training not set")
			}
		})
	}
}

func TestTrainingService_Scheduled(t *testing.T) {
	engine := newMockTrainingEngine(true)
	svc := NewTrainingService(engine, TrainingServiceConfig{TrainInterval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-engine.trained:
		case <-time.After(2 * time.Second):
			t.Fatalf("scheduled training %d did not run", i+1)
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestTrainingService_FailuresDoNotStopService(t *testing.T) {
	engine := newMockTrainingEngine(false)
	engine.trainErr = recommend.ErrTrainingInProgress
	svc := NewTrainingService(engine, TrainingServiceConfig{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want deadline exceeded", err)
	}
	if engine.calls() != 1 {
		t.Errorf("Train() called %d times, want 1", engine.calls())
	}
	// Scheduling disabled.
	if !engine.nextScheduled().IsZero() {
		t.Errorf("next scheduled = %v, want zero", engine.nextScheduled())
	}
}

func TestTrainingService_String(t *testing.T) {
	svc := NewTrainingService(newMockTrainingEngine(true), TrainingServiceConfig{}, zerolog.Nop())
	if got := svc.String(); got != "training-service" {
		t.Errorf("String() = %q", got)
	}
}
