package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	stopErr  error
	block    bool

	mu      *sync.Mutex
	stopped *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.startErr
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.stopped = append(*s.stopped, s.name)
	return s.stopErr
}

func newFakes(names ...string) ([]*fakeService, *[]string) {
	var mu sync.Mutex
	stopped := []string{}
	fakes := make([]*fakeService, 0, len(names))
	for _, name := range names {
		fakes = append(fakes, &fakeService{name: name, block: true, mu: &mu, stopped: &stopped})
	}
	return fakes, &stopped
}

func TestRunnerCancelStopsInReverseOrder(t *testing.T) {
	fakes, stopped := newFakes("http", "worker")
	runner := NewRunner(fakes[0], nil, fakes[1])

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled run should not fail: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
	if strings.Join(*stopped, ",") != "worker,http" {
		t.Fatalf("stop order want worker,http got %v", *stopped)
	}
}

func TestRunnerServiceFailureStopsOthers(t *testing.T) {
	fakes, stopped := newFakes("http", "worker")
	boom := errors.New("listen failed")
	fakes[0].block = false
	fakes[0].startErr = boom
	fakes[1].stopErr = errors.New("drain timeout")

	err := NewRunner(fakes[0], fakes[1]).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "http: listen failed") {
		t.Fatalf("want start failure reported, got %v", err)
	}
	if !strings.Contains(err.Error(), "stop worker: drain timeout") {
		t.Fatalf("want stop failure joined, got %v", err)
	}
	if len(*stopped) != 2 {
		t.Fatalf("all services should be stopped, got %v", *stopped)
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw  string
		want Mode
		ok   bool
	}{
		{raw: "", want: ModeAll, ok: true},
		{raw: " API ", want: ModeAPI, ok: true},
		{raw: "worker", want: ModeWorker, ok: true},
		{raw: "cron", ok: false},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.raw)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseMode(%q) = %q, %v", tc.raw, got, err)
		}
	}
}

func TestModeSelectsServices(t *testing.T) {
	if !ModeAll.servesHTTP() || !ModeAPI.servesHTTP() || ModeWorker.servesHTTP() {
		t.Fatalf("only all and api should serve http")
	}
	if ModeAll.runsWorker(false) || !ModeAll.runsWorker(true) {
		t.Fatalf("all mode should follow queue switch")
	}
	if !ModeWorker.runsWorker(false) || ModeAPI.runsWorker(true) {
		t.Fatalf("worker mode always consumes, api never does")
	}
}

func TestHTTPServiceListenFailure(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:-1", nil)
	if err := svc.Start(context.Background()); err == nil || !strings.Contains(err.Error(), "listen 127.0.0.1:-1") {
		t.Fatalf("want listen error, got %v", err)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop after failed start should succeed: %v", err)
	}
}
