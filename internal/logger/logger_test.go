package logger

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveLogFilePathDefaultsToWorkdirLogs(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{Filename: "  "})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	want, err := filepath.EvalSymlinks(filepath.Join(dir, defaultLogDirName))
	if err != nil {
		t.Fatalf("default log dir not created: %v", err)
	}
	gotDir, _ := filepath.EvalSymlinks(filepath.Dir(got))
	if gotDir != want || filepath.Base(got) != defaultLogFilename {
		t.Fatalf("log path want %s/%s got %s", want, defaultLogFilename, got)
	}
}

func TestNewChoosesSinkByMode(t *testing.T) {
	cases := []struct {
		mode     string
		wantFile bool
	}{
		{mode: "release", wantFile: true},
		{mode: " Debug ", wantFile: false},
	}
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			dir := t.TempDir()
			log := New(tc.mode, Options{Dir: dir, Filename: "ledger.log"})
			log.Info("sink-check")
			_ = log.Sync()

			content, err := os.ReadFile(filepath.Join(dir, "ledger.log"))
			if !tc.wantFile {
				if !os.IsNotExist(err) {
					t.Fatalf("debug mode should not create a log file")
				}
				return
			}
			if err != nil || !strings.Contains(string(content), `"message":"sink-check"`) {
				t.Fatalf("release log should be JSON in file, got %q err=%v", string(content), err)
			}
		})
	}
}

func TestTenantLoggerBindsTenantID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	previous := L
	L = zap.New(core)
	t.Cleanup(func() { L = previous })

	Tenant(42, "transaction_id", "txn-1").Infow("ledger_refund_recorded", "amount", "40.00")

	entries := logs.FilterMessage("ledger_refund_recorded").All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["tenant_id"] != uint64(42) {
		t.Fatalf("tenant_id want 42 got %v", fields["tenant_id"])
	}
	if fields["transaction_id"] != "txn-1" || fields["amount"] != "40.00" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestTenantLoggerReportsCallerSite(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	previous := L
	L = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	t.Cleanup(func() { L = previous })

	_, _, line, _ := runtime.Caller(0)
	Tenant(7).Infow("ledger_payment_completed")
	SW("request_id", "req-1").Infow("request_done")

	for _, message := range []string{"ledger_payment_completed", "request_done"} {
		entries := logs.FilterMessage(message).All()
		if len(entries) != 1 {
			t.Fatalf("expected one %s entry, got %d", message, len(entries))
		}
		caller := entries[0].Caller
		if !strings.HasSuffix(caller.File, "logger_test.go") {
			t.Fatalf("%s caller file want logger_test.go got %s", message, caller.File)
		}
		if caller.Line <= line || caller.Line > line+2 {
			t.Fatalf("%s caller line want near %d got %d", message, line+1, caller.Line)
		}
	}
}
