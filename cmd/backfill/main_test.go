package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/team-events/internal/usecase"
)

func TestRunRejectsZeroWorkers(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"run", "--workers", "0"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--workers") {
		t.Fatalf("expected workers error, got %v", err)
	}
}

func TestRunAgainstMemoryStorage(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE_DRIVER", "memory")

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"run", "--attach-roster", "--workers", "2"})
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var result usecase.BackfillResult
	if err := sonic.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("decode output %q: %v", stdout.String(), err)
	}
	if result.EventCount != 0 || result.FailedCount != 0 {
		t.Fatalf("unexpected result on empty store: %+v", result)
	}
}

func TestRunRejectsPositionalArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"run", "extra"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for positional args")
	}
}
