package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSteps(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{name: "default", want: 1},
		{name: "explicit", args: []string{"3"}, want: 3},
		{name: "zero", args: []string{"0"}, wantErr: true},
		{name: "garbage", args: []string{"x"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSteps(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("parseSteps(%v) = %d, %v", tc.args, got, err)
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion(" 20260101000000 "); err != nil || v != 20260101000000 {
		t.Fatalf("unexpected version: %d %v", v, err)
	}
	if v, err := parseVersion("-1"); err != nil || v != -1 {
		t.Fatalf("expected -1 to be accepted, got %d %v", v, err)
	}
	if _, err := parseVersion("-2"); err == nil {
		t.Fatalf("expected error for -2")
	}
}

func TestResolveMigrationsDirPrefersFlag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATIONS_DIR", filepath.Join(dir, "missing"))

	got, err := resolveMigrationsDir(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != dir {
		t.Fatalf("unexpected dir: %q", got)
	}
}

func TestResolveMigrationsDirNotFound(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd) //nolint:errcheck

	t.Setenv("MIGRATIONS_DIR", "")
	if _, err := resolveMigrationsDir(""); err == nil {
		t.Fatalf("expected error when no directory exists")
	}
}

func TestUpRequiresDBURL(t *testing.T) {
	t.Setenv("DB_URL", "")
	root := newRootCmd()
	root.SetArgs([]string{"up"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error without DB_URL")
	}
}
