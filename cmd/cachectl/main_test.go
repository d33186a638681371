package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func runCmd(t *testing.T, mr *miniredis.Miniredis, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"-redis", mr.Addr()}, args...)
	err := run(context.Background(), full, &out, &errOut)
	return strings.TrimSpace(out.String()), err
}

func TestCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OMEGA_CACHE_PREFIX", "cli:")
	mr := miniredis.RunT(t)

	if out, err := runCmd(t, mr, "put", "greeting", "hello"); err != nil || out != "OK" {
		t.Fatalf("put = %q, %v", out, err)
	}
	if v, _ := mr.Get("cli:greeting"); v != "hello" {
		t.Fatalf("stored %q", v)
	}
	if out, _ := runCmd(t, mr, "get", "greeting"); out != "hello" {
		t.Fatalf("get = %q", out)
	}
	if out, _ := runCmd(t, mr, "get", "missing"); out != "(nil)" {
		t.Fatalf("get missing = %q", out)
	}
	if out, _ := runCmd(t, mr, "exists", "greeting"); out != "true" {
		t.Fatalf("exists = %q", out)
	}
	if out, _ := runCmd(t, mr, "put-if-absent", "a", "b"); out != "true" {
		t.Fatalf("put-if-absent = %q", out)
	}
	if out, _ := runCmd(t, mr, "put-if-absent", "b", "c"); out != "false" {
		t.Fatalf("second put-if-absent = %q", out)
	}
	if out, _ := runCmd(t, mr, "count", "a", "b", "c", "greeting"); out != "3" {
		t.Fatalf("count = %q", out)
	}
	if out, _ := runCmd(t, mr, "del", "a", "b", "c"); out != "2" {
		t.Fatalf("del = %q", out)
	}
}

func TestBloomCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	mr := miniredis.RunT(t)

	if _, err := runCmd(t, mr, "bloom-add", "k"); err == nil {
		t.Fatalf("expected error with bloom disabled")
	}

	t.Setenv("OMEGA_CACHE_BLOOM_ENABLED", "true")
	if out, err := runCmd(t, mr, "bloom-add", "k"); err != nil || out != "OK" {
		t.Fatalf("bloom-add = %q, %v", out, err)
	}
	if out, _ := runCmd(t, mr, "bloom-contains", "k"); out != "true" {
		t.Fatalf("bloom-contains = %q", out)
	}
}

func TestUsage(t *testing.T) {
	t.Chdir(t.TempDir())
	mr := miniredis.RunT(t)

	if _, err := runCmd(t, mr, "get"); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v; want usage", err)
	}
	if _, err := runCmd(t, mr, "frobnicate", "x"); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v; want usage", err)
	}
}
