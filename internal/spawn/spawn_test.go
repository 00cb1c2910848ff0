package spawn

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "script")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStartRecordsAndExit(t *testing.T) {
	t.Parallel()

	cmd := script(t, `
echo 'line one'
echo 'line two'
`)
	proc, err := Start(context.Background(), Config{Command: cmd})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer proc.Close()

	var lines []string
	for rec := range proc.Records() {
		lines = append(lines, string(rec))
	}
	if len(lines) != 2 || lines[0] != "line one" || lines[1] != "line two" {
		t.Errorf("records = %v", lines)
	}

	if err := proc.Wait(); err != nil {
		t.Errorf("wait: %v", err)
	}
	if proc.ExitCode() != 0 {
		t.Errorf("exit code = %d, want 0", proc.ExitCode())
	}
}

func TestStartNonzeroExit(t *testing.T) {
	t.Parallel()

	cmd := script(t, `
echo 'something went wrong' >&2
exit 7
`)
	proc, err := Start(context.Background(), Config{Command: cmd})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer proc.Close()

	for range proc.Records() {
	}
	if err := proc.Wait(); err == nil {
		t.Fatal("expected a wait error for nonzero exit")
	}
	if proc.ExitCode() != 7 {
		t.Errorf("exit code = %d, want 7", proc.ExitCode())
	}
	if !strings.Contains(proc.Stderr(), "something went wrong") {
		t.Errorf("stderr = %q", proc.Stderr())
	}
}

func TestStartMissingBinary(t *testing.T) {
	t.Parallel()

	// Both resolution paths must report the same not-found error: a bare
	// name fails the PATH lookup inside exec.Command, while an explicit
	// path only fails at Start with a raw ENOENT.
	tests := map[string]string{
		"bare name":      "automaker-no-such-binary",
		"qualified path": filepath.Join(t.TempDir(), "no-such-binary"),
	}

	for name, command := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Start(context.Background(), Config{Command: command})
			if !errors.Is(err, exec.ErrNotFound) {
				t.Fatalf("expected exec.ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStderrTailBounded(t *testing.T) {
	t.Parallel()

	cmd := script(t, `
i=0
while [ $i -lt 200 ]; do
  echo "stderr line $i" >&2
  i=$((i+1))
done
`)
	proc, err := Start(context.Background(), Config{Command: cmd})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer proc.Close()

	for range proc.Records() {
	}
	if err := proc.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	lines := strings.Split(proc.Stderr(), "\n")
	if len(lines) != stderrTailSize {
		t.Errorf("stderr tail = %d lines, want %d", len(lines), stderrTailSize)
	}
	if lines[len(lines)-1] != "stderr line 199" {
		t.Errorf("tail should keep the newest lines, last = %q", lines[len(lines)-1])
	}
}

func TestCloseAbandonedStream(t *testing.T) {
	t.Parallel()

	// The consumer walks away mid-stream; Close must still reap the process
	// even though most records were never read.
	cmd := script(t, `
i=0
while [ $i -lt 5000 ]; do
  echo "record $i"
  i=$((i+1))
done
`)
	proc, err := Start(context.Background(), Config{Command: cmd, GraceTimeout: time.Second})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	<-proc.Records()

	done := make(chan struct{})
	go func() {
		proc.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Close did not reap the abandoned process")
	}
}

func TestContextCancellationTerminates(t *testing.T) {
	t.Parallel()

	cmd := script(t, `
echo 'up'
sleep 60
`)
	ctx, cancel := context.WithCancel(context.Background())
	proc, err := Start(ctx, Config{Command: cmd, GraceTimeout: time.Second})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer proc.Close()

	select {
	case <-proc.Records():
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for first record")
	}

	start := time.Now()
	cancel()
	for range proc.Records() {
	}
	proc.Wait()

	if elapsed := time.Since(start); elapsed > 15*time.Second {
		t.Errorf("termination took %v", elapsed)
	}
}

func TestStdinDelivered(t *testing.T) {
	t.Parallel()

	cmd := script(t, `
read line
echo "got: $line"
`)
	proc, err := Start(context.Background(), Config{Command: cmd, Stdin: []byte("hello\n")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer proc.Close()

	rec, ok := <-proc.Records()
	if !ok || string(rec) != "got: hello" {
		t.Errorf("record = %q, ok = %v", rec, ok)
	}
}
