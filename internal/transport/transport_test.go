package transport

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSSHExecArgs(t *testing.T) {
	args := sshExecArgs("h1", 2222, []string{"echo", "hi"})
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-q", "StrictHostKeyChecking=no", "PasswordAuthentication=no",
		"NumberOfPasswordPrompts=0", "ConnectTimeout=5", "-p 2222", "h1",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected args to contain %q, got %q", want, joined)
		}
	}
	if args[len(args)-2] != "echo" || args[len(args)-1] != "hi" {
		t.Errorf("expected trailing argv preserved, got %v", args)
	}
}

func TestSCPCopyArgs_NonRecursive(t *testing.T) {
	args := scpCopyArgs(22, "local.cfg", RemoteRef("h1", "/tmp/agent.cfg"), false)
	joined := strings.Join(args, " ")
	if strings.Contains(joined, " -r ") || strings.HasSuffix(joined, " -r") {
		t.Errorf("did not expect -r in non-recursive copy: %v", args)
	}
	if args[len(args)-2] != "local.cfg" || args[len(args)-1] != "h1:/tmp/agent.cfg" {
		t.Errorf("unexpected src/dst ordering: %v", args)
	}
}

func TestSCPCopyArgs_Recursive(t *testing.T) {
	args := scpCopyArgs(22, "./agent", RemoteRef("h1", "/tmp/x"), true)
	found := false
	for _, a := range args {
		if a == "-r" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected -r flag in recursive copy args: %v", args)
	}
}

func TestRemoteRef(t *testing.T) {
	if got := RemoteRef("h1", "/tmp/x"); got != "h1:/tmp/x" {
		t.Errorf("expected h1:/tmp/x, got %q", got)
	}
}

func TestProcess_WaitAndSignalIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := startProcess(ctx, "sh", []string{"-c", "exit 0"})
	if err != nil {
		t.Fatalf("startProcess: %v", err)
	}
	if code := p.Wait(); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
	if !p.Exited() {
		t.Error("expected Exited() true after Wait()")
	}
	// Signaling an already-exited process must be a silent no-op, never an
	// error from signaling a dead pid (spec testable property 5).
	if err := p.Signal(SignalInterrupt); err != nil {
		t.Errorf("expected idempotent Signal on exited process, got %v", err)
	}
}

func TestProcess_NonZeroExit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := startProcess(ctx, "sh", []string{"-c", "exit 7"})
	if err != nil {
		t.Fatalf("startProcess: %v", err)
	}
	if code := p.Wait(); code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
}
