package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func testStreams() (ioStreams, *bytes.Buffer, *bytes.Buffer) {
	var out, errb bytes.Buffer
	return ioStreams{in: strings.NewReader(""), out: &out, err: &errb}, &out, &errb
}

func TestRunCLIMissingCommand(t *testing.T) {
	streams, _, errb := testStreams()
	err := runCLI(context.Background(), nil, streams)
	if err == nil || !strings.Contains(err.Error(), "missing command") {
		t.Fatalf("runCLI() error = %v, want missing command", err)
	}
	if !strings.Contains(errb.String(), "Usage:") {
		t.Fatal("usage not printed on missing command")
	}
}

func TestRunCLIUnknownCommand(t *testing.T) {
	streams, _, _ := testStreams()
	err := runCLI(context.Background(), []string{"frobnicate"}, streams)
	if err == nil || !strings.Contains(err.Error(), `unknown command "frobnicate"`) {
		t.Fatalf("runCLI() error = %v", err)
	}
}

func TestRunCLIHelp(t *testing.T) {
	streams, _, errb := testStreams()
	if err := runCLI(context.Background(), []string{"help"}, streams); err != nil {
		t.Fatalf("runCLI(help) error = %v", err)
	}
	for _, cmd := range []string{"chat", "ask", "tools"} {
		if !strings.Contains(errb.String(), cmd) {
			t.Errorf("help output does not mention %q", cmd)
		}
	}
}

func TestAskRequiresMessage(t *testing.T) {
	streams, _, _ := testStreams()
	err := runCLI(context.Background(), []string{"ask"}, streams)
	if err == nil || !strings.Contains(err.Error(), "requires a message") {
		t.Fatalf("runCLI(ask) error = %v", err)
	}
}

func TestSubcommandHelp(t *testing.T) {
	for _, cmd := range []string{"chat", "ask", "tools"} {
		t.Run(cmd, func(t *testing.T) {
			streams, _, errb := testStreams()
			if err := runCLI(context.Background(), []string{cmd, "-h"}, streams); err != nil {
				t.Fatalf("runCLI(%s -h) error = %v", cmd, err)
			}
			if !strings.Contains(errb.String(), "Usage: angi "+cmd) {
				t.Fatalf("usage for %q not printed: %s", cmd, errb.String())
			}
		})
	}
}
