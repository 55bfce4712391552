package cmd

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	original := verbose
	t.Cleanup(func() {
		verbose = original
		versionCmd.SetOut(nil)
	})

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)

	verbose = false
	versionCmd.Run(versionCmd, nil)
	if got := buf.String(); got != "pagescan version "+Version+"\n" {
		t.Fatalf("unexpected short version %q", got)
	}

	buf.Reset()
	verbose = true
	versionCmd.Run(versionCmd, nil)
	for _, want := range []string{"Git Commit: " + GitCommit, "Build Date: " + BuildDate, "Go Version: " + runtime.Version()} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in verbose output:\n%s", want, buf.String())
		}
	}
}
