package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/config"
)

func testCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestInitThenCompileThenValidateRoundTrip(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	dir := t.TempDir()

	cmd := testCmd(t)
	if err := runInit(cmd, []string{dir}); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	srcPath := filepath.Join(dir, "main.hlx")
	if _, err := os.Stat(srcPath); err != nil {
		t.Fatalf("expected %s to exist: %v", srcPath, err)
	}

	compileOutput = ""
	compileNoCache = true
	opt := compileOptLevel
	debugInfo := compileDebug
	compress := compileCompress
	defer func() {
		compileOptLevel = opt
		compileDebug = debugInfo
		compileCompress = compress
	}()
	compileOptLevel = -1
	compileCompress = "none"

	if err := runCompile(cmd, []string{srcPath}); err != nil {
		t.Fatalf("runCompile failed: %v", err)
	}

	binPath := filepath.Join(dir, "main.hlxb")
	if _, err := os.Stat(binPath); err != nil {
		t.Fatalf("expected %s to exist: %v", binPath, err)
	}

	if err := runValidate(cmd, []string{binPath}); err != nil {
		t.Fatalf("runValidate failed on freshly compiled binary: %v", err)
	}
}

func TestInitRefusesToOverwriteWithoutForce(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	cmd := testCmd(t)

	if err := runInit(cmd, []string{dir}); err != nil {
		t.Fatalf("first runInit failed: %v", err)
	}

	initForce = false
	if err := runInit(cmd, []string{dir}); err == nil {
		t.Fatal("expected second runInit without --force to fail")
	}

	initForce = true
	defer func() { initForce = false }()
	if err := runInit(cmd, []string{dir}); err != nil {
		t.Fatalf("runInit with --force should overwrite: %v", err)
	}
}

func TestDecompileRecoversInitTemplate(t *testing.T) {
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	dir := t.TempDir()
	cmd := testCmd(t)

	if err := runInit(cmd, []string{dir}); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	srcPath := filepath.Join(dir, "main.hlx")
	compileNoCache = true
	compileOptLevel = -1
	compileCompress = "none"
	compileOutput = ""
	if err := runCompile(cmd, []string{srcPath}); err != nil {
		t.Fatalf("runCompile failed: %v", err)
	}

	binPath := filepath.Join(dir, "main.hlxb")
	decompileOutput = filepath.Join(dir, "recovered.hlx")
	if err := runDecompile(cmd, []string{binPath}); err != nil {
		t.Fatalf("runDecompile failed: %v", err)
	}

	if _, err := os.Stat(decompileOutput); err != nil {
		t.Fatalf("expected recovered source at %s: %v", decompileOutput, err)
	}
}

func TestValidateRejectsMalformedSource(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	cmd := testCmd(t)

	badPath := filepath.Join(dir, "bad.hlx")
	if err := os.WriteFile(badPath, []byte("agent {{{ not valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runValidate(cmd, []string{badPath}); err == nil {
		t.Fatal("expected runValidate to fail on malformed source")
	}
}

func TestTimeoutFlagHasPositiveDefault(t *testing.T) {
	if timeout <= 0 {
		t.Fatalf("expected a positive default timeout, got %v", timeout)
	}
	if timeout < time.Second {
		t.Fatalf("expected timeout to be at least a second by default, got %v", timeout)
	}
}
