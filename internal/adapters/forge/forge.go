package forge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// ForgeAdapter runs the project's build command
type ForgeAdapter struct {
	log         *slog.Logger
	projectRoot string
	compiler    config.CompilerConfig
	debug       bool
	out         io.Writer
}

// NewForgeAdapter creates a new build runner for the project
func NewForgeAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *ForgeAdapter {
	f := &ForgeAdapter{
		log:         log.With("component", "ForgeAdapter"),
		projectRoot: cfg.ProjectRoot,
		debug:       cfg.Debug,
		out:         os.Stdout,
	}
	if cfg.Project != nil {
		f.compiler = cfg.Project.Compiler
	}
	return f
}

// Build runs the compile command through a pty so coloured output survives.
// Output is streamed in debug mode and attached to the error otherwise.
func (f *ForgeAdapter) Build(ctx context.Context) error {
	args := f.commandArgs()
	start := time.Now()
	f.log.Debug("running build", "command", strings.Join(args, " "), "dir", f.projectRoot)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = f.projectRoot
	cmd.Env = append(os.Environ(), f.buildEnv(args[0])...)

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", args[0], err)
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	var output bytes.Buffer
	var sink io.Writer = &output
	if f.debug {
		sink = io.MultiWriter(&output, f.out)
	}
	// the pty reports EIO once the child exits
	_, _ = io.Copy(sink, ptyFile)

	err = cmd.Wait()
	duration := time.Since(start)
	if err != nil {
		f.log.Error("build failed", "error", err, "duration", duration)
		return fmt.Errorf("%s failed: %w\nOutput: %s", strings.Join(args, " "), err, output.String())
	}

	f.log.Debug("build completed successfully", "duration", duration)
	return nil
}

func (f *ForgeAdapter) commandArgs() []string {
	args := strings.Fields(f.compiler.Command)
	if len(args) == 0 {
		return []string{"forge", "build"}
	}
	return args
}

// buildEnv passes the solc settings from mangonel.toml to forge
func (f *ForgeAdapter) buildEnv(binary string) []string {
	if filepath.Base(binary) != "forge" {
		return nil
	}

	env := make(map[string]string)
	if f.compiler.Version != "" {
		env["FOUNDRY_SOLC_VERSION"] = f.compiler.Version
	}
	if f.compiler.Optimizer {
		env["FOUNDRY_OPTIMIZER"] = "true"
		env["FOUNDRY_OPTIMIZER_RUNS"] = strconv.Itoa(f.compiler.OptimizerRuns)
	}

	var envStrings []string
	for k, v := range env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(envStrings)
	return envStrings
}

var _ usecase.Compiler = (*ForgeAdapter)(nil)
