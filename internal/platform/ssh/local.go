package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/imamik/inception/internal/platform"
)

// RunLocal executes command through sh on the operator's machine.
func (e *Executor) RunLocal(ctx context.Context, command string, opts platform.RunOptions) (platform.Output, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if opts.ScreenOutput {
		cmd.Stdout = io.MultiWriter(&stdout, e.config.Stdout)
		cmd.Stderr = io.MultiWriter(&stderr, e.config.Stderr)
	}

	err := cmd.Run()
	out := platform.Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return out, &platform.NonZeroExit{
			Command:    command,
			ExitStatus: exitErr.ExitCode(),
			Output:     out,
		}
	}
	return out, fmt.Errorf("running local command %q: %w", command, err)
}
