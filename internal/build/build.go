// Package build runs an external site build tool with the deploy base path
// exported to it.
package build

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// DefaultBaseEnv is the variable most front-end build tools read the public
// base path from.
const DefaultBaseEnv = "PUBLIC_URL"

// Command describes one build invocation.
type Command struct {
	BaseEnv  string
	BasePath string
	Name     string
	Args     []string
	Dir      string
	Stdout   io.Writer
	Stderr   io.Writer
}

// Env returns the child environment: the current one with the base path
// variable set. A later entry wins over an inherited one.
func (c Command) Env() []string {
	name := c.BaseEnv
	if name == "" {
		name = DefaultBaseEnv
	}
	return append(os.Environ(), name+"="+c.BasePath)
}

// Run executes the tool and returns its exit status. A non-zero exit is
// not an error; failing to start the tool is.
func Run(ctx context.Context, c Command) (int, error) {
	if c.Name == "" {
		return -1, errors.New("no build command given")
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = c.Env()
	cmd.Dir = c.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, errors.Wrapf(err, "failed to run %s", c.Name)
	}
	return 0, nil
}
