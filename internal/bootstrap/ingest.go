package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Ingester populates the record store. Implementations must honor ctx
// cancellation.
type Ingester interface {
	Ingest(ctx context.Context) error
}

// IngesterFunc adapts a function to Ingester.
type IngesterFunc func(ctx context.Context) error

// Ingest calls f(ctx).
func (f IngesterFunc) Ingest(ctx context.Context) error { return f(ctx) }

// CommandIngester runs the external ingestion job as a child process. Its
// output is forwarded to the log line by line.
type CommandIngester struct {
	// Command is split on whitespace; the first field is the program.
	Command string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

// Ingest runs the command and waits for it. Cancelling ctx kills the process.
func (c *CommandIngester) Ingest(ctx context.Context) error {
	fields := strings.Fields(c.Command)
	if len(fields) == 0 {
		return errors.New("ingestion command is empty")
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = log.Logger.With().Str("stream", "stdout").Str("job", "ingest").Logger()
	cmd.Stderr = log.Logger.With().Str("stream", "stderr").Str("job", "ingest").Logger()
	// A killed job's grandchildren may hold the pipes open.
	cmd.WaitDelay = 5 * time.Second

	log.Info().Str("command", cmd.String()).Str("dir", c.Dir).Msg("running ingestion job")
	return cmd.Run()
}
