package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"laneswitch/core"
	"laneswitch/host/logger"
)

// Prefix of firmware debug lines; they carry no checksum.
const debugPrefix = "#"

// maxLine bounds a line; longer input is dropped as malformed.
const maxLine = 1024

var errLineTooLong = errors.New("status line too long")

// Read parses status lines from r into store until r reports io.EOF or ctx
// is done. A final line without newline is parsed too.
func Read(ctx context.Context, r io.Reader, store *Store) error {
	return scan(ctx, r, store, 0)
}

// Follow is Read for a serial port with a read timeout, which reports EOF
// whenever the line is idle: on EOF it waits idle and reads again. Closing
// r unblocks a pending read after ctx is cancelled.
func Follow(ctx context.Context, r io.Reader, store *Store, idle time.Duration) error {
	if idle <= 0 {
		idle = 10 * time.Millisecond
	}
	return scan(ctx, r, store, idle)
}

func scan(ctx context.Context, r io.Reader, store *Store, idle time.Duration) error {
	br := bufio.NewReaderSize(r, maxLine)
	var partial strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := br.ReadString('\n')
		partial.WriteString(chunk)

		if err == nil {
			HandleLine(ctx, partial.String(), store)
			partial.Reset()
			continue
		}
		if partial.Len() > maxLine {
			store.RecordError(errLineTooLong)
			logger.Warnf(ctx, "dropping %d bytes without newline", partial.Len())
			partial.Reset()
		}

		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case !errors.Is(err, io.EOF):
			return fmt.Errorf("read status: %w", err)
		case idle == 0:
			HandleLine(ctx, partial.String(), store)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idle):
		}
	}
}

// HandleLine parses one line into store. Debug lines are logged, bad lines
// are counted and skipped.
func HandleLine(ctx context.Context, line string, store *Store) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if strings.HasPrefix(line, debugPrefix) {
		logger.DebugKV(ctx, "firmware", "msg", strings.TrimSpace(strings.TrimPrefix(line, debugPrefix)))
		return
	}

	st, err := core.ParseStatus(line)
	if err != nil {
		store.RecordError(err)
		logger.WarnKV(ctx, "skipping status line", "line", line, "error", err)
		return
	}
	store.Update(st)
}
