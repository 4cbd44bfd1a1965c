// Package agentlog reads the log file the logstash agent writes with --log.
//
// The launcher never parses the agent's events; this package only lets an
// operator see what the agent reported, either as the last lines of the
// file or by following it across rotations.
package agentlog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	launchererrors "logstash-launcher/internal/errors"

	"github.com/nxadm/tail"
	"go.uber.org/zap"
)

// maxLineSize bounds a single line; Java stack traces can be long.
const maxLineSize = 1024 * 1024

// Reader reads one agent log file.
type Reader struct {
	path   string
	logger *zap.Logger
}

// NewReader creates a reader for path.
func NewReader(path string, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{path: path, logger: logger}
}

// Name returns the reader name.
func (r *Reader) Name() string {
	return fmt.Sprintf("file:%s", r.path)
}

// FromEnd makes Follow start at the current end of the file.
const FromEnd int64 = -1

// Last returns the last n entries of the file, oldest first, and the byte
// offset it stopped reading at. n <= 0 returns every entry.
func (r *Reader) Last(ctx context.Context, n int) ([]*Entry, int64, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, 0, launchererrors.NewAgentLogReadError(r.path, err)
	}
	defer file.Close()

	var offset int64
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		offset += int64(advance)
		return advance, token, err
	})

	var entries []*Entry
	lineNum := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		lineNum++
		entries = append(entries, ParseLine(scanner.Text(), lineNum))
		if n > 0 && len(entries) > n {
			entries = entries[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, launchererrors.NewAgentLogReadError(r.path, err)
	}
	return entries, offset, nil
}

// Follow sends entries found past offset, surviving rotation, until ctx is
// cancelled. Pass the offset returned by Last to continue where it stopped,
// or FromEnd. An offset beyond the current size means the file was
// truncated or rotated in between, so Follow starts at its beginning.
func (r *Reader) Follow(ctx context.Context, offset int64, entries chan<- *Entry) error {
	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	if offset >= 0 {
		if info, err := os.Stat(r.path); err == nil && info.Size() < offset {
			r.logger.Debug("agent_log_shrank", zap.Int64("offset", offset), zap.Int64("size", info.Size()))
			offset = 0
		}
		location = &tail.SeekInfo{Offset: offset, Whence: io.SeekStart}
	}

	t, err := tail.TailFile(r.path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Location:  location,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return launchererrors.NewAgentLogReadError(r.path, err)
	}
	defer func() {
		_ = t.Stop()
		t.Cleanup()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				r.logger.Warn("agent_log_line_error", zap.Error(line.Err))
				continue
			}
			select {
			case entries <- ParseLine(line.Text, 0):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
