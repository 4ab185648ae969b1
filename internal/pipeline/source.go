package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/nxadm/tail"
	"go.uber.org/zap"
)

// LineSource is a line-oriented byte source driving the ingestion loop:
// standard input, a journalctl subprocess, or a tailed log file.
type LineSource interface {
	// Lines returns the record channel. It is closed when the source ends.
	Lines() <-chan string
	// Err reports why the source ended. Valid after Lines is closed;
	// nil means a clean end of input.
	Err() error
}

// readerSource scans any io.Reader line by line. It backs the stdin source.
type readerSource struct {
	lines chan string
	err   error
}

// NewStdinSource reads one record per line from standard input until
// end-of-input.
func NewStdinSource() LineSource {
	return newReaderSource(os.Stdin)
}

func newReaderSource(r io.Reader) *readerSource {
	s := &readerSource{lines: make(chan string)}
	go s.run(r)
	return s
}

func (s *readerSource) run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}
	s.err = scanner.Err()
	close(s.lines)
}

func (s *readerSource) Lines() <-chan string { return s.lines }
func (s *readerSource) Err() error           { return s.err }

// journalSource follows a journalctl subprocess. When its stdout closes,
// whatever the subprocess wrote to stderr becomes the source's fatal error.
type journalSource struct {
	cmd   *exec.Cmd
	lines chan string
	err   error
}

// NewJournalSource spawns `journalctl -o json -f` and follows its output.
// The journal feed only exists on linux; elsewhere the source refuses to
// start.
func NewJournalSource(ctx context.Context) (LineSource, error) {
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("journal source requires linux, running on %s", runtime.GOOS)
	}

	cmd := exec.CommandContext(ctx, "journalctl", "-o", "json", "-f")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe journalctl stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe journalctl stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start journalctl: %w", err)
	}

	s := &journalSource{cmd: cmd, lines: make(chan string)}
	go s.run(stdout, stderr)
	return s, nil
}

func (s *journalSource) run(stdout, stderr io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.lines <- scanner.Text()
	}

	// stdout closed: the subprocess died, its stderr is the diagnostic
	diag, _ := io.ReadAll(stderr)
	_ = s.cmd.Wait()

	switch {
	case len(strings.TrimSpace(string(diag))) > 0:
		s.err = fmt.Errorf("journalctl terminated: %s", strings.TrimSpace(string(diag)))
	case scanner.Err() != nil:
		s.err = fmt.Errorf("journalctl read: %w", scanner.Err())
	default:
		s.err = fmt.Errorf("journalctl terminated unexpectedly")
	}
	close(s.lines)
}

func (s *journalSource) Lines() <-chan string { return s.lines }
func (s *journalSource) Err() error           { return s.err }

// fileSource follows a growing log file of JSON records.
type fileSource struct {
	lines chan string
	err   error
}

// NewFileSource tails path, starting at its current end, surviving
// rotation and truncation.
func NewFileSource(ctx context.Context, path string, logger *zap.Logger) (LineSource, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      true, // polling for better compatibility
		Location:  &tail.SeekInfo{Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail %s: %w", path, err)
	}

	s := &fileSource{lines: make(chan string)}
	go func() {
		<-ctx.Done()
		_ = t.Stop()
	}()
	go s.run(t, logger)
	return s, nil
}

func (s *fileSource) run(t *tail.Tail, logger *zap.Logger) {
	defer t.Cleanup()

	for line := range t.Lines {
		if line.Err != nil {
			logger.Error("error reading line", zap.String("file", t.Filename), zap.Error(line.Err))
			continue
		}
		s.lines <- line.Text
	}
	s.err = t.Err()
	close(s.lines)
}

func (s *fileSource) Lines() <-chan string { return s.lines }
func (s *fileSource) Err() error           { return s.err }
