package pipeline

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/oicur0t/gelfwd/internal/config"
	"github.com/oicur0t/gelfwd/pkg/gelf"
)

// Loop drives records from a line source through the transformer, chunker
// and UDP sender. It owns a private working copy of the watched
// configuration and refreshes it from the shared store at most once per
// record, so a reload is visible on the very next processed line.
type Loop struct {
	source  LineSource
	sender  *UDPSender
	store   *config.Store
	logger  *zap.Logger
	working config.Watched
}

// NewLoop assembles an ingestion loop around a source and a bound sender.
func NewLoop(source LineSource, sender *UDPSender, store *config.Store, logger *zap.Logger) *Loop {
	return &Loop{
		source:  source,
		sender:  sender,
		store:   store,
		logger:  logger,
		working: store.Snapshot(),
	}
}

// Run processes records until the source ends or the context is cancelled.
// Per-record failures are logged and skipped; a source error is fatal and
// returned.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("start reading records")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-l.source.Lines():
			if !ok {
				return l.source.Err()
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if l.store.Changed() {
				l.applyConfig(l.store.Snapshot())
				l.store.Ack()
			}

			l.process(line)
		}
	}
}

// process transforms one record and sends the resulting datagrams.
func (l *Loop) process(line string) {
	payload, err := Transform(line, &l.working)
	switch {
	case errors.Is(err, ErrInsufficientLogLevel):
		// expected filtering outcome
		return

	case errors.Is(err, ErrNoMessage):
		l.logger.Debug("no message field found")
		return

	case err != nil:
		l.logger.Warn("record dropped", zap.Error(err), zap.String("record", line))
		return
	}

	chunked, err := gelf.NewChunkedMessage(gelf.ChunkSizeWAN, payload)
	if err != nil {
		l.logger.Error("chunking failed", zap.Error(err))
		return
	}

	for _, datagram := range chunked.Datagrams() {
		if err := l.sender.Send(l.working.GraylogAddr, l.working.GraylogAddrTTL, datagram); err != nil {
			l.logger.Error("sender failure", zap.Error(err))
		}
	}
}

// applyConfig merges a fresh watched snapshot into the working copy,
// logging every field that actually changed.
func (l *Loop) applyConfig(next config.Watched) {
	cur := &l.working

	if cur.GraylogAddr != next.GraylogAddr {
		l.logger.Info("config changed: graylog_addr",
			zap.String("old", cur.GraylogAddr), zap.String("new", next.GraylogAddr))
		cur.GraylogAddr = next.GraylogAddr
	}

	if cur.GraylogAddrTTL != next.GraylogAddrTTL {
		l.logger.Info("config changed: graylog_addr_ttl",
			zap.Duration("old", cur.GraylogAddrTTL), zap.Duration("new", next.GraylogAddrTTL))
		cur.GraylogAddrTTL = next.GraylogAddrTTL
	}

	if cur.Compression != next.Compression {
		l.logger.Info("config changed: compression",
			zap.Stringer("old", cur.Compression), zap.Stringer("new", next.Compression))
		cur.Compression = next.Compression
	}

	if cur.Team != next.Team {
		l.logger.Info("config changed: team",
			zap.String("old", cur.Team), zap.String("new", next.Team))
		cur.Team = next.Team
	}

	if cur.Service != next.Service {
		l.logger.Info("config changed: service",
			zap.String("old", cur.Service), zap.String("new", next.Service))
		cur.Service = next.Service
	}

	if cur.LogLevelSystem != next.LogLevelSystem {
		l.logger.Info("config changed: log_level_system",
			zap.Stringer("old", cur.LogLevelSystem), zap.Stringer("new", next.LogLevelSystem))
		cur.LogLevelSystem = next.LogLevelSystem
	}

	if !messageLevelEqual(cur.LogLevelMessage, next.LogLevelMessage) {
		l.logger.Info("config changed: log_level_message",
			zap.String("old", messageLevelName(cur.LogLevelMessage)),
			zap.String("new", messageLevelName(next.LogLevelMessage)))
		cur.LogLevelMessage = next.LogLevelMessage
	}
}

func messageLevelEqual(a, b *gelf.MessageLevel) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func messageLevelName(l *gelf.MessageLevel) string {
	if l == nil {
		return "unset"
	}
	return l.String()
}
