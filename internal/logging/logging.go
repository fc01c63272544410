package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/leonardotrapani/lyricsync/internal/config"
)

// Setup routes the standard logger to stderr and, when cfg.File is set, to a
// rotating file as well. The returned closer flushes the file.
func Setup(cfg config.LoggingConfig) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, err
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, writer))
	return writer, nil
}
