// Package logger provides a structured logging interface for the fan club downloader.
//
// It wraps zerolog and offers:
//   - Multiple log levels (Debug, Info, Warn, Error, Fatal)
//   - Structured logging with fields
//   - Coloured console output when stdout is a terminal
//   - A plain text mirror of every event in a log file
//   - A global logger instance for easy access
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File:  "/var/log/fantiadl.log",
//	}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("crawl started")
//	logger.WithField("fan_club", "12345").Info("discovering pages")
//	logger.WithError(err).Error("crawl failed")
//
// Crawl loops report their position through LogProgress:
//
//	logger.LogProgress(log, "post", 2, 10, "/posts/42", "start")
//	// post 2/10 [/posts/42] parse start.
package logger
