/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package logging builds the zap logger used across the module.
//
// Events are written as JSON, either to a lumberjack-rotated file or to
// stderr, and optionally teed to a console encoder for interactive use.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction. The zero value logs JSON at info
// level to stderr.
type Options struct {
	// File is the log file path. Empty means stderr.
	File string
	// MaxSizeMB, MaxBackups and MaxAgeDays tune rotation of File.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Tee adds a console core writing to Console.
	Tee bool
	// Console receives the tee output; nil means stdout.
	Console io.Writer
	// Level is the minimum level; nil means info.
	Level *zapcore.Level
	// Global installs the logger with zap.ReplaceGlobals.
	Global bool
}

// New returns a logger built from opts.
func New(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Level != nil {
		level = *opts.Level
	}

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 50),
			MaxBackups: orDefault(opts.MaxBackups, 7),
			MaxAge:     orDefault(opts.MaxAgeDays, 14),
			Compress:   true,
		})
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		NameKey:      "logger",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
		EncodeName:   zapcore.FullNameEncoder,
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level),
	}
	if opts.Tee {
		var out io.Writer = os.Stdout
		if opts.Console != nil {
			out = opts.Console
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(out),
			level,
		))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(sink))
	if opts.Global {
		zap.ReplaceGlobals(log)
	}
	return log, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
