// Copyright 2023 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package files

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/jackbister/leefsuck/internal/events"
	"github.com/jackbister/leefsuck/pkg/leefsuck/parser"
)

// FileWatcherCommand is a command that can be sent to a FileWatcher to tell it to perform various actions
type FileWatcherCommand int

const (
	// CommandReopen closes the file and opens it again
	CommandReopen FileWatcherCommand = 1
)

type FileWatcherConfig struct {
	Filename     string
	FileParser   parser.FileParser
	ReadInterval time.Duration
}

// FileWatcher watches a file and publishes events as they are written to the file.
type FileWatcher struct {
	cfg FileWatcherConfig
	ctx context.Context

	hostName string

	commands       chan FileWatcherCommand
	eventPublisher events.EventPublisher
	file           io.Reader

	currentSourceId string
	currentOffset   int64
	readBuf         []byte
	workingBuf      []byte

	logger *slog.Logger
}

func NewFileWatcher(
	cfg FileWatcherConfig,
	hostName string,
	eventPublisher events.EventPublisher,
	ctx context.Context,
	logger *slog.Logger,
) *FileWatcher {
	return &FileWatcher{
		cfg: cfg,
		ctx: ctx,

		hostName: hostName,

		commands:       make(chan FileWatcherCommand),
		eventPublisher: eventPublisher,
		file:           nil,

		currentOffset: 0,
		readBuf:       make([]byte, 4096),
		workingBuf:    make([]byte, 0, 4096),

		logger: logger,
	}
}

// Start begins watching the file. It reads appended data on the configured
// interval and reopens the file when a CommandReopen arrives, which the
// fsnotify goroutine sends when the file is recreated during log rotation.
// Start blocks until the context is done.
func (fw *FileWatcher) Start() {
	fw.watchForRecreation()
	ticker := time.NewTicker(fw.cfg.ReadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-fw.ctx.Done():
			fw.closeFile()
			return
		case cmd := <-fw.commands:
			if cmd == CommandReopen && fw.file != nil {
				fw.readToEnd()
				fw.closeFile()
			}
		case <-ticker.C: // Proceed
		}
		if fw.file == nil {
			f, err := os.Open(fw.cfg.Filename)
			if err != nil {
				fw.logger.Warn("error opening file, will retry later",
					slog.String("fileName", fw.cfg.Filename))
			} else {
				fw.file = f
				fw.currentSourceId = uuid.NewString()
				fw.currentOffset = 0
				fw.workingBuf = fw.workingBuf[:0]
				fw.logger.Info("opened file",
					slog.String("fileName", fw.cfg.Filename),
					slog.String("sourceId", fw.currentSourceId))
			}
		}
		if fw.file != nil {
			fw.readToEnd()
		}
	}
}

// watchForRecreation sets up an fsnotify watch on the file's directory and
// sends CommandReopen on the commands channel when the watched file is
// created, removed or renamed. If the watch cannot be created the watcher
// falls back to interval reads alone.
func (fw *FileWatcher) watchForRecreation() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fw.logger.Warn("error creating fsnotify watcher, will only read on the configured interval",
			slog.String("fileName", fw.cfg.Filename),
			slog.Any("error", err))
		return
	}
	err = watcher.Add(filepath.Dir(fw.cfg.Filename))
	if err != nil {
		fw.logger.Warn("error watching directory, will only read on the configured interval",
			slog.String("fileName", fw.cfg.Filename),
			slog.Any("error", err))
		watcher.Close()
		return
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-fw.ctx.Done():
				return
			case evt := <-watcher.Events:
				if filepath.Base(evt.Name) != filepath.Base(fw.cfg.Filename) {
					continue
				}
				if evt.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case fw.commands <- CommandReopen:
				case <-fw.ctx.Done():
					return
				}
			case err := <-watcher.Errors:
				fw.logger.Warn("got fsnotify error",
					slog.String("fileName", fw.cfg.Filename),
					slog.Any("error", err))
			}
		}
	}()
}

func (fw *FileWatcher) closeFile() {
	if closer, ok := fw.file.(io.Closer); ok {
		closer.Close()
	}
	fw.file = nil
}

func (fw *FileWatcher) readToEnd() {
	for read, err := fw.file.Read(fw.readBuf); read != 0; read, err = fw.file.Read(fw.readBuf) {
		if err != nil && err != io.EOF {
			fw.logger.Error("unexpected error, will abort read",
				slog.String("fileName", fw.cfg.Filename),
				slog.Any("error", err))
			break
		}
		fw.workingBuf = append(fw.workingBuf, fw.readBuf[:read]...)
		if fw.cfg.FileParser.CanSplit(fw.workingBuf) {
			fw.handleEvents()
		}
	}
}

func (fw *FileWatcher) handleEvents() {
	s := string(fw.workingBuf)
	splitResult := fw.cfg.FileParser.Split(s)
	for _, res := range splitResult.Events {
		evt := events.RawEvent{
			Raw:      res.Raw,
			Host:     fw.hostName,
			Source:   fw.cfg.Filename,
			SourceId: fw.currentSourceId,
			Offset:   fw.currentOffset + res.Offset,
		}
		fw.eventPublisher.PublishEvent(evt)
	}
	consumed := len(s) - len(splitResult.Remainder)
	fw.currentOffset += int64(consumed)
	fw.workingBuf = fw.workingBuf[:0]
	fw.workingBuf = append(fw.workingBuf, []byte(splitResult.Remainder)...)
}
