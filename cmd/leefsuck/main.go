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

package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/jackbister/leefsuck/internal/config"
	"github.com/jackbister/leefsuck/internal/events"
	"github.com/jackbister/leefsuck/internal/files"
	"github.com/jackbister/leefsuck/internal/web"
	"github.com/jackbister/leefsuck/pkg/leefsuck/leef"
	"github.com/jackbister/leefsuck/pkg/leefsuck/parser"

	_ "github.com/mattn/go-sqlite3"
)

var versionString string // This must be set using -ldflags "-X main.versionString=<version>" when building for --version to work

var databaseFileFlag string
var debugFlag bool
var eventDelimiterFlag string
var oneshotFlag bool
var preserveRawFlag bool
var printVersion bool
var readIntervalFlag time.Duration
var webAddrFlag string

func main() {
	flag.StringVar(&databaseFileFlag, "dbfile", "leefsuck.db", "The name of the file in which leefsuck will store parsed events. If the name ':memory:' is used, no file will be created and everything will be stored in memory.")
	flag.BoolVar(&debugFlag, "debug", false, "Log every received event before it is parsed.")
	flag.StringVar(&eventDelimiterFlag, "delimiter", "\n", "The delimiter between events in watched files. Usually \\n.")
	flag.BoolVar(&oneshotFlag, "oneshot", false, "Read lines from the given files (or stdin if no files are given), print each parsed event as JSON and exit instead of serving.")
	flag.BoolVar(&preserveRawFlag, "preserveraw", false, "Add the original trimmed line under the key 'rawEvent' to every parsed event.")
	flag.BoolVar(&printVersion, "version", false, "Print version info and quit.")
	flag.DurationVar(&readIntervalFlag, "readinterval", 1*time.Second, "The duration between reads of watched files.")
	flag.StringVar(&webAddrFlag, "webaddr", ":8080", "The address on which the HTTP API will be exposed.")
	flag.Parse()

	if printVersion {
		if versionString == "" {
			fmt.Println("(unknown version)")
			return
		}
		fmt.Println(versionString)
		return
	}

	if oneshotFlag {
		if err := oneshot(flag.Args()); err != nil {
			log.Fatalln(err.Error())
		}
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	hostName, err := os.Hostname()
	if err != nil {
		log.Fatalf("error getting hostname: %v\n", err)
	}

	cfg := config.Config{
		HostName:         hostName,
		EventDelimiter:   regexp.MustCompile(eventDelimiterFlag),
		PreserveRawEvent: preserveRawFlag,

		SQLite: &config.SqliteConfig{
			DatabaseFile: databaseFileFlag,
		},
		Web: &config.WebConfig{
			Enabled: true,
			Address: webAddrFlag,
		},
	}
	for _, file := range flag.Args() {
		cfg.Files = append(cfg.Files, config.FileConfig{
			Filename:     file,
			ReadInterval: readIntervalFlag,
		})
	}

	db, err := sql.Open("sqlite3", "file:"+cfg.SQLite.DatabaseFile+"?cache=shared&_journal_mode=WAL")
	if err != nil {
		log.Fatalln(err.Error())
	}
	repo, err := events.SqliteRepository(db, logger.With("name", "SqliteRepository"))
	if err != nil {
		log.Fatalln(err.Error())
	}

	fileParser := &parser.LeefFileParser{
		Cfg: parser.LeefParserConfig{
			EventDelimiter:   cfg.EventDelimiter,
			PreserveRawEvent: cfg.PreserveRawEvent,
		},
		Logger: logger.With("name", "LeefFileParser"),
	}
	publisher := events.RepositoryEventPublisher(repo, fileParser, logger.With("name", "RepositoryEventPublisher"))
	if debugFlag {
		publisher = events.DebugEventPublisher(publisher, logger.With("name", "DebugEventPublisher"))
	}

	ctx := context.Background()
	for _, fileCfg := range cfg.Files {
		fw := files.NewFileWatcher(files.FileWatcherConfig{
			Filename:     fileCfg.Filename,
			FileParser:   fileParser,
			ReadInterval: fileCfg.ReadInterval,
		}, cfg.HostName, publisher, ctx, logger.With("name", "FileWatcher", "fileName", fileCfg.Filename))
		go fw.Start()
	}

	w := web.NewWeb(&cfg, repo, publisher, logger.With("name", "Web"))
	log.Fatalln(w.Serve())
}

// oneshot reads lines from the given files, or stdin when none are given, and
// prints each parsed event as a JSON object on its own line. Lines that do not
// parse are reported on stderr. Returns an error only when a file cannot be
// read.
func oneshot(filenames []string) error {
	if len(filenames) == 0 {
		return oneshotReader(os.Stdin)
	}
	for _, filename := range filenames {
		f, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("error opening file '%v': %w", filename, err)
		}
		err = oneshotReader(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("error reading file '%v': %w", filename, err)
		}
	}
	return nil
}

func oneshotReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	encoder := json.NewEncoder(os.Stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields, err := leef.ToMap(line, preserveRawFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error parsing line: %v\n", err)
			continue
		}
		if err := encoder.Encode(fields); err != nil {
			return fmt.Errorf("error encoding parsed event: %w", err)
		}
	}
	return scanner.Err()
}
