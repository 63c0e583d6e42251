package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ritchiero/Budget-Agent/internal/logger"
	"github.com/ritchiero/Budget-Agent/internal/model"
)

// SessionIndexFiles are the candidate session index names, in lookup order
var SessionIndexFiles = []string{"sessions_real.json", "sessions.json"}

// maxLineBytes caps a single log line. Longer lines are skipped.
var maxLineBytes = 16 * 1024 * 1024

// FindLogFiles returns the sorted *.jsonl files directly inside dir.
// A missing directory yields no files and no error.
func FindLogFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		// Stat follows symlinks
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

// readLine reads up to the next newline. Lines over maxLineBytes are
// consumed and reported as too long.
func readLine(r *bufio.Reader) ([]byte, bool, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > maxLineBytes {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return buf, tooLong, err
	}
}

// ParseFile parses a single JSONL file and returns its "message" records
func ParseFile(path string) ([]model.LogMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	source := filepath.Base(path)
	var messages []model.LogMessage
	reader := bufio.NewReaderSize(file, 64*1024)

	lineNo := 0
	skipped := 0
	oversized := 0
	for {
		line, tooLong, readErr := readLine(reader)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, readErr
		}
		if len(line) > 0 || tooLong {
			lineNo++
		}

		switch {
		case tooLong:
			oversized++
		case len(bytes.TrimSpace(line)) == 0:
		default:
			var msg model.LogMessage
			if err := json.Unmarshal(line, &msg); err != nil {
				// Skip malformed lines
				skipped++
			} else if msg.Type == "message" {
				msg.SourceFile = source
				messages = append(messages, msg)
			}
		}

		if readErr != nil {
			break
		}
	}

	if skipped > 0 || oversized > 0 {
		logger.Log.WithFields(logrus.Fields{
			"file":      source,
			"skipped":   skipped,
			"oversized": oversized,
			"lines":     lineNo,
		}).Debug("Skipped malformed log lines")
	}

	return messages, nil
}

// LoadMessages parses every log file in dir in file-name order
func LoadMessages(dir string) ([]model.LogMessage, error) {
	files, err := FindLogFiles(dir)
	if err != nil {
		return nil, err
	}

	var all []model.LogMessage
	for _, f := range files {
		msgs, err := ParseFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(f), err)
		}
		all = append(all, msgs...)
	}

	logger.Log.WithFields(logrus.Fields{
		"data_dir": dir,
		"files":    len(files),
		"messages": len(all),
	}).Debug("Loaded session logs")

	return all, nil
}

// LoadSessions reads the first session index file found in dir.
// Returns an empty map when none exists.
func LoadSessions(dir string) (map[string]model.SessionMeta, error) {
	for _, name := range SessionIndexFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		sessions := make(map[string]model.SessionMeta, len(raw))
		for key, entry := range raw {
			var meta model.SessionMeta
			if err := json.Unmarshal(entry, &meta); err != nil {
				logger.Log.WithFields(logrus.Fields{
					"file":        name,
					"session_key": key,
					"error":       err.Error(),
				}).Debug("Skipped unreadable session entry")
				continue
			}
			sessions[key] = meta
		}
		return sessions, nil
	}
	return map[string]model.SessionMeta{}, nil
}
