package transcript

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/duynv223/talklink/internal/vpipe/capsules/services"
	"github.com/duynv223/talklink/internal/vpipe/core"
)

// Writer records Payloads observed on a pipeline's asr_script/tran_script
// output ports to a CSV file, one row per payload. Grounded on the
// teacher's internal/transcript/logger.go, adapted from "streamer room +
// bilingual caption pair" rows to the vpipe Payload shape (direction,
// speaker, origin/translated text).
type Writer struct {
	mu        sync.Mutex
	file      *os.File
	writer    *csv.Writer
	name      string
	session   string
	startTime time.Time
}

// NewWriter creates a transcript writer for a pipeline run. Files are saved
// as: <dir>/<name>_<date>_<time>.csv
func NewWriter(dir, name string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	now := time.Now()
	session := now.Format("20060102_150405")
	safeName := sanitize(name)
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", safeName, session))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create transcript file: %w", err)
	}

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		f.Close()
		return nil, fmt.Errorf("write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	w.Write([]string{"time", "timeline", "direction", "speaker", "final", "src_lang", "origin", "dest_lang", "translated"})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	return &Writer{
		file:      f,
		writer:    w,
		name:      name,
		session:   session,
		startTime: now,
	}, nil
}

// WritePayload appends one row for p.
func (w *Writer) WritePayload(p *services.Payload) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer == nil {
		return
	}
	now := time.Now()
	ts := now.Format("15:04:05")
	elapsed := now.Sub(w.startTime)
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60
	timeline := fmt.Sprintf("%d:%02d", minutes, seconds)

	row := []string{
		ts, timeline,
		string(p.Direction), p.Speaker, fmt.Sprintf("%t", p.IsFinal),
		p.SrcLang, p.OriginText,
		p.DestLang, p.TranslatedText,
	}
	if err := w.writer.Write(row); err != nil {
		slog.Error("transcript write failed", "err", err)
		return
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		slog.Error("transcript flush failed", "err", err)
	}
}

// Attach installs w as a script-tap chain callback on port, so every
// Payload pushed through asr_script/tran_script is recorded without
// consuming the port (data still flows to any linked targets afterward).
func (w *Writer) Attach(port *core.Port) {
	port.SetChainCallback(func(ctx context.Context, portName string, data any) error {
		if p, ok := data.(*services.Payload); ok {
			w.WritePayload(p)
		}
		return nil
	})
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer != nil {
		w.writer.Flush()
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// Path returns the file path.
func (w *Writer) Path() string {
	if w.file == nil {
		return ""
	}
	return w.file.Name()
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|' {
			out = append(out, '_')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

// ListFiles returns all files in dir in reverse filename order; since file
// names end in the session's start time, each pipeline name's transcripts
// come newest first.
func ListFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []FileInfo
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	return files, nil
}

// ListFilesForName returns transcripts whose filename starts with name.
func ListFilesForName(dir, name string) ([]FileInfo, error) {
	all, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	prefix := sanitize(name) + "_"
	var filtered []FileInfo
	for _, f := range all {
		if strings.HasPrefix(f.Name, prefix) {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

// FileInfo describes a transcript file.
type FileInfo struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time"`
}
