package forecastlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

// Entry is one pipeline run: what was asked, what state the pipeline
// reached and which sources degraded. Appended as JSONL to a daily file.
type Entry struct {
	Time            string   `json:"time"`
	Company         string   `json:"company"`
	Place           string   `json:"place"`
	State           string   `json:"state"`
	NarrativeLen    int      `json:"narrative_len"`
	DegradedSources []string `json:"degraded_sources"`
	Fallback        bool     `json:"fallback"`
}

func logDir() string {
	if v := os.Getenv("ASTROBOT_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	d := t.In(time.FixedZone("MSK", 3*3600)).Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

// Append writes one entry. Callers treat failures as best-effort: a broken
// log disk must never block a user-facing response.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().In(time.FixedZone("MSK", 3*3600))
	e.Time = now.Format("2006-01-02 15:04:05")

	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips daily files older than retentionDays and removes the
// originals. Zero or negative retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
