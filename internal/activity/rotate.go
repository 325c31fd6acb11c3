package activity

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Rotate renames both sink files to date-stamped names, e.g.
// honeypot_activity_2026-08-28.log. The next Record call recreates the
// sinks, so rotation is safe while the server is running. Rotation is a
// maintenance operation; consumption of rotated files is out of scope.
func (l *Logger) Rotate(now time.Time) error {
	day := now.UTC().Format("2006-01-02")

	if err := l.text.Rotate(datedPath(l.text.path, day)); err != nil {
		return fmt.Errorf("rotate activity log: %w", err)
	}
	if err := l.splunk.Rotate(datedPath(l.splunk.path, day)); err != nil {
		return fmt.Errorf("rotate splunk log: %w", err)
	}
	return nil
}

func datedPath(path, day string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + day + ext
}
