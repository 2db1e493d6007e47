package utils

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"k8s.io/klog/v2"
)

// klog log file name pattern, e.g., "program.hostname.user.log.severity.timestamp.pid"
// We are interested in the timestamp part.
// Example: kubemin-workload.localhost.ops.log.INFO.20250725-160435.27455
var klogLogNamePattern = regexp.MustCompile(`.+\..+\..+\.log\.(INFO|WARNING|ERROR|FATAL)\.(\d{8}-\d{6})\.\d+$`)

const (
	klogTimestampFormat  = "20060102-150405"
	cleanupCheckInterval = 24 * time.Hour
	defaultMaxLogAge     = 7 * 24 * time.Hour
)

// StartLogCleanup starts a goroutine that removes expired klog files from
// logDir once immediately and then daily, until ctx is canceled.
func StartLogCleanup(ctx context.Context, logDir string, maxAge time.Duration) {
	if logDir == "" {
		klog.V(2).Info("Log cleanup is disabled because log_dir is not set")
		return
	}
	if maxAge <= 0 {
		maxAge = defaultMaxLogAge
		klog.Warningf("Invalid max log age provided, defaulting to %v", maxAge)
	}

	klog.Infof("Starting log cleanup service for directory %s, with max age %v", logDir, maxAge)

	go func() {
		cleanup(logDir, maxAge)
		ticker := time.NewTicker(cleanupCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanup(logDir, maxAge)
			}
		}
	}()
}

func cleanup(logDir string, maxAge time.Duration) {
	klog.V(4).Infof("Running log cleanup in directory: %s", logDir)
	deleted, err := RemoveExpiredLogs(logDir, time.Now(), maxAge)
	if err != nil {
		klog.Errorf("Failed to clean up log directory %s: %v", logDir, err)
		return
	}
	klog.V(2).Infof("Log cleanup finished. Deleted %d file(s).", deleted)
}

// RemoveExpiredLogs deletes klog files in logDir whose name timestamp is
// older than now-maxAge. Files that do not follow the klog naming scheme
// are left alone. It returns how many files were removed.
func RemoveExpiredLogs(logDir string, now time.Time, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return 0, err
	}

	cutoffTime := now.Add(-maxAge)
	filesDeleted := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		// matches[1] is severity, matches[2] is timestamp
		matches := klogLogNamePattern.FindStringSubmatch(fileName)
		if len(matches) < 3 {
			klog.V(5).Infof("Skipping file with non-matching name: %s", fileName)
			continue
		}

		logTime, err := time.ParseInLocation(klogTimestampFormat, matches[2], now.Location())
		if err != nil {
			klog.Warningf("Could not parse timestamp from log file name %s: %v", fileName, err)
			continue
		}

		if logTime.Before(cutoffTime) {
			filePath := filepath.Join(logDir, fileName)
			klog.V(2).Infof("Deleting old log file: %s", filePath)
			if err := os.Remove(filePath); err != nil {
				klog.Errorf("Failed to delete old log file %s: %v", filePath, err)
				continue
			}
			filesDeleted++
		}
	}
	return filesDeleted, nil
}
