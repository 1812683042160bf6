package eventlog

import (
	"context"
	"errors"
	"fmt"
	"os"
)

const archiveTimeLayout = "20060102_150405"

// rotateIfNeeded renames an oversized log to <path>.<yyyyMMdd_HHmmss>.archive.
// It only runs from Open, before replay and before the writer exists, so no
// writer can observe the rename. Failures are logged and Open carries on with
// the original file.
func (r *FileOrderRepository) rotateIfNeeded(ctx context.Context) (string, bool) {
	if r.maxLogSize <= 0 {
		return "", false
	}

	info, err := os.Stat(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Cannot stat event log, rotation skipped", "path", r.path, "error", err)
		return "", false
	}

	if info.Size() < r.maxLogSize {
		r.logger.DebugContext(ctx, "Event log within size limit",
			"size_bytes", info.Size(), "limit_bytes", r.maxLogSize)
		return "", false
	}

	archive := fmt.Sprintf("%s.%s.archive", r.path, r.now().Format(archiveTimeLayout))
	if err = os.Rename(r.path, archive); err != nil {
		r.logger.ErrorContext(ctx, "Event log rotation failed, continuing with the current file",
			"path", r.path, "archive", archive, "error", err)
		return "", false
	}

	r.logger.WarnContext(ctx, "Event log rotated",
		"size_bytes", info.Size(), "limit_bytes", r.maxLogSize, "archive", archive)
	return archive, true
}
