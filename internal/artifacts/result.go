package artifacts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/taskdeck/taskdeck/internal/models"
)

// ResultName is the result file name inside a run's output directory.
const ResultName = "result.json"

// WriteResult writes the task result as indented JSON into dir.
func WriteResult(dir string, result *models.TaskResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating result directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}

	path := filepath.Join(dir, ResultName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}
	return path, nil
}

// CompressEventLog compresses dir/events.ndjson into
// dir/events.ndjson.zst and removes the original. A missing log is not
// an error.
func CompressEventLog(dir string) (string, error) {
	src := filepath.Join(dir, EventLogName)
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer in.Close()

	dst := src + ".zst"
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	zw, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}

	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		out.Close()
		return "", fmt.Errorf("compressing event log: %w", err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	in.Close()
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("removing uncompressed event log: %w", err)
	}
	return dst, nil
}
