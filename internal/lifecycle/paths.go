package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/studiowebux/beeactions/internal/config"
	"github.com/studiowebux/beeactions/internal/store"
	"github.com/studiowebux/beeactions/internal/types"
)

// DefaultContainerPath returns the next free container path for the day
// Containers are named base_path/YYYYMMDD/base_name_YYYYMMDD_NNN.bee, or use the
// custom name when one is set.
func DefaultContainerPath(opts types.SavingOptions, now time.Time) (string, error) {
	base, err := config.ResolveDataPath(opts.BasePath)
	if err != nil {
		return "", err
	}
	if base == "" {
		return "", errors.New("no base path configured for containers")
	}

	date := now.Format("20060102")
	dir := filepath.Join(base, date)

	if custom := strings.TrimSpace(opts.CustomName); custom != "" {
		if !strings.HasSuffix(custom, store.Extension) {
			custom += store.Extension
		}
		return filepath.Join(dir, custom), nil
	}

	name := opts.BaseName
	if name == "" {
		name = types.DefaultSavingOptions().BaseName
	}
	prefix := fmt.Sprintf("%s_%s_", name, date)

	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("list containers: %w", err)
	}

	next := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem, ok := strings.CutSuffix(entry.Name(), store.Extension)
		if !ok {
			continue
		}
		suffix, ok := strings.CutPrefix(stem, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n >= next {
			next = n + 1
		}
	}

	return filepath.Join(dir, fmt.Sprintf("%s%03d%s", prefix, next, store.Extension)), nil
}
