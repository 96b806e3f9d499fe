// Package sweep finds and removes record folders left behind by publishes
// that failed before writing record.json.
package sweep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/logging"
)

// Orphan is an unfinished record folder.
type Orphan struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Files   int       `json:"files"`
}

// Find lists folders that match the identifier grammar, have no record.json
// and were last modified before now minus olderThan. Publishes still in
// flight are younger than any sensible threshold and are left alone.
func Find(st *store.Store, olderThan time.Duration, now time.Time) ([]Orphan, error) {
	ids, _, err := st.Folders()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	cutoff := now.Add(-olderThan)
	var out []Orphan
	for _, id := range ids {
		folder := st.FolderPath(id)
		complete, err := hasCanonical(folder)
		if err != nil {
			return nil, err
		}
		if complete {
			continue
		}
		info, err := os.Stat(folder)
		if err != nil {
			return nil, errors.WrapIO("stat", folder, err)
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		entries, err := os.ReadDir(folder)
		if err != nil {
			return nil, errors.WrapIO("read", folder, err)
		}
		out = append(out, Orphan{ID: id, Path: folder, ModTime: info.ModTime(), Files: len(entries)})
	}
	return out, nil
}

// Remove deletes the given orphans. A folder that gained record.json since it
// was found is kept. It returns the identifiers actually removed.
func Remove(ctx context.Context, orphans []Orphan) ([]string, error) {
	logger := logging.FromContext(ctx)
	var removed []string
	for _, o := range orphans {
		complete, err := hasCanonical(o.Path)
		if err != nil {
			return removed, err
		}
		if complete {
			logger.Info().Str("mineral", o.ID).Msg("Folder completed since scan, keeping it")
			continue
		}
		if err := os.RemoveAll(o.Path); err != nil {
			return removed, errors.WrapIO("delete", o.Path, err)
		}
		logger.Info().Str("mineral", o.ID).Int("files", o.Files).Msg("Removed orphaned record folder")
		removed = append(removed, o.ID)
	}
	return removed, nil
}

// Age thresholds.
const (
	DefaultAge  = constants.DefaultOrphanAge
	MinApplyAge = constants.MinOrphanApplyAge
)

// CheckAge rejects thresholds that could delete a publish in progress.
// Listing accepts any non-negative age.
func CheckAge(olderThan time.Duration, apply bool) error {
	if olderThan < 0 {
		return errors.NewValidationError("older_than", olderThan.String(), "'older_than' must not be negative")
	}
	if apply && olderThan < MinApplyAge {
		return errors.NewValidationError("older_than", olderThan.String(),
			fmt.Sprintf("'older_than' must be at least %s when deleting", MinApplyAge))
	}
	return nil
}

func hasCanonical(folder string) (bool, error) {
	_, err := os.Stat(filepath.Join(folder, constants.CanonicalMetadataFile))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.WrapIO("stat", folder, err)
	}
}
