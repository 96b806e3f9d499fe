// Package store implements the folder-per-record disk layout.
//
// Each record lives in <root>/minerals/<identifier>/ and holds one
// record.<lang>.json per language, the canonical record.json written with
// base-language values, and the image file.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/logging"
	"github.com/waajacu/minerals/pkg/minerals"
)

const tracerName = "github.com/waajacu/minerals/internal/store"

// Store reads and writes record folders under a data root.
type Store struct {
	root string
	dir  string
}

// New returns a Store rooted at dataRoot. Records live in dataRoot/minerals.
func New(dataRoot string) *Store {
	return &Store{
		root: dataRoot,
		dir:  filepath.Join(dataRoot, constants.MineralsDir),
	}
}

// Root returns the data root.
func (s *Store) Root() string { return s.root }

// Dir returns the records directory.
func (s *Store) Dir() string { return s.dir }

// FolderPath returns the absolute location of a record folder.
func (s *Store) FolderPath(id string) string {
	return filepath.Join(s.dir, id)
}

// Ensure creates the records directory if it does not exist.
func (s *Store) Ensure() error {
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", s.dir, err)
	}
	return nil
}

// MetadataFileName returns record.<lang>.json.
func MetadataFileName(lang i18n.Code) string {
	return constants.RecordPrefix + "." + string(lang) + constants.MetadataExt
}

// Resolve picks the metadata file to read for lang: the language file, then
// the base language file, then the canonical record.json.
func (s *Store) Resolve(id string, lang i18n.Code) (string, error) {
	folder := s.FolderPath(id)
	candidates := []string{MetadataFileName(lang)}
	if !lang.IsBase() {
		candidates = append(candidates, MetadataFileName(i18n.Base()))
	}
	candidates = append(candidates, constants.CanonicalMetadataFile)

	for _, name := range candidates {
		path := filepath.Join(folder, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", &errors.NotFoundError{
		Resource: "metadata",
		ID:       id,
		Message:  fmt.Sprintf("no metadata found in %s", id),
	}
}

// ReadRecord decodes one metadata file.
func ReadRecord(path string) (minerals.DiskRecord, error) {
	var r minerals.DiskRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return r, errors.WrapIO("read", path, err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, errors.WrapParse("json", path, err)
	}
	return r, nil
}

// Folders lists the directory entries that match the identifier grammar.
// Entries that do not match are returned separately.
func (s *Store) Folders() (valid []string, ignored []string, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, nil, errors.WrapIO("scan", s.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if minerals.ValidIdentifier(e.Name()) {
			valid = append(valid, e.Name())
		} else {
			ignored = append(ignored, e.Name())
		}
	}
	sort.Strings(valid)
	return valid, ignored, nil
}

// Skip records why a folder was left out of a scan.
type Skip struct {
	Folder string `json:"folder"`
	Reason string `json:"reason"`
}

// ScanResult is the outcome of a full directory scan for one language.
type ScanResult struct {
	Minerals []minerals.Mineral
	Skipped  []Skip
}

// Scan reads every record for lang. Folders with a bad name, no metadata or
// unparseable metadata are skipped and logged; only a failure to read the
// records directory itself is returned as an error.
func (s *Store) Scan(ctx context.Context, lang i18n.Code) (ScanResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "store.scan")
	defer span.End()
	span.SetAttributes(attribute.String("lang", string(lang)))

	logger := logging.FromContext(ctx)
	var result ScanResult

	if err := s.Ensure(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	ids, ignored, err := s.Folders()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	for _, name := range ignored {
		result.Skipped = append(result.Skipped, Skip{Folder: name, Reason: "folder name is not a record identifier"})
	}

	for _, id := range ids {
		path, err := s.Resolve(id, lang)
		if err != nil {
			logger.Debug().Str("folder", id).Msg("Skipping folder without metadata")
			result.Skipped = append(result.Skipped, Skip{Folder: id, Reason: "no metadata file"})
			continue
		}
		record, err := ReadRecord(path)
		if err != nil {
			logger.Warn().Err(err).Str("folder", id).Str("path", path).Msg("Skipping unreadable record")
			result.Skipped = append(result.Skipped, Skip{Folder: id, Reason: err.Error()})
			continue
		}
		result.Minerals = append(result.Minerals, record.ToMineral(id, constants.PublicDataPrefix))
	}

	span.SetAttributes(
		attribute.Int("records", len(result.Minerals)),
		attribute.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// Exists reports whether a record folder (or any entry with that name) exists.
func (s *Store) Exists(id string) (bool, error) {
	_, err := os.Lstat(s.FolderPath(id))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.WrapIO("stat", s.FolderPath(id), err)
	}
}

// CreateFolder creates a new record folder. It fails with ErrAlreadyExists if
// the name is taken.
func (s *Store) CreateFolder(id string) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	path := s.FolderPath(id)
	if err := os.Mkdir(path, constants.DirPermissions); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("record folder %s: %w", id, errors.ErrAlreadyExists)
		}
		return errors.WrapIO("create", path, err)
	}
	return nil
}

// WriteFile writes a file into a record folder through a temp file and rename,
// so readers never observe a partially written file.
func (s *Store) WriteFile(id, name string, data []byte) error {
	folder := s.FolderPath(id)
	tmp, err := os.CreateTemp(folder, "."+name+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", folder, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Chmod(constants.FilePermissions); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("chmod", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpName, err)
	}
	dest := filepath.Join(folder, name)
	if err := os.Rename(tmpName, dest); err != nil {
		return errors.WrapIO("rename", dest, err)
	}
	return nil
}

// WriteRecord writes a metadata file as indented JSON.
func (s *Store) WriteRecord(id, name string, r minerals.DiskRecord) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.WrapParse("json", name, err)
	}
	return s.WriteFile(id, name, append(data, '\n'))
}
