// Package backup snapshots and restores cycleplanner data: index.json from
// the data directory and the cycle_data.json of every indexed cycle, which
// may live in folders anywhere on disk.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"cycleplanner/internal/fsutil"
	"cycleplanner/internal/storage"
)

// Version constants for the backup format.
const (
	ManifestVersion = "1.0"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"
	cyclesDir       = "cycles"
)

// ErrNoBackups is returned by RestoreLatest when nothing has been backed up.
var ErrNoBackups = errors.New("no backups available")

// Manager handles backup and restore operations.
type Manager struct {
	store      *storage.Storage
	backupDir  string // <data dir>/backups
	appVersion string // Application version for manifest
}

// Manifest contains metadata about a backup.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Files      []string       `json:"files"`
	Cycles     []CycleEntry   `json:"cycles"`
	Stats      map[string]int `json:"stats"`
}

// CycleEntry records where a backed-up cycle file came from.
type CycleEntry struct {
	ID     string `json:"id"`
	Folder string `json:"folder"`
	File   string `json:"file"` // relative to the backup directory
}

// BackupInfo contains summary information about a backup.
type BackupInfo struct {
	Name      string         // Directory name (2025-12-15_143022_123)
	Path      string         // Full path to backup directory
	CreatedAt time.Time      // When the backup was created
	Stats     map[string]int // cycles, goals, works, tasks
}

// NewManager creates a backup manager for the data directory of store.
func NewManager(store *storage.Storage, appVersion string) *Manager {
	return &Manager{
		store:      store,
		backupDir:  filepath.Join(store.DataDir(), BackupsDir),
		appVersion: appVersion,
	}
}

// Dir returns the directory holding all backups.
func (m *Manager) Dir() string {
	return m.backupDir
}

// Create snapshots the index and every indexed cycle file.
// Returns the backup name (timestamp format) on success.
func (m *Manager) Create() (string, error) {
	idx, err := m.store.LoadIndex()
	if errors.Is(err, storage.ErrParse) {
		// The raw index is still copied; its cycle files cannot be located.
		idx, err = &storage.IndexData{}, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read index: %w", err)
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	// Generate backup name from current timestamp (with milliseconds for uniqueness)
	now := time.Now()
	name := fmt.Sprintf("%s_%03d", now.Format("2006-01-02_150405"), now.Nanosecond()/1e6)
	backupPath := filepath.Join(m.backupDir, name)

	if err := os.MkdirAll(filepath.Join(backupPath, cyclesDir), 0700); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Files:      []string{},
		Cycles:     []CycleEntry{},
		Stats:      map[string]int{"cycles": len(idx.Cycles)},
	}

	if fsutil.Exists(m.store.IndexPath()) {
		if err := fsutil.CopyFileAtomic(m.store.IndexPath(), filepath.Join(backupPath, storage.IndexFileName), 0600); err != nil {
			_ = os.RemoveAll(backupPath)
			return "", fmt.Errorf("failed to copy %s: %w", storage.IndexFileName, err)
		}
		manifest.Files = append(manifest.Files, storage.IndexFileName)
	}

	for i, meta := range idx.Cycles {
		src := m.store.Cycles().Path(meta.FolderPath)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}

		rel := filepath.ToSlash(filepath.Join(cyclesDir, fmt.Sprintf("%03d_%s.json", i, storage.SanitizeFolderName(meta.ID))))
		if err := fsutil.CopyFileAtomic(src, filepath.Join(backupPath, filepath.FromSlash(rel)), 0600); err != nil {
			_ = os.RemoveAll(backupPath)
			return "", fmt.Errorf("failed to copy cycle %s: %w", meta.ID, err)
		}

		manifest.Files = append(manifest.Files, rel)
		manifest.Cycles = append(manifest.Cycles, CycleEntry{ID: meta.ID, Folder: meta.FolderPath, File: rel})
		countRecords(src, manifest.Stats)
	}

	manifestPath := filepath.Join(backupPath, ManifestFile)
	if err := fsutil.WriteJSONAtomic(manifestPath, manifest, 0600); err != nil {
		_ = os.RemoveAll(backupPath)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return name, nil
}

// List returns all available backups, sorted by creation time (newest first).
func (m *Manager) List() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue // Skip invalid backups
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Restore writes a backup back into place: index.json into the data
// directory and every cycle file into its recorded folder. A safety backup
// of the current state is taken first.
func (m *Manager) Restore(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}

	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}

	var manifest Manifest
	if err := fsutil.ReadJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		// Without a manifest only the index can be put back.
		manifest.Files = []string{storage.IndexFileName}
		manifest.Cycles = nil
	}

	safetyName, err := m.Create()
	if err != nil {
		return fmt.Errorf("failed to create safety backup: %w", err)
	}

	var restored []string
	indexSrc := filepath.Join(backupPath, storage.IndexFileName)
	if fsutil.Exists(indexSrc) {
		if err := restoreFile(indexSrc, m.store.IndexPath()); err != nil {
			return fmt.Errorf("failed to restore %s (safety backup: %s): %w", storage.IndexFileName, safetyName, err)
		}
		restored = append(restored, m.store.IndexPath())
	}

	for _, c := range manifest.Cycles {
		if c.Folder == "" || !validCycleFile(c.File) {
			continue
		}
		src := filepath.Join(backupPath, filepath.FromSlash(c.File))
		if !fsutil.Exists(src) {
			continue
		}
		dst := m.store.Cycles().Path(c.Folder)
		if err := restoreFile(src, dst); err != nil {
			return fmt.Errorf("failed to restore cycle %s (safety backup: %s): %w", c.ID, safetyName, err)
		}
		restored = append(restored, dst)
	}

	for _, path := range restored {
		if err := validateJSON(path); err != nil {
			return fmt.Errorf("restored file %s is invalid (safety backup: %s): %w", path, safetyName, err)
		}
	}

	return nil
}

// RestoreLatest restores from the most recent backup and returns its name.
func (m *Manager) RestoreLatest() (string, error) {
	backups, err := m.List()
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", ErrNoBackups
	}
	return backups[0].Name, m.Restore(backups[0].Name)
}

// Delete removes a specific backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}

	backupPath := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}

	return os.RemoveAll(backupPath)
}

// Prune removes old backups, keeping only the N most recent.
func (m *Manager) Prune(keepCount int) (int, error) {
	if keepCount < 0 {
		return 0, fmt.Errorf("keepCount must be non-negative")
	}

	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keepCount {
		return 0, nil
	}

	deleted := 0
	for _, backup := range backups[keepCount:] {
		if err := m.Delete(backup.Name); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}

// GetBackup returns information about a specific backup.
func (m *Manager) GetBackup(name string) (*BackupInfo, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(m.backupDir, name)); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}
	return m.info(name)
}

func (m *Manager) info(name string) (*BackupInfo, error) {
	backupPath := filepath.Join(m.backupDir, name)

	var manifest Manifest
	if err := fsutil.ReadJSON(filepath.Join(backupPath, ManifestFile), &manifest); err != nil {
		// Try to parse timestamp from directory name
		createdAt, parseErr := parseBackupName(name)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest.CreatedAt = createdAt
		manifest.Stats = make(map[string]int)
	}

	return &BackupInfo{
		Name:      name,
		Path:      backupPath,
		CreatedAt: manifest.CreatedAt,
		Stats:     manifest.Stats,
	}, nil
}

// Helper functions

func validateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseBackupName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

// validCycleFile reports whether rel stays inside the cycles directory.
func validCycleFile(rel string) bool {
	dir, file := filepath.Split(filepath.FromSlash(rel))
	return filepath.Clean(dir) == cyclesDir && file != "" && file == filepath.Base(file) && strings.HasSuffix(file, ".json")
}

func restoreFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), fsutil.DirPerm); err != nil {
		return err
	}
	return fsutil.CopyFileAtomic(src, dst, fsutil.FilePerm)
}

// validateJSON checks that a file contains valid JSON.
func validateJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Missing file is OK
		}
		return err
	}

	var v any
	return json.Unmarshal(data, &v)
}

// countRecords adds the record counts of a cycle file to stats.
// Unreadable files are skipped.
func countRecords(path string, stats map[string]int) {
	var data storage.CycleData
	if err := fsutil.ReadJSON(path, &data); err != nil {
		return
	}
	stats["goals"] += len(data.Goals)
	stats["works"] += len(data.Works)
	stats["tasks"] += len(data.Tasks)
}

// parseBackupName parses a backup directory name into a timestamp.
// Supports both 2006-01-02_150405 and 2006-01-02_150405_XXX.
func parseBackupName(name string) (time.Time, error) {
	if len(name) == 21 {
		baseTime, err := time.Parse("2006-01-02_150405", name[:17])
		if err != nil {
			return time.Time{}, err
		}
		if name[17] != '_' {
			return time.Time{}, fmt.Errorf("invalid backup format")
		}
		ms, err := strconv.Atoi(name[18:])
		if err != nil || ms < 0 || ms > 999 {
			return time.Time{}, fmt.Errorf("invalid milliseconds")
		}
		return baseTime.Add(time.Duration(ms) * time.Millisecond), nil
	}

	return time.Parse("2006-01-02_150405", name)
}
