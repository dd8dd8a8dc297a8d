// Package storage manages the per-batch output folders rendered
// documents and bundles are written into.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// SanitizeName returns a filesystem-safe version of the name.
// Removes path separators and parent directory references to prevent
// directory traversal.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return unsafeNameChars.ReplaceAllString(name, "")
}

// FolderManager manages batch-scoped output folders under a base
// directory.
type FolderManager struct {
	baseDir string
	logger  *zap.Logger
}

// NewFolderManager creates a FolderManager rooted at baseDir.
func NewFolderManager(baseDir string, logger *zap.Logger) *FolderManager {
	return &FolderManager{
		baseDir: baseDir,
		logger:  logger,
	}
}

// CreateBatchFolder creates <baseDir>/<batchID>/ and returns its path.
func (m *FolderManager) CreateBatchFolder(batchID string) (string, error) {
	if batchID == "" {
		return "", fmt.Errorf("cannot create folder: empty batch ID")
	}

	folderPath := m.BatchFolderPath(batchID)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		m.logger.Error("Failed to create batch folder",
			zap.String("batch_id", batchID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	m.logger.Debug("Created batch folder",
		zap.String("batch_id", batchID),
		zap.String("folder_path", folderPath))

	return folderPath, nil
}

// BatchFolderPath returns the folder path for a batch without creating it.
func (m *FolderManager) BatchFolderPath(batchID string) string {
	return filepath.Join(m.baseDir, SanitizeName(batchID))
}

// FolderExists checks whether a batch folder already exists.
func (m *FolderManager) FolderExists(batchID string) bool {
	info, err := os.Stat(m.BatchFolderPath(batchID))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DeleteBatchFolder removes a batch folder and all contents. Idempotent:
// deleting a missing folder is not an error.
func (m *FolderManager) DeleteBatchFolder(batchID string) error {
	folderPath := m.BatchFolderPath(batchID)

	if _, err := os.Stat(folderPath); os.IsNotExist(err) {
		return nil
	}

	if err := os.RemoveAll(folderPath); err != nil {
		m.logger.Error("Failed to delete batch folder",
			zap.String("batch_id", batchID),
			zap.String("folder_path", folderPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	return nil
}
