package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
)

type FileInfo struct {
	Path         string
	LastModified int64
	Content      []byte
}

func scanFile(path string) (*FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &FileInfo{
		Path:         path,
		LastModified: info.ModTime().Unix(),
		Content:      content,
	}, nil
}

func scanDirectory(root string) ([]*FileInfo, error) {
	log := commonlog.GetLogger("store")
	var files []*FileInfo

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && filepath.Ext(path) == ".md" {
			fileInfo, err := scanFile(path)
			if err != nil {
				log.Errorf("failed to scan file %s: %s", path, err.Error())
				return nil // Continue walking despite error
			}
			files = append(files, fileInfo)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}
