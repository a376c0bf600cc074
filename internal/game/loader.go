package game

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadRoster reads player names from a list of paths (files or directories).
// Each non-blank line is one name; lines starting with '#' are comments.
func LoadRoster(paths []string) ([]string, error) {
	var names []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
			}
			for _, entry := range files {
				if entry.IsDir() {
					continue
				}
				n, err := loadFile(filepath.Join(path, entry.Name()))
				if err != nil {
					return nil, err
				}
				names = append(names, n...)
			}
		} else {
			n, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			names = append(names, n...)
		}
	}

	return names, nil
}

func loadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan file %s: %w", path, err)
	}

	return names, nil
}
