package runtime

import (
	"bufio"
	"bytes"
	"io/fs"
	"path"
	"room-engine/errors"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// CensoredData is the union of every word list found, with the list names for logging.
type CensoredData struct {
	Words     []string
	Languages []string
}

// CensoredLoader reads one word per line from the .txt files of a directory.
type CensoredLoader struct {
	fs fs.FS
}

func NewCensoredLoader(f fs.FS) *CensoredLoader {
	return &CensoredLoader{fs: f}
}

// LoadAll merges the lists of dir, one list per language ("fr.txt" -> "fr").
// Blank lines and '#' comments are skipped, duplicates across lists are merged.
func (l *CensoredLoader) LoadAll(dir string) (*CensoredData, error) {
	entries, err := fs.ReadDir(l.fs, dir)
	if err != nil {
		return nil, err
	}

	var languages []string
	unique := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			return nil, errors.ErrOnlyCensoredFiles
		}
		if path.Ext(entry.Name()) != ".txt" {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(l.fs, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			unique[line] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(unique) == 0 {
		return nil, errors.ErrEmptyWords
	}
	words := lo.Keys(unique)
	slices.Sort(words)
	return &CensoredData{Words: words, Languages: languages}, nil
}
