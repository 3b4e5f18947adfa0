package lexicon

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/articlescore/internal/model"
)

// DefaultCommentPrefix marks comment lines in the Hu & Liu opinion lexicon
const DefaultCommentPrefix = ";"

// LoadOptions controls how word lists are parsed
type LoadOptions struct {
	CommentPrefix string // Lines starting with this prefix are skipped; empty disables comments
}

// LoadStats summarizes a word list load
type LoadStats struct {
	Lines    int // Lines read
	Comments int // Comment lines skipped
	Skipped  int // Malformed lines skipped
	Words    int // Distinct words kept
}

// Load reads a newline-delimited word list. Each non-comment line must hold
// exactly one word; lines with inner whitespace are skipped as malformed.
func Load(r io.Reader, opts LoadOptions) (*WordSet, LoadStats, error) {
	var stats LoadStats

	data, err := readText(r)
	if err != nil {
		return nil, stats, err
	}

	set := NewWordSet()
	scanner := bufio.NewScanner(strings.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if opts.CommentPrefix != "" && strings.HasPrefix(line, opts.CommentPrefix) {
			stats.Comments++
			continue
		}
		if strings.ContainsFunc(line, unicode.IsSpace) {
			stats.Skipped++
			continue
		}
		set.words[normalize(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan word list: %w", err)
	}

	stats.Words = set.Len()
	return set, stats, nil
}

// LoadFile loads a word list from path. Unreadable or missing files fail
// with *model.LoadError.
func LoadFile(path string, opts LoadOptions) (*WordSet, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, &model.LoadError{Source: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	set, stats, err := Load(f, opts)
	if err != nil {
		return nil, stats, &model.LoadError{Source: path, Err: err}
	}
	return set, stats, nil
}

// LoadStopWords loads stop words from files or directories. Directories
// contribute every *.txt file they contain. Text files are split on
// whitespace; anything after a '|' on a line is an annotation and ignored.
// YAML files (.yaml, .yml) are read as a `terms:` list.
func LoadStopWords(paths ...string) (*WordSet, error) {
	set := NewWordSet()

	for _, p := range paths {
		files, err := expandPath(p)
		if err != nil {
			return nil, &model.LoadError{Source: p, Err: err}
		}
		for _, file := range files {
			if err := loadStopFile(set, file); err != nil {
				return nil, &model.LoadError{Source: file, Err: err}
			}
		}
	}

	return set, nil
}

func loadStopFile(set *WordSet, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	data, err := readText(f)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var list struct {
			Terms []string `yaml:"terms"`
		}
		if err := yaml.Unmarshal([]byte(data), &list); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
		for _, t := range list.Terms {
			if w := normalize(t); w != "" {
				set.words[w] = struct{}{}
			}
		}
	default:
		for _, line := range strings.Split(data, "\n") {
			if idx := strings.Index(line, "|"); idx >= 0 {
				line = line[:idx]
			}
			for _, field := range strings.Fields(line) {
				set.words[normalize(field)] = struct{}{}
			}
		}
	}
	return nil
}

// expandPath returns path itself for files, or the sorted *.txt files of a directory
func expandPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// readText reads r fully. Input that is not valid UTF-8 is decoded as Latin-1.
func readText(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(decoded), nil
}
