package collect

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
)

// Source collects one dataset from one upstream. Implementations log
// and skip failed units rather than aborting: a broken member page
// never contaminates the rest of the collection.
type Source interface {
	Name() string
	Collect(ctx context.Context) (model.Dataset, error)
}

// Logf receives per-record progress and skip messages. nil is silent.
type Logf func(format string, args ...any)

// ReadURLsFromFile reads biography URLs from a file, one per line,
// skipping blanks, comments and duplicates.
func ReadURLsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return urls, nil
}
