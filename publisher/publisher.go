// Package publisher persists generated conversations as static HTML pages
// addressable by keyword.
package publisher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

var (
	// ErrInvalidKeyword is returned before any path is built from a keyword
	// that fails the allow-list.
	ErrInvalidKeyword = errors.New("invalid keyword")

	// ErrWriteFailed wraps any storage error during publishing.
	ErrWriteFailed = errors.New("write failed")
)

// keywordPattern is the sole defense against path traversal and must pass
// before any path construction.
var keywordPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Publisher writes pages under a fixed public root.
type Publisher struct {
	root   string
	logger *zap.Logger
}

func New(root string, logger *zap.Logger) *Publisher {
	if root == "" {
		root = "public"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{root: root, logger: logger}
}

// Publish writes content to <root>/<keyword>.html and returns the public
// relative path. The same keyword always maps to the same file; republishing
// replaces the whole file, and concurrent publishes to one keyword are
// last-writer-wins.
func (p *Publisher) Publish(keyword, content string) (string, error) {
	if !keywordPattern.MatchString(keyword) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKeyword, keyword)
	}

	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	target := filepath.Join(p.root, keyword+".html")
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	p.logger.Info("published page",
		zap.String("keyword", keyword),
		zap.String("path", target),
		zap.Int("bytes", len(content)))
	return "/" + keyword + ".html", nil
}

// Root returns the directory pages are published under.
func (p *Publisher) Root() string {
	return p.root
}
