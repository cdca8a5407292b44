// Package receipts appends publication receipts to per-product files.
package receipts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure FileLog implements the interface.
var _ driven.ReceiptLog = (*FileLog)(nil)

const (
	// DefaultDir is used when no directory is configured.
	DefaultDir = "retorno"

	fileExt   = ".ml"
	separator = "----------------------------------------"
	noID      = "Ml ID não retornado"
)

// FileLog writes one "<code>.ml" file per product.
type FileLog struct {
	dir string
	mu  sync.Mutex
}

// NewFileLog creates a receipt log rooted at dir.
func NewFileLog(dir string) *FileLog {
	if dir == "" {
		dir = DefaultDir
	}
	return &FileLog{dir: dir}
}

// Dir returns the receipts directory.
func (l *FileLog) Dir() string {
	return l.dir
}

// Append adds a receipt block to the product's file.
func (l *FileLog) Append(_ context.Context, receipt domain.Receipt) error {
	code := sanitize(receipt.InternalCode)
	if code == "" {
		return fmt.Errorf("%w: código do produto vazio", domain.ErrInvalidInput)
	}
	id := receipt.MarketplaceID
	if id == "" {
		id = noID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return fmt.Errorf("create receipts dir: %w", err)
	}

	path := filepath.Join(l.dir, code+fileExt)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open receipt: %w", err)
	}

	_, werr := fmt.Fprintf(f, "Ml ID: %s\nLink: %s\n%s\n", id, receipt.Permalink, separator)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("write receipt: %w", werr)
	}
	return nil
}

// sanitize keeps the code usable as a file name.
func sanitize(code string) string {
	code = strings.TrimSpace(code)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, code)
}
