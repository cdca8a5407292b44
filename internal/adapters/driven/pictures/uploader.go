// Package pictures sends listing pictures to the marketplace, either
// directly or through an object storage staging bucket.
package pictures

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure Uploader implements the interface.
var _ driven.PictureUploader = (*Uploader)(nil)

// Stager publishes a picture at a URL the marketplace can fetch.
type Stager interface {
	// Stage stores the picture and returns its URL and a cleanup func.
	Stage(ctx context.Context, name string, r io.Reader, size int64) (string, func(context.Context) error, error)
}

// Uploader uploads the pictures of a row and returns their marketplace ids.
type Uploader struct {
	gateway driven.PictureGateway
	baseDir string
	stager  Stager
	logger  *zap.Logger
}

// NewUploader creates an uploader. stager may be nil, in which case files
// are sent to the marketplace upload endpoint.
func NewUploader(gateway driven.PictureGateway, baseDir string, stager Stager, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{gateway: gateway, baseDir: baseDir, stager: stager, logger: logger}
}

// Upload uploads every picture of the raw column. Pictures that fail are
// logged and skipped. Returns a failure if none could be uploaded.
func (u *Uploader) Upload(ctx context.Context, token domain.AccessToken, rawPictures string) ([]string, error) {
	paths := domain.SaleInfo{Pictures: rawPictures}.PicturePaths()
	if len(paths) == 0 {
		return nil, domain.NewFailure(domain.ValidationFailure, "Colunas obrigatórias vazias: [imagens]")
	}

	var (
		ids       []string
		causes    []string
		localOnly = true
	)
	for _, p := range paths {
		path := u.resolve(p)
		id, err := u.uploadOne(ctx, token, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			var remote *domain.RemoteError
			if errors.As(err, &remote) {
				localOnly = false
			}
			u.logger.Warn("picture not uploaded", zap.String("path", path), zap.Error(err))
			causes = append(causes, fmt.Sprintf("Falha ao enviar imagem %s: %v", p, err))
			continue
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		kind := domain.RemoteRequestFailure
		if localOnly {
			kind = domain.ValidationFailure
		}
		f := domain.NewFailure(kind, "Nenhuma imagem foi enviada.")
		f.Causes = append(f.Causes, causes...)
		return nil, f
	}
	u.logger.Debug("pictures uploaded", zap.Int("uploaded", len(ids)), zap.Int("skipped", len(causes)))
	return ids, nil
}

func (u *Uploader) uploadOne(ctx context.Context, token domain.AccessToken, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open picture: %w", err)
	}
	defer f.Close()

	if u.stager == nil {
		return u.gateway.UploadPicture(ctx, token, filepath.Base(path), f)
	}

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat picture: %w", err)
	}
	url, cleanup, err := u.stager.Stage(ctx, filepath.Base(path), f, info.Size())
	if err != nil {
		return "", fmt.Errorf("stage picture: %w", err)
	}
	defer func() {
		if cerr := cleanup(context.WithoutCancel(ctx)); cerr != nil {
			u.logger.Warn("staged picture not removed", zap.String("url", url), zap.Error(cerr))
		}
	}()
	return u.gateway.RegisterPictureURL(ctx, token, url)
}

// resolve normalizes separators and roots relative paths at the base dir.
func (u *Uploader) resolve(p string) string {
	p = filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
	if filepath.IsAbs(p) || u.baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(u.baseDir, p)
}
