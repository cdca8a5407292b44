package pictures

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

type stubGateway struct {
	uploaded   []string
	registered []string
	failOn     string
}

func (g *stubGateway) UploadPicture(_ context.Context, _ domain.AccessToken, filename string, r io.Reader) (string, error) {
	if filename == g.failOn {
		return "", &domain.RemoteError{Message: "Erro HTTP 400", Code: 400, HTTPStatus: 400}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	g.uploaded = append(g.uploaded, filename+":"+string(data))
	return "id-" + filename, nil
}

func (g *stubGateway) RegisterPictureURL(_ context.Context, _ domain.AccessToken, url string) (string, error) {
	g.registered = append(g.registered, url)
	return "id-url", nil
}

type stubStager struct {
	staged  []string
	cleaned int
	err     error
}

func (s *stubStager) Stage(_ context.Context, name string, r io.Reader, size int64) (string, func(context.Context) error, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	data, _ := io.ReadAll(r)
	if int64(len(data)) != size {
		return "", nil, errors.New("size mismatch")
	}
	s.staged = append(s.staged, name)
	return "https://bucket.local/" + name, func(context.Context) error {
		s.cleaned++
		return nil
	}, nil
}

func writePicture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestUploader_Direct(t *testing.T) {
	dir := t.TempDir()
	writePicture(t, dir, "a.jpg", "AAA")
	writePicture(t, dir, "b.jpg", "BB")
	gw := &stubGateway{}
	u := NewUploader(gw, dir, nil, nil)

	ids, err := u.Upload(context.Background(), domain.AccessToken{}, `"a.jpg"; b.jpg`)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-a.jpg", "id-b.jpg"}, ids)
	assert.Equal(t, []string{"a.jpg:AAA", "b.jpg:BB"}, gw.uploaded)
}

func TestUploader_AbsolutePathAndBackslashes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fotos"), 0o750))
	writePicture(t, filepath.Join(dir, "fotos"), "c.png", "C")
	gw := &stubGateway{}
	u := NewUploader(gw, "/does/not/exist", nil, nil)

	ids, err := u.Upload(context.Background(), domain.AccessToken{}, filepath.Join(dir, "fotos", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id-c.png"}, ids)

	u = NewUploader(gw, dir, nil, nil)
	ids, err = u.Upload(context.Background(), domain.AccessToken{}, `fotos\c.png`)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-c.png"}, ids)
}

func TestUploader_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writePicture(t, dir, "ok.jpg", "1")
	writePicture(t, dir, "bad.jpg", "2")
	gw := &stubGateway{failOn: "bad.jpg"}
	u := NewUploader(gw, dir, nil, nil)

	ids, err := u.Upload(context.Background(), domain.AccessToken{}, "bad.jpg,missing.jpg,ok.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"id-ok.jpg"}, ids)
}

func TestUploader_NoneUploaded(t *testing.T) {
	dir := t.TempDir()
	writePicture(t, dir, "bad.jpg", "2")

	tests := []struct {
		name string
		raw  string
		kind domain.FailureKind
	}{
		{"empty column", ` ; "" `, domain.ValidationFailure},
		{"missing files", "x.jpg;y.jpg", domain.ValidationFailure},
		{"remote rejects", "bad.jpg;y.jpg", domain.RemoteRequestFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUploader(&stubGateway{failOn: "bad.jpg"}, dir, nil, nil)
			_, err := u.Upload(context.Background(), domain.AccessToken{}, tt.raw)

			var f *domain.Failure
			require.True(t, errors.As(err, &f))
			assert.Equal(t, tt.kind, f.Kind)
			assert.NotEmpty(t, f.Causes)
		})
	}
}

func TestUploader_Staged(t *testing.T) {
	dir := t.TempDir()
	writePicture(t, dir, "a.jpg", "AAA")
	gw := &stubGateway{}
	stager := &stubStager{}
	u := NewUploader(gw, dir, stager, nil)

	ids, err := u.Upload(context.Background(), domain.AccessToken{}, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"id-url"}, ids)
	assert.Equal(t, []string{"https://bucket.local/a.jpg"}, gw.registered)
	assert.Empty(t, gw.uploaded)
	assert.Equal(t, 1, stager.cleaned)
}

func TestUploader_StagingError(t *testing.T) {
	dir := t.TempDir()
	writePicture(t, dir, "a.jpg", "AAA")
	u := NewUploader(&stubGateway{}, dir, &stubStager{err: errors.New("bucket down")}, nil)

	_, err := u.Upload(context.Background(), domain.AccessToken{}, "a.jpg")
	var f *domain.Failure
	require.True(t, errors.As(err, &f))
	assert.True(t, strings.Contains(strings.Join(f.Causes, " "), "bucket down"))
}

func TestObjectKey(t *testing.T) {
	key := objectKey("/tmp/fotos/a.jpg")
	assert.True(t, strings.HasPrefix(key, "staging/"))
	assert.True(t, strings.HasSuffix(key, "-a.jpg"))
	assert.NotEqual(t, key, objectKey("a.jpg"))
}

func TestNewMinioStager(t *testing.T) {
	s, err := NewMinioStager(domain.PictureSettings{
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "fotos",
	})
	require.NoError(t, err)
	assert.Equal(t, "fotos", s.bucket)
}
