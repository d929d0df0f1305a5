package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/watchpost/watchpost/models"
	"github.com/watchpost/watchpost/registry"
)

func timeNowFixed() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

// memStore collects inserts in memory and can be told to fail.
type memStore struct {
	records []*models.Media
	fail    error
	nextID  uint
}

func (s *memStore) Insert(_ context.Context, m *models.Media) error {
	if s.fail != nil {
		return s.fail
	}
	s.nextID++
	m.ID = s.nextID
	m.CreatedAt = time.Now().UTC()
	s.records = append(s.records, m)
	return nil
}

func newTestService(t *testing.T) (*Service, *Writer, *memStore) {
	t.Helper()
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	st := &memStore{}
	reg := registry.Parse("device1:token-123,cam2:secret")
	svc := NewService(reg, w, st, 1024, zap.NewNop().Sugar())
	svc.now = timeNowFixed
	return svc, w, st
}

func TestSubmitSuccess(t *testing.T) {
	svc, w, st := newTestService(t)

	res, err := svc.Submit(context.Background(), UploadRequest{
		DeviceID: "device1",
		Token:    "token-123",
		Filename: "photo.JPG",
		Payload:  strings.NewReader("0123456789"),
		Size:     10,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), res.ID)
	assert.Equal(t, "image", res.MediaType)
	assert.Regexp(t, `^device1-20240101-000000-[0-9a-f]{32}\.jpg$`, res.Filename)
	assert.Equal(t, "/media/"+res.Filename, res.URL)

	got, err := os.ReadFile(filepath.Join(w.Root(), res.Filename))
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), got)

	require.Len(t, st.records, 1)
	rec := st.records[0]
	assert.Equal(t, "device1", rec.DeviceID)
	assert.Equal(t, res.Filename, rec.Filename)
	assert.Equal(t, "image", rec.MediaType)
	assert.Equal(t, "image/jpeg", rec.Mime)
}

func TestSubmitVideoClassification(t *testing.T) {
	svc, _, st := newTestService(t)

	res, err := svc.Submit(context.Background(), UploadRequest{
		DeviceID: "cam2",
		Token:    "secret",
		Filename: "clip.Mp4",
		Payload:  strings.NewReader("video-bytes"),
		Size:     11,
	})
	require.NoError(t, err)
	assert.Equal(t, "video", res.MediaType)
	assert.Equal(t, "video/mp4", st.records[0].Mime)
}

func TestSubmitUnauthorized(t *testing.T) {
	svc, w, st := newTestService(t)

	cases := []struct{ device, token string }{
		{"device1", "wrong"},
		{"ghost", "token-123"},
		{"", "token-123"},
		{"device1", ""},
	}
	for _, c := range cases {
		_, err := svc.Submit(context.Background(), UploadRequest{
			DeviceID: c.device,
			Token:    c.token,
			Filename: "photo.jpg",
			Payload:  strings.NewReader("data"),
			Size:     4,
		})
		require.ErrorIs(t, err, ErrUnauthorized, "%s/%s", c.device, c.token)
	}
	assert.Empty(t, dirEntries(t, w.Root()))
	assert.Empty(t, st.records)
}

func TestSubmitNoPayload(t *testing.T) {
	svc, w, st := newTestService(t)

	_, err := svc.Submit(context.Background(), UploadRequest{
		DeviceID: "device1", Token: "token-123", Filename: "photo.jpg", Size: -1,
	})
	require.ErrorIs(t, err, ErrNoFile)

	_, err = svc.Submit(context.Background(), UploadRequest{
		DeviceID: "device1", Token: "token-123", Filename: "photo.jpg",
		Payload: strings.NewReader(""), Size: 0,
	})
	require.ErrorIs(t, err, ErrNoFile)

	assert.Empty(t, dirEntries(t, w.Root()))
	assert.Empty(t, st.records)
}

func TestSubmitEmptyPayloadUndeclaredSize(t *testing.T) {
	svc, w, st := newTestService(t)

	// Size unknown, reader yields nothing: the written file must not stay.
	_, err := svc.Submit(context.Background(), UploadRequest{
		DeviceID: "device1", Token: "token-123", Filename: "photo.jpg",
		Payload: strings.NewReader(""), Size: -1,
	})
	require.ErrorIs(t, err, ErrNoFile)
	assert.Empty(t, dirEntries(t, w.Root()))
	assert.Empty(t, st.records)
}

func TestSubmitBadExtension(t *testing.T) {
	svc, w, st := newTestService(t)

	for _, fname := range []string{"malware.exe", "noext", "shot.gif", "trick.jpg.sh"} {
		_, err := svc.Submit(context.Background(), UploadRequest{
			DeviceID: "device1", Token: "token-123", Filename: fname,
			Payload: strings.NewReader("data"), Size: 4,
		})
		require.ErrorIs(t, err, ErrBadExtension, fname)
	}
	// Rejection happens before any write.
	assert.Empty(t, dirEntries(t, w.Root()))
	assert.Empty(t, st.records)
}

func TestSubmitTraversalFilenameStaysContained(t *testing.T) {
	svc, w, _ := newTestService(t)

	res, err := svc.Submit(context.Background(), UploadRequest{
		DeviceID: "device1", Token: "token-123",
		Filename: "../../escape/../shot.png",
		Payload:  strings.NewReader("data"), Size: 4,
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Filename, "/")
	_, err = os.Stat(filepath.Join(w.Root(), res.Filename))
	require.NoError(t, err)
}

func TestSubmitTooLarge(t *testing.T) {
	svc, w, st := newTestService(t)

	// Declared size over the cap is rejected before the write.
	_, err := svc.Submit(context.Background(), UploadRequest{
		DeviceID: "device1", Token: "token-123", Filename: "big.jpg",
		Payload: strings.NewReader("x"), Size: 4096,
	})
	require.ErrorIs(t, err, ErrTooLarge)

	// Undeclared size is caught by the writer's limit.
	_, err = svc.Submit(context.Background(), UploadRequest{
		DeviceID: "device1", Token: "token-123", Filename: "big.jpg",
		Payload: strings.NewReader(strings.Repeat("x", 2048)), Size: -1,
	})
	require.ErrorIs(t, err, ErrTooLarge)

	assert.Empty(t, dirEntries(t, w.Root()))
	assert.Empty(t, st.records)
}

func TestSubmitStoreFailureLeavesOrphan(t *testing.T) {
	svc, w, st := newTestService(t)
	st.fail = errors.New("disk full on db host")

	_, err := svc.Submit(context.Background(), UploadRequest{
		DeviceID: "device1", Token: "token-123", Filename: "photo.jpg",
		Payload: strings.NewReader("data"), Size: 4,
	})
	require.ErrorIs(t, err, ErrStore)

	// The file was durably written before the insert failed; it remains as
	// a documented orphan.
	assert.Len(t, dirEntries(t, w.Root()), 1)
}

func TestSubmitSameSecondDistinctNames(t *testing.T) {
	svc, _, st := newTestService(t)

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(context.Background(), UploadRequest{
			DeviceID: "device1", Token: "token-123", Filename: "a.jpg",
			Payload: strings.NewReader("data"), Size: 4,
		})
		require.NoError(t, err)
	}
	require.Len(t, st.records, 2)
	assert.NotEqual(t, st.records[0].Filename, st.records[1].Filename)
}
