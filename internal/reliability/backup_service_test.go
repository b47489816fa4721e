package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ObjectStore
type memStore struct {
	objects map[string][]byte
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Upload(ctx context.Context, key string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) List(ctx context.Context, prefix string) ([]types.Object, error) {
	var out []types.Object
	for key, data := range m.objects {
		out = append(out, types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(data))),
		})
	}
	return out, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func TestCreateAndUploadBackup(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "client_data.db"), []byte("payload cache"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "snapshots.db"), []byte("snapshot history"), 0644))

	store := newMemStore()
	svc := NewBackupService(store, dataDir, []string{"client_data", "snapshots"}, zerolog.Nop())

	require.NoError(t, svc.CreateAndUploadBackup(context.Background()))

	require.Len(t, store.objects, 1)
	for key, data := range store.objects {
		assert.Contains(t, key, archivePrefix)
		assert.Contains(t, key, ".tar.gz")

		names := archiveFileNames(t, data)
		assert.Contains(t, names, "client_data.db")
		assert.Contains(t, names, "snapshots.db")
		assert.Contains(t, names, "backup-metadata.json")
	}
}

func TestCreateAndUploadBackupSkipsMissing(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "snapshots.db"), []byte("x"), 0644))

	store := newMemStore()
	svc := NewBackupService(store, dataDir, []string{"client_data", "snapshots"}, zerolog.Nop())

	require.NoError(t, svc.CreateAndUploadBackup(context.Background()))
	assert.Len(t, store.objects, 1)
}

func TestCreateAndUploadBackupFailsWithNoDatabases(t *testing.T) {
	svc := NewBackupService(newMemStore(), t.TempDir(), []string{"client_data"}, zerolog.Nop())
	require.Error(t, svc.CreateAndUploadBackup(context.Background()))
}

func TestRotateOldBackups(t *testing.T) {
	store := newMemStore()
	now := time.Now()

	// Three fresh plus two stale backups.
	for i, age := range []time.Duration{0, time.Hour, 2 * time.Hour, 40 * 24 * time.Hour, 50 * 24 * time.Hour} {
		key := archivePrefix + now.Add(-age).Format(archiveTimeLayout) + ".tar.gz"
		store.objects[key] = []byte{byte(i)}
	}

	svc := NewBackupService(store, t.TempDir(), nil, zerolog.Nop())
	require.NoError(t, svc.RotateOldBackups(context.Background(), 30))

	assert.Len(t, store.deleted, 2, "only backups beyond the keep-minimum and older than retention go")
	assert.Len(t, store.objects, 3)
}

func TestRotateKeepsMinimum(t *testing.T) {
	store := newMemStore()
	now := time.Now()

	for _, age := range []time.Duration{100 * 24 * time.Hour, 200 * 24 * time.Hour} {
		key := archivePrefix + now.Add(-age).Format(archiveTimeLayout) + ".tar.gz"
		store.objects[key] = []byte("x")
	}

	svc := NewBackupService(store, t.TempDir(), nil, zerolog.Nop())
	require.NoError(t, svc.RotateOldBackups(context.Background(), 30))

	assert.Empty(t, store.deleted, "fewer than the minimum are never rotated")
}

func archiveFileNames(t *testing.T, data []byte) []string {
	t.Helper()

	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, header.Name)
	}
	return names
}
