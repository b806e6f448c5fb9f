package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := &MemoryStore{}
	s := New(store, logger.Discard())

	assert.False(t, s.Authenticated())

	require.NoError(t, s.Start(ctx, "tok-1", &models.User{ID: 1, Name: "Awa"}))
	assert.Equal(t, "tok-1", s.Token())
	assert.Equal(t, "Awa", s.User().Name)

	require.NoError(t, s.UpdateUser(ctx, &models.User{ID: 1, Name: "Awa N."}))
	d, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", d.Token)
	assert.Equal(t, "Awa N.", d.User.Name)

	restored := New(store, logger.Discard())
	ok, err := restored.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", restored.Token())

	require.NoError(t, s.End(ctx))
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User())
	d, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestSession_StartRejectsEmptyToken(t *testing.T) {
	s := New(&MemoryStore{}, logger.Discard())
	assert.Error(t, s.Start(context.Background(), "", nil))
}

func TestSession_ExpireFiresHooksOnce(t *testing.T) {
	ctx := context.Background()
	store := &MemoryStore{}
	s := New(store, logger.Discard())
	require.NoError(t, s.Start(ctx, "tok", &models.User{ID: 2}))

	fired := 0
	s.OnExpire(func() { fired++ })

	s.Expire(ctx)
	s.Expire(ctx)

	assert.Equal(t, 1, fired)
	assert.False(t, s.Authenticated())
	d, _ := store.Load(ctx)
	assert.Nil(t, d)
}

func TestSession_ExpireToken(t *testing.T) {
	ctx := context.Background()
	store := &MemoryStore{}
	s := New(store, logger.Discard())
	require.NoError(t, s.Start(ctx, "new", &models.User{ID: 2}))

	fired := 0
	s.OnExpire(func() { fired++ })

	assert.False(t, s.ExpireToken(ctx, "old"))
	assert.Equal(t, "new", s.Token())
	d, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "new", d.Token)
	assert.Zero(t, fired)

	assert.True(t, s.ExpireToken(ctx, "new"))
	assert.False(t, s.Authenticated())
	assert.Equal(t, 1, fired)
	d, _ = store.Load(ctx)
	assert.Nil(t, d)
}

func TestSession_UserIsACopy(t *testing.T) {
	s := New(&MemoryStore{}, logger.Discard())
	require.NoError(t, s.Start(context.Background(), "tok", &models.User{Name: "Awa"}))

	u := s.User()
	u.Name = "changed"

	assert.Equal(t, "Awa", s.User().Name)
}

type failingStore struct{ MemoryStore }

func (*failingStore) Save(context.Context, Data) error { return errors.New("disk full") }

func TestSession_StartStoreFailure(t *testing.T) {
	s := New(&failingStore{}, logger.Discard())

	err := s.Start(context.Background(), "tok", nil)

	assert.ErrorContains(t, err, "disk full")
	assert.False(t, s.Authenticated(), "session not started when it could not be saved")
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStore(path)

	d, err := fs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)

	require.NoError(t, fs.Save(ctx, Data{Token: "abc", User: &models.User{ID: 4, Email: "a@b.cm"}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	d, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", d.Token)
	assert.Equal(t, "a@b.cm", d.User.Email)

	require.NoError(t, fs.Clear(ctx))
	require.NoError(t, fs.Clear(ctx))
	d, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)

	s := New(NewFileStore(path), logger.Discard())
	ok, err := s.Restore(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()

	rs, err := NewRedisStore(url, "myinsam:test:session")
	require.NoError(t, err)
	defer rs.Close()
	require.NoError(t, rs.Clear(ctx))

	d, err := rs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)

	require.NoError(t, rs.Save(ctx, Data{Token: "xyz", User: &models.User{ID: 8}}))
	d, err = rs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "xyz", d.Token)

	require.NoError(t, rs.Clear(ctx))
}

func TestOpen(t *testing.T) {
	store, closeFn, err := Open("file", filepath.Join(t.TempDir(), "s.json"), "")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
	assert.NoError(t, closeFn())

	store, _, err = Open("memory", "", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, _, err = Open("sqlite", "", "")
	assert.Error(t, err)

	_, _, err = Open("redis", "", "not a url")
	assert.Error(t, err)
}
