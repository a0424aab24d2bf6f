package registry_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telefiles/filestore-bot/internal/service/registry"
)

func openTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg, err := registry.Open(registry.Config{
		Path: filepath.Join(t.TempDir(), "filestore.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, reg.Close())
	})
	return reg
}

func TestSaveAndLookupFile(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	file := registry.File{
		Code:      "AB12CD34",
		MsgID:     42,
		Owner:     1001,
		CreatedAt: created,
		Caption:   "holiday photos",
		FileType:  "photo",
	}
	require.NoError(t, reg.SaveFile(ctx, file))

	got, err := reg.FileByCode(ctx, "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, file.Code, got.Code)
	assert.Equal(t, file.MsgID, got.MsgID)
	assert.Equal(t, file.Owner, got.Owner)
	assert.True(t, got.CreatedAt.Equal(created), "CreatedAt = %v", got.CreatedAt)
	assert.Equal(t, file.Caption, got.Caption)
	assert.Equal(t, file.FileType, got.FileType)
	assert.Empty(t, got.ArchivePath)

	_, err = reg.FileByCode(ctx, "NOPE0000")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	err = reg.SaveFile(ctx, file)
	assert.ErrorIs(t, err, registry.ErrCodeTaken)
}

func TestFilesByOwner_NewestFirst(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range []string{"OLD00001", "MID00002", "NEW00003"} {
		require.NoError(t, reg.SaveFile(ctx, registry.File{
			Code:      c,
			MsgID:     i + 1,
			Owner:     7,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, reg.SaveFile(ctx, registry.File{
		Code: "OTHER001", MsgID: 9, Owner: 8, CreatedAt: base,
	}))

	files, err := reg.FilesByOwner(ctx, 7)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "NEW00003", files[0].Code)
	assert.Equal(t, "MID00002", files[1].Code)
	assert.Equal(t, "OLD00001", files[2].Code)

	files, err = reg.FilesByOwner(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRename(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, reg.SaveFile(ctx, registry.File{
		Code: "FIRST001", MsgID: 1, Owner: 7, CreatedAt: base,
	}))
	require.NoError(t, reg.SaveFile(ctx, registry.File{
		Code: "LATEST01", MsgID: 2, Owner: 7, CreatedAt: base.Add(time.Minute),
	}))

	old, err := reg.Rename(ctx, 7, "my-docs")
	require.NoError(t, err)
	assert.Equal(t, "LATEST01", old)

	got, err := reg.FileByCode(ctx, "my-docs")
	require.NoError(t, err)
	assert.Equal(t, 2, got.MsgID)

	_, err = reg.FileByCode(ctx, "LATEST01")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	// Коллизия с существующим файлом.
	_, err = reg.Rename(ctx, 7, "FIRST001")
	assert.ErrorIs(t, err, registry.ErrCodeTaken)

	// Нет файлов у пользователя.
	_, err = reg.Rename(ctx, 123, "whatever")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRename_CollidesWithBatchCode(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, reg.CreateBatch(ctx, registry.Batch{
		Code: "BATCH001", Owner: 1, CreatedAt: now,
	}, []int{10}))
	require.NoError(t, reg.SaveFile(ctx, registry.File{
		Code: "FILE0001", MsgID: 1, Owner: 7, CreatedAt: now,
	}))

	_, err := reg.Rename(ctx, 7, "BATCH001")
	assert.ErrorIs(t, err, registry.ErrCodeTaken)
}

func TestBatchRoundTrip(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	items := []int{30, 10, 20} // порядок сохранения, не сортировка
	require.NoError(t, reg.CreateBatch(ctx, registry.Batch{
		Code:      "PACK0001",
		Owner:     5,
		CreatedAt: time.Now(),
	}, items))

	got, err := reg.BatchItems(ctx, "PACK0001")
	require.NoError(t, err)
	assert.Equal(t, items, got)

	_, err = reg.BatchItems(ctx, "MISSING1")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	err = reg.CreateBatch(ctx, registry.Batch{
		Code: "PACK0001", Owner: 5, CreatedAt: time.Now(),
	}, []int{1})
	assert.ErrorIs(t, err, registry.ErrCodeTaken)

	err = reg.CreateBatch(ctx, registry.Batch{
		Code: "EMPTY001", Owner: 5, CreatedAt: time.Now(),
	}, nil)
	assert.Error(t, err)
}

func TestCodeInUse(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	used, err := reg.CodeInUse(ctx, "FREE0001")
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, reg.SaveFile(ctx, registry.File{
		Code: "FILE0001", MsgID: 1, Owner: 1, CreatedAt: time.Now(),
	}))
	require.NoError(t, reg.CreateBatch(ctx, registry.Batch{
		Code: "PACK0001", Owner: 1, CreatedAt: time.Now(),
	}, []int{1}))

	for _, c := range []string{"FILE0001", "PACK0001"} {
		used, err = reg.CodeInUse(ctx, c)
		require.NoError(t, err)
		assert.True(t, used, c)
	}
}

func TestAdmins(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	admin, err := reg.IsAdmin(ctx, 42)
	require.NoError(t, err)
	assert.False(t, admin)

	require.NoError(t, reg.AddAdmin(ctx, 42))
	require.NoError(t, reg.AddAdmin(ctx, 42)) // идемпотентно
	require.NoError(t, reg.AddAdmin(ctx, 7))

	admin, err = reg.IsAdmin(ctx, 42)
	require.NoError(t, err)
	assert.True(t, admin)

	ids, err := reg.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 42}, ids)

	require.NoError(t, reg.RemoveAdmin(ctx, 42))
	admin, err = reg.IsAdmin(ctx, 42)
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestStats(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, reg.SaveFile(ctx, registry.File{
		Code: "FILE0001", MsgID: 1, Owner: 1, CreatedAt: now,
	}))
	require.NoError(t, reg.CreateBatch(ctx, registry.Batch{
		Code: "PACK0001", Owner: 1, CreatedAt: now,
	}, []int{1, 2, 3}))
	require.NoError(t, reg.AddAdmin(ctx, 1))

	stats, err := reg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, registry.Stats{Files: 1, Batches: 1, Items: 3, Admins: 1}, stats)
}

func TestAutoDeleteSettings(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	// До инициализации всё выключено.
	enabled, age, err := reg.AutoDelete(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.Zero(t, age)

	require.NoError(t, reg.SeedAutoDelete(ctx, time.Hour))
	enabled, age, err = reg.AutoDelete(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, time.Hour, age)

	// Повторный seed не перетирает выставленные значения.
	require.NoError(t, reg.SetAutoDelete(ctx, false, 0))
	require.NoError(t, reg.SeedAutoDelete(ctx, 2*time.Hour))
	enabled, _, err = reg.AutoDelete(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, reg.SetAutoDelete(ctx, true, 30*time.Minute))
	enabled, age, err = reg.AutoDelete(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, 30*time.Minute, age)

	err = reg.SetAutoDelete(ctx, true, 0)
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	reg := openTestRegistry(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)

	require.NoError(t, reg.SaveFile(ctx, registry.File{
		Code: "OLDFILE1", MsgID: 1, Owner: 1, CreatedAt: old, ArchivePath: "/data/OLDFILE1.bin",
	}))
	require.NoError(t, reg.SaveFile(ctx, registry.File{
		Code: "NEWFILE1", MsgID: 2, Owner: 1, CreatedAt: now,
	}))
	require.NoError(t, reg.CreateBatch(ctx, registry.Batch{
		Code: "OLDPACK1", Owner: 1, CreatedAt: old,
	}, []int{5, 6}))
	require.NoError(t, reg.CreateBatch(ctx, registry.Batch{
		Code: "NEWPACK1", Owner: 1, CreatedAt: now,
	}, []int{7}))

	result, err := reg.Sweep(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "OLDFILE1", result.Files[0].Code)
	assert.Equal(t, "/data/OLDFILE1.bin", result.Files[0].ArchivePath)
	assert.Equal(t, []string{"OLDPACK1"}, result.Batches)

	_, err = reg.FileByCode(ctx, "OLDFILE1")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	_, err = reg.BatchItems(ctx, "OLDPACK1")
	assert.ErrorIs(t, err, registry.ErrNotFound)

	// Свежие записи не тронуты.
	_, err = reg.FileByCode(ctx, "NEWFILE1")
	require.NoError(t, err)
	items, err := reg.BatchItems(ctx, "NEWPACK1")
	require.NoError(t, err)
	assert.Equal(t, []int{7}, items)

	stats, err := reg.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Items)

	// Повторный проход ничего не находит.
	result, err = reg.Sweep(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Batches)
}
