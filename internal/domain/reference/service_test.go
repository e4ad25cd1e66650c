package reference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo 内存参考实体仓储(测试用)
type memoryRepo[T any] struct {
	nextID   uint
	entities map[uint]*T
	getID    func(*T) uint
	setID    func(*T, uint)
}

func newMemoryRepo[T any](getID func(*T) uint, setID func(*T, uint)) *memoryRepo[T] {
	return &memoryRepo[T]{
		entities: make(map[uint]*T),
		getID:    getID,
		setID:    setID,
	}
}

func (r *memoryRepo[T]) Create(ctx context.Context, entity *T) error {
	r.nextID++
	r.setID(entity, r.nextID)
	r.entities[r.nextID] = entity
	return nil
}

func (r *memoryRepo[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	e, ok := r.entities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (r *memoryRepo[T]) FindAll(ctx context.Context) ([]*T, error) {
	var all []*T
	for _, e := range r.entities {
		all = append(all, e)
	}
	return all, nil
}

func (r *memoryRepo[T]) Update(ctx context.Context, entity *T) error {
	id := r.getID(entity)
	if _, ok := r.entities[id]; !ok {
		return ErrNotFound
	}
	r.entities[id] = entity
	return nil
}

func (r *memoryRepo[T]) Delete(ctx context.Context, id uint) error {
	if _, ok := r.entities[id]; !ok {
		return ErrNotFound
	}
	delete(r.entities, id)
	return nil
}

func newAuthorService() (*Service[Author], *memoryRepo[Author]) {
	repo := newMemoryRepo[Author](
		func(a *Author) uint { return a.ID },
		func(a *Author, id uint) { a.ID = id },
	)
	return NewService(repo), repo
}

// =========================================
// 测试(以Author为代表,六种实体共用同一套泛型实现)
// =========================================

func TestReferenceService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("正常创建", func(t *testing.T) {
		svc, _ := newAuthorService()

		created, err := svc.Create(ctx, &Author{Name: "罗兰·巴特"})

		require.NoError(t, err)
		assert.NotZero(t, created.ID)
	})

	t.Run("名称为空被拒绝", func(t *testing.T) {
		svc, repo := newAuthorService()

		_, err := svc.Create(ctx, &Author{})

		assert.ErrorIs(t, err, ErrNameRequired)
		assert.Empty(t, repo.entities, "校验失败不应落库")
	})
}

func TestReferenceService_GetAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthorService()

	created, err := svc.Create(ctx, &Author{Name: "苏珊·桑塔格"})
	require.NoError(t, err)

	t.Run("按ID获取", func(t *testing.T) {
		got, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "苏珊·桑塔格", got.Name)
	})

	t.Run("不存在的ID", func(t *testing.T) {
		_, err := svc.GetByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("列表", func(t *testing.T) {
		all, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestReferenceService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("更新不存在的记录", func(t *testing.T) {
		svc, _ := newAuthorService()

		err := svc.Update(ctx, 999, &Author{ID: 999, Name: "某作者"})
		assert.ErrorIs(t, err, ErrNotFound, "Update不应悄悄变成Insert")
	})

	t.Run("更新校验名称", func(t *testing.T) {
		svc, _ := newAuthorService()
		created, err := svc.Create(ctx, &Author{Name: "原名"})
		require.NoError(t, err)

		err = svc.Update(ctx, created.ID, &Author{ID: created.ID})
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("正常更新", func(t *testing.T) {
		svc, _ := newAuthorService()
		created, err := svc.Create(ctx, &Author{Name: "原名"})
		require.NoError(t, err)

		err = svc.Update(ctx, created.ID, &Author{ID: created.ID, Name: "新名"})
		require.NoError(t, err)

		got, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "新名", got.Name)
	})
}

func TestReferenceService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthorService()

	created, err := svc.Create(ctx, &Author{Name: "待删除"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

// TestEntityValidate 各实体的名称校验
func TestEntityValidate(t *testing.T) {
	assert.ErrorIs(t, (&Author{}).Validate(), ErrNameRequired)
	assert.ErrorIs(t, (&Publisher{}).Validate(), ErrNameRequired)
	assert.ErrorIs(t, (&Genre{}).Validate(), ErrNameRequired)
	assert.ErrorIs(t, (&Language{}).Validate(), ErrNameRequired)
	assert.ErrorIs(t, (&Format{}).Validate(), ErrNameRequired)
	assert.ErrorIs(t, (&Tag{}).Validate(), ErrNameRequired)

	assert.NoError(t, (&Language{Name: "葡萄牙语", Culture: "pt-PT"}).Validate())
}
