package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hugh/buildtrack/internal/database/models"
	"github.com/hugh/buildtrack/internal/store"
	"github.com/hugh/buildtrack/internal/tenant"
	"github.com/hugh/buildtrack/internal/testutil"
)

func countProjects(t *testing.T, db *gorm.DB, tenantID uuid.UUID) int64 {
	t.Helper()
	var count int64
	err := db.WithContext(store.CrossTenant(context.Background())).
		Model(&models.Project{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestScopingCallbacks(t *testing.T) {
	write, _ := testutil.SetupTestDB(t)

	tenantA := testutil.CreateTestTenant(t, write)
	tenantB := testutil.CreateTestTenant(t, write)
	userA := testutil.CreateTestUser(t, write, tenantA)
	userB := testutil.CreateTestUser(t, write, tenantB)

	ctxA := testutil.ScopedContext(tenantA.ID, userA.ID)
	ctxB := testutil.ScopedContext(tenantB.ID, userB.ID)

	t.Run("insert is stamped with the scoped tenant id", func(t *testing.T) {
		project := &models.Project{
			Name:     "Stamped",
			TenantID: tenantB.ID, // caller-supplied id must be overridden
		}
		require.NoError(t, write.WithContext(ctxA).Create(project).Error)

		var got models.Project
		require.NoError(t, write.WithContext(ctxA).First(&got, "id = ?", project.ID).Error)
		assert.Equal(t, tenantA.ID, got.TenantID)
	})

	t.Run("query returns only rows of the scoped tenant", func(t *testing.T) {
		pA := testutil.CreateTestProject(t, write, tenantA.ID, "Visible A")
		pB := testutil.CreateTestProject(t, write, tenantB.ID, "Visible B")

		var got []models.Project
		require.NoError(t, write.WithContext(ctxB).Find(&got).Error)

		ids := make(map[uuid.UUID]bool, len(got))
		for _, p := range got {
			assert.Equal(t, tenantB.ID, p.TenantID)
			ids[p.ID] = true
		}
		assert.True(t, ids[pB.ID])
		assert.False(t, ids[pA.ID])
	})

	t.Run("unscoped query fails with ErrNoScope", func(t *testing.T) {
		var got []models.Project
		err := write.WithContext(context.Background()).Find(&got).Error
		assert.ErrorIs(t, err, tenant.ErrNoScope)
	})

	t.Run("unscoped insert fails with ErrNoScope", func(t *testing.T) {
		project := &models.Project{Name: "No scope"}
		err := write.WithContext(context.Background()).Create(project).Error
		assert.ErrorIs(t, err, tenant.ErrNoScope)
	})

	t.Run("cross-tenant context bypasses the filter", func(t *testing.T) {
		testutil.CreateTestProject(t, write, tenantA.ID, "All A")
		testutil.CreateTestProject(t, write, tenantB.ID, "All B")

		var got []models.Project
		err := write.WithContext(store.CrossTenant(context.Background())).Find(&got).Error
		require.NoError(t, err)

		tenants := make(map[uuid.UUID]bool)
		for _, p := range got {
			tenants[p.TenantID] = true
		}
		assert.True(t, tenants[tenantA.ID])
		assert.True(t, tenants[tenantB.ID])
	})

	t.Run("unregistered tables are untouched", func(t *testing.T) {
		var got []models.Tenant
		err := write.WithContext(context.Background()).Find(&got).Error
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(got), 2)
	})
}

func TestWriteStore(t *testing.T) {
	write, _ := testutil.SetupTestDB(t)

	tenantA := testutil.CreateTestTenant(t, write)
	tenantB := testutil.CreateTestTenant(t, write)
	userA := testutil.CreateTestUser(t, write, tenantA)
	userB := testutil.CreateTestUser(t, write, tenantB)

	ctxA := testutil.ScopedContext(tenantA.ID, userA.ID)
	ctxB := testutil.ScopedContext(tenantB.ID, userB.ID)

	projects := store.NewWriteStore[models.Project](write)

	t.Run("Add stamps the tenant id", func(t *testing.T) {
		project := &models.Project{Name: "Site office"}
		require.NoError(t, projects.Add(ctxA, project))
		assert.Equal(t, tenantA.ID, project.TenantID)
	})

	t.Run("AddRange stamps every entity", func(t *testing.T) {
		batch := []*models.Project{
			{Name: "Batch one"},
			{Name: "Batch two", TenantID: tenantB.ID},
		}
		require.NoError(t, projects.AddRange(ctxA, batch))
		for _, p := range batch {
			assert.Equal(t, tenantA.ID, p.TenantID)
		}
	})

	t.Run("AddRange with no entities is a no-op", func(t *testing.T) {
		assert.NoError(t, projects.AddRange(ctxA, nil))
	})

	t.Run("Update writes fields but never tenant_id", func(t *testing.T) {
		project := testutil.CreateTestProject(t, write, tenantA.ID, "Before")

		project.Name = "After"
		project.Status = models.ProjectStatusActive
		project.TenantID = tenantB.ID // must be dropped from the SET list
		require.NoError(t, projects.Update(ctxA, project))

		var got models.Project
		require.NoError(t, write.WithContext(ctxA).First(&got, "id = ?", project.ID).Error)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, models.ProjectStatusActive, got.Status)
		assert.Equal(t, tenantA.ID, got.TenantID)
	})

	t.Run("Update against another tenant's row is a no-op", func(t *testing.T) {
		project := testutil.CreateTestProject(t, write, tenantA.ID, "Theirs")

		project.Name = "Hijacked"
		require.NoError(t, projects.Update(ctxB, project))

		var got models.Project
		require.NoError(t, write.WithContext(ctxA).First(&got, "id = ?", project.ID).Error)
		assert.Equal(t, "Theirs", got.Name)
	})

	t.Run("Delete removes only rows in scope", func(t *testing.T) {
		project := testutil.CreateTestProject(t, write, tenantA.ID, "Keep")
		before := countProjects(t, write, tenantA.ID)

		require.NoError(t, projects.Delete(ctxB, &models.Project{Base: models.Base{ID: project.ID}}))
		assert.Equal(t, before, countProjects(t, write, tenantA.ID))

		var got models.Project
		require.NoError(t, write.WithContext(ctxA).First(&got, "id = ?", project.ID).Error)

		require.NoError(t, projects.Delete(ctxA, &models.Project{Base: models.Base{ID: project.ID}}))
		err := write.WithContext(ctxA).First(&got, "id = ?", project.ID).Error
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("DeleteByID removes an owned row", func(t *testing.T) {
		project := testutil.CreateTestProject(t, write, tenantA.ID, "Doomed")

		require.NoError(t, projects.DeleteByID(ctxA, project.ID, tenantA.ID))

		var got models.Project
		err := write.WithContext(ctxA).First(&got, "id = ?", project.ID).Error
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("DeleteByID with a foreign tenant id is a silent no-op", func(t *testing.T) {
		project := testutil.CreateTestProject(t, write, tenantA.ID, "Survivor")

		require.NoError(t, projects.DeleteByID(ctxB, project.ID, tenantB.ID))

		var got models.Project
		require.NoError(t, write.WithContext(ctxA).First(&got, "id = ?", project.ID).Error)
		assert.Equal(t, "Survivor", got.Name)
	})

	t.Run("unscoped write fails fast", func(t *testing.T) {
		err := projects.Add(context.Background(), &models.Project{Name: "Nope"})
		assert.ErrorIs(t, err, tenant.ErrNoScope)
	})
}

func TestReadStore(t *testing.T) {
	write, read := testutil.SetupTestDB(t)

	tenantA := testutil.CreateTestTenant(t, write)
	tenantB := testutil.CreateTestTenant(t, write)

	pA1 := testutil.CreateTestProject(t, write, tenantA.ID, "Tower")
	pA2 := testutil.CreateTestProject(t, write, tenantA.ID, "Bridge")
	pB := testutil.CreateTestProject(t, write, tenantB.ID, "Warehouse")

	reads := store.NewReadStore[models.Project](read, models.Project{}.TableName())
	ctx := context.Background()

	t.Run("GetByID returns an owned row", func(t *testing.T) {
		got, err := reads.GetByID(ctx, pA1.ID, tenantA.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tower", got.Name)
	})

	t.Run("GetByID hides rows of other tenants", func(t *testing.T) {
		_, err := reads.GetByID(ctx, pB.ID, tenantA.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("GetAll returns only the tenant's rows", func(t *testing.T) {
		got, err := reads.GetAll(ctx, tenantA.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, p := range got {
			assert.Equal(t, tenantA.ID, p.TenantID)
		}
	})

	t.Run("GetPaged limits and offsets within the tenant", func(t *testing.T) {
		first, err := reads.GetPaged(ctx, tenantA.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, first, 1)

		second, err := reads.GetPaged(ctx, tenantA.ID, 2, 1)
		require.NoError(t, err)
		require.Len(t, second, 1)

		assert.NotEqual(t, first[0].ID, second[0].ID)

		third, err := reads.GetPaged(ctx, tenantA.ID, 3, 1)
		require.NoError(t, err)
		assert.Empty(t, third)
	})

	t.Run("GetPaged normalizes out-of-range paging", func(t *testing.T) {
		got, err := reads.GetPaged(ctx, tenantA.ID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Count is per tenant", func(t *testing.T) {
		countA, err := reads.Count(ctx, tenantA.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, countA)

		countB, err := reads.Count(ctx, tenantB.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, countB)
	})

	t.Run("Exists checks ownership, not just presence", func(t *testing.T) {
		ok, err := reads.Exists(ctx, pA2.ID, tenantA.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = reads.Exists(ctx, pA2.ID, tenantB.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
