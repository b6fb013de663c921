package container

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/domain/entity"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("BILLED_SESSION_JWT_SECRET", "container-secret")
	t.Setenv("BILLED_DATABASE_PATH", filepath.Join(dir, "billed.db"))
	t.Setenv("BILLED_STORAGE_UPLOAD_DIR", filepath.Join(dir, "uploads"))

	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNewContainer_Errors(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Store.Backend = "ftp"
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_LocalLifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(context.Background()), "second start")

	health := c.Health()
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)
	assert.Equal(t, "local", health.Components["store"].Message)

	ctx := context.Background()
	result, err := c.Store().Create(ctx, &entity.FileUpload{
		Name:    "facture.png",
		Content: []byte("png"),
		Email:   "a@a",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Key)

	bills, err := c.Store().List(ctx, "a@a")
	require.NoError(t, err)
	assert.Empty(t, bills, "uploads alone create no bill")

	require.NoError(t, c.Store().Update(ctx, &entity.Bill{
		ID:      result.Key,
		Email:   "a@a",
		Date:    "2022-12-30",
		Amount:  10,
		Pct:     20,
		Status:  entity.StatusPending,
		FileURL: result.FileURL,
	}))

	bills, err = c.Store().List(ctx, "a@a")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, entity.StatusPending, bills[0].Status)

	w := httptest.NewRecorder()
	c.Server().Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"overall":true`)

	w = httptest.NewRecorder()
	c.Server().Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()), "start after close")
}

func TestContainer_NoStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = config.StoreNone

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.Nil(t, c.Store())
	assert.False(t, c.Factory().HasStore())
	assert.Equal(t, "not used", c.Health().Components["database"].Message)

	token, err := c.Tokens().Issue(entity.User{Email: "a@a", Type: entity.UserTypeEmployee}, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c.Server().Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employee/bills", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/employee/bills", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	w = httptest.NewRecorder()
	c.Server().Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContainer_UnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Drafts.Backend = config.DraftsRedis
	cfg.Drafts.Redis.Addr = "127.0.0.1:1"

	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)

	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drafts")
	assert.False(t, c.Ready())
}

func TestProvideFactory_RejectsUnknownPolicy(t *testing.T) {
	_, err := ProvideFactory(nil, &config.UIConfig{Language: "fr", SubmitNavigation: "eventually"}, zap.NewNop())
	assert.Error(t, err)

	factory, err := ProvideFactory(nil, &config.UIConfig{Language: "en"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "en", factory.Lang())
}

func TestConvertToZapFields(t *testing.T) {
	fields := convertToZapFields("bill_id", "b1", 42, "skipped", "error", errors.New("boom"), "dangling")

	require.Len(t, fields, 2)
	assert.Equal(t, "bill_id", fields[0].Key)
	assert.Equal(t, "error", fields[1].Key)
}
