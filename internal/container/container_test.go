package container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-vision-analyzer/internal/config"
)

func TestNewContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.Load("")
	require.NoError(t, err)

	c, err := NewContainer(cfg)

	require.NoError(t, err)
	assert.Same(t, cfg, c.Config())
	assert.NotNil(t, c.Service())
	assert.Nil(t, c.blobSource)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewContainer_WithBlobStorage(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.AccountName = "acct"
	cfg.Storage.AccountKey = "dGVzdC1hY2NvdW50LWtleQ=="

	c, err := NewContainer(cfg)

	require.NoError(t, err)
	assert.NotNil(t, c.blobSource)
}

func TestNewContainer_RequiresConfig(t *testing.T) {
	_, err := NewContainer(nil)

	assert.Error(t, err)
}

func TestNewContainer_AllowedHosts(t *testing.T) {
	assert.NoError(t, urlValidator([]string{"images.example.com"}).ValidateImageURL("https://images.example.com/a.jpg"))
	assert.Error(t, urlValidator([]string{"images.example.com"}).ValidateImageURL("https://evil.example.net/a.jpg"))
	assert.NoError(t, urlValidator(nil).ValidateImageURL("https://evil.example.net/a.jpg"))
}
