package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/interfaces/http/middleware"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	assert.Equal(t, "req-123", middleware.GetRequestID(tc.Context))

	tc.SetRequester(TestAdmin())
	assert.Equal(t, TestAdmin(), middleware.GetRequester(tc.Context))

	tc.SetHeader("X-Test", "1")
	assert.Equal(t, "1", tc.Context.Request.Header.Get("X-Test"))

	tc.Context.JSON(http.StatusTeapot, gin.H{"key": "value"})
	assert.Equal(t, http.StatusTeapot, tc.ResponseCode())
	assert.Equal(t, "value", JSONResponseAs[map[string]string](t, tc)["key"])
}

func TestTestIdentities(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))

	assert.Equal(t, planning.RoleUser, TestOwner().Role)
	assert.True(t, TestAdmin().IsAdmin())
	assert.NotEqual(t, TestOwner().ID, TestAdmin().ID)
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
}

func TestRequireEventually(t *testing.T) {
	calls := 0
	RequireEventually(t, func() bool {
		calls++
		return calls >= 3
	}, time.Second, time.Millisecond)
	assert.Equal(t, 3, calls)
}

func TestPerform(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"name": body["name"], "auth": c.GetHeader("Authorization"), "trace": c.GetHeader("X-Trace")},
		})
	})
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": gin.H{"code": "ALREADY_PAID", "message": "paid"}})
	})

	w := Perform(t, engine, http.MethodPost, "/echo", map[string]string{"name": "gala"},
		WithBearer("tok"), WithHeader("X-Trace", "abc"))
	data := DecodeData[map[string]string](t, w)
	assert.Equal(t, "gala", data["name"])
	assert.Equal(t, "Bearer tok", data["auth"])
	assert.Equal(t, "abc", data["trace"])

	w = Perform(t, engine, http.MethodPost, "/echo", []byte(`{"name":"raw"}`))
	assert.Equal(t, "raw", DecodeData[map[string]string](t, w)["name"])

	AssertErrorCode(t, Perform(t, engine, http.MethodGet, "/fail", nil), http.StatusConflict, "ALREADY_PAID")
}
