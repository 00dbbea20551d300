// controller/controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ucook/accessflow/util"
)

const (
	testActor    = "actor-1"
	adminHeader  = "X-Test-Admin"
	jsonMimeType = "application/json"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupRouter authenticates every call as testActor. Admin routes pass
// only when adminHeader is present.
func setupRouter(register func(r *gin.RouterGroup, admin gin.HandlerFunc)) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(util.UserIDKey, testActor)
		c.Next()
	})
	admin := func(c *gin.Context) {
		if c.GetHeader(adminHeader) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
	register(r.Group("/"), admin)
	return r
}

func perform(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", jsonMimeType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
