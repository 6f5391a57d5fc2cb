package ssl

import (
	"fmt"

	"CrediAgenda/pkg/zlog"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// TlsHandler redirects plain HTTP to the TLS host when SSL is enabled.
func TlsHandler(host string, port int) gin.HandlerFunc {
	return func(c *gin.Context) {
		secureMiddleware := secure.New(secure.Options{
			SSLRedirect: true,
			SSLHost:     fmt.Sprintf("%s:%d", host, port),
		})
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			zlog.Error("tls redirect failed: " + err.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}
