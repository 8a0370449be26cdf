package ginmw

import (
	"github.com/gin-gonic/gin"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/middleware"
)

// Validate validates the incoming JSON against t, stores the accepted instance
// in the request context, and on failure aborts with the rejection payload.
func Validate(v *reqshape.Validator, t reqshape.Target, opt middleware.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		inst, err := middleware.Check(ctx, v, t, c.Request.Body, opt)
		if err != nil {
			c.AbortWithStatusJSON(middleware.Respond(ctx, err, opt))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithInstance(ctx, inst))
		c.Next()
	}
}

// Instance fetches the accepted instance from gin.Context.
func Instance(c *gin.Context) (map[string]any, bool) {
	return middleware.ObjectFromContext(c.Request.Context())
}
