package echomw

import (
	"github.com/labstack/echo/v4"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/middleware"
)

// Validate validates the request body against t, stores the accepted instance
// in the request context on success, or answers 400 with the rejection.
func Validate(v *reqshape.Validator, t reqshape.Target, opt middleware.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			inst, err := middleware.Check(ctx, v, t, c.Request().Body, opt)
			if err != nil {
				return c.JSON(middleware.Respond(ctx, err, opt))
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithInstance(ctx, inst)))
			return next(c)
		}
	}
}

// Instance fetches the accepted instance from echo.Context.
func Instance(c echo.Context) (map[string]any, bool) {
	return middleware.ObjectFromContext(c.Request().Context())
}
