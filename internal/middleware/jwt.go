package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/flatlogic/usermgmt-backend/internal/model"
    "github.com/flatlogic/usermgmt-backend/internal/repository"
    "github.com/flatlogic/usermgmt-backend/internal/utils"
)

// currentUserKey is where the authenticated user is stored on the Echo
// context.  Handlers read it through CurrentUser instead of an ambient
// request-global.
const currentUserKey = "currentUser"

// JWTAuth returns an Echo middleware that validates a Bearer token and loads
// the user it identifies into the request context.  Verification is stateless
// (signature + expiry only) so an already-issued token stays cryptographically
// valid for its whole 6h lifetime; the middleware compensates by re-reading
// the user row and rejecting accounts that were disabled or deleted since the
// token was minted.
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            payload, err := utils.ParseAuthToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            user, err := users.FindByEmail(ctx, payload.Email)
            if errors.Is(err, sql.ErrNoRows) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            if err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
            }
            if user.Disabled {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "user is disabled"})
            }

            c.Set(currentUserKey, &user)
            return next(c)
        }
    }
}

// CurrentUser returns the authenticated user loaded by JWTAuth, or nil on
// routes that run without it.
func CurrentUser(c echo.Context) *model.User {
    if u, ok := c.Get(currentUserKey).(*model.User); ok {
        return u
    }
    return nil
}
