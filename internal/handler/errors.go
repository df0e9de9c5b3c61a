package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flatlogic/usermgmt-backend/internal/notification"
)

// respondError maps service failures onto HTTP statuses: validation errors to
// 400, forbidden to 403, missing entities to 404, anything else to 500.  The
// boundary never swallows an error; unexpected ones are logged with their
// cause and answered with a generic message so internals do not leak.
func respondError(c echo.Context, err error) error {
	var ve *notification.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message})
	}
	var fe *notification.ForbiddenError
	if errors.As(err, &fe) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": fe.Message})
	}
	var nf *notification.NotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Message})
	}
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": notification.Get("errors.notFound.message")})
	}
	log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
