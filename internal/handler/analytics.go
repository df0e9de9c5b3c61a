package handler

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandler returns demo dashboard data.  Real deployments replace
// this with their own reporting backend; the shape matches what the UI
// charts expect.
type AnalyticsHandler struct{}

func NewAnalyticsHandler() *AnalyticsHandler {
	return &AnalyticsHandler{}
}

func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	series := func(n, max int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = rng.Intn(max)
		}
		return out
	}

	return c.JSON(http.StatusOK, echo.Map{
		"visitsToday": 100 + rng.Intn(400),
		"revenue":     series(12, 5000),
		"signups":     series(12, 200),
		"sources": echo.Map{
			"direct":  rng.Intn(100),
			"search":  rng.Intn(100),
			"social":  rng.Intn(100),
			"mail":    rng.Intn(100),
		},
		"generatedAt": time.Now().UTC(),
	})
}
