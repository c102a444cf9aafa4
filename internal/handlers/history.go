package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"sterilizer_control/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// parseQueryTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or a bare date. A
// date-only 'to' bound is widened to end of day when endOfDay is set.
func parseQueryTime(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if endOfDay && isDateOnly(raw) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
}

// historyFilterFromQuery builds the common filter; writes the 400 itself and
// reports ok=false when a bound fails to parse.
func (h *Handler) historyFilterFromQuery(c *gin.Context) (service.HistoryFilter, bool) {
	var f service.HistoryFilter
	var err error
	if f.From, err = parseQueryTime(c.Query("from"), false); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
		return f, false
	}
	if f.To, err = parseQueryTime(c.Query("to"), true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
		return f, false
	}
	f.Result = c.Query("result")
	f.Code = c.Query("code")
	return f, true
}

// @Summary      List cycle history
// @Description  Audit records of terminated cycles, newest first.
// @Tags         history
// @Produce      json
// @Param        from    query  string  false  "Start of range (RFC3339 or YYYY-MM-DD)"
// @Param        to      query  string  false  "End of range; date-only treated as end of day"
// @Param        result  query  string  false  "Terminal result"  Enums(success,error,aborted)
// @Success      200  {object}  map[string]interface{}  "count, cycles"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/history/cycles [get]
// @Security     BearerAuth
func (h *Handler) getCycleHistory(c *gin.Context) {
	f, ok := h.historyFilterFromQuery(c)
	if !ok {
		return
	}
	cycles, err := h.services.History.ListCycles(c.Request.Context(), f)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "cycle_history_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(cycles), "cycles": cycles})
}

// @Summary      List error history
// @Tags         history
// @Produce      json
// @Param        from  query  string  false  "Start of range (RFC3339 or YYYY-MM-DD)"
// @Param        to    query  string  false  "End of range; date-only treated as end of day"
// @Param        code  query  string  false  "Error code"
// @Success      200  {object}  map[string]interface{}  "count, errors"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/history/errors [get]
// @Security     BearerAuth
func (h *Handler) getErrorHistory(c *gin.Context) {
	f, ok := h.historyFilterFromQuery(c)
	if !ok {
		return
	}
	events, err := h.services.History.ListErrors(c.Request.Context(), f)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "error_history_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(events), "errors": events})
}

// @Summary      List vacuum test history
// @Tags         history
// @Produce      json
// @Param        from  query  string  false  "Start of range (RFC3339 or YYYY-MM-DD)"
// @Param        to    query  string  false  "End of range; date-only treated as end of day"
// @Success      200  {object}  map[string]interface{}  "count, tests"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/history/vacuum-tests [get]
// @Security     BearerAuth
func (h *Handler) getVacuumHistory(c *gin.Context) {
	f, ok := h.historyFilterFromQuery(c)
	if !ok {
		return
	}
	tests, err := h.services.History.ListVacuumTests(c.Request.Context(), f)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "vacuum_history_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(tests), "tests": tests})
}
