package handlers

import (
	"errors"
	"net/http"

	"sterilizer_control/internal/controller"
	"sterilizer_control/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusStarted  = "started"
	statusStopped  = "stopped"
	statusAccepted = "accepted"
)

// logAndJSONError centralizes error logging and the JSON error response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondWithStatusAndState returns a status plus the fresh snapshot.
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string) {
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"state":  h.services.Monitoring.Snapshot(),
	})
}

// commandStatusCode maps controller validation errors to HTTP codes.
func commandStatusCode(err error) int {
	switch {
	case errors.Is(err, controller.ErrProgramNotFound):
		return http.StatusNotFound
	case errors.Is(err, controller.ErrCycleActive),
		errors.Is(err, controller.ErrVacuumTestActive),
		errors.Is(err, controller.ErrErrorsPending),
		errors.Is(err, controller.ErrDoorNotSecured):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// StartCycleRequest selects the cycle template to run.
type StartCycleRequest struct {
	ProgramID string `json:"program_id" binding:"required" example:"P134"`
}

// VacuumTestRequest configures the leak test durations, seconds.
type VacuumTestRequest struct {
	StabilizationSec float64 `json:"stabilization_sec" binding:"required" example:"300"`
	TestSec          float64 `json:"test_sec" binding:"required" example:"600"`
}

// PowerFailRequest carries the optional outage message.
type PowerFailRequest struct {
	Message string `json:"message,omitempty" example:"grid outage"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Get sterilizer state snapshot
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  models.SterilizerState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/sterilizer/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Snapshot())
}

// @Summary      List cycle programs
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/sterilizer/programs [get]
// @Security     BearerAuth
func (h *Handler) getPrograms(c *gin.Context) {
	progs := h.services.Monitoring.Programs()
	c.JSON(http.StatusOK, gin.H{"count": len(progs), "programs": progs})
}

// @Summary      Start a sterilization cycle
// @Tags         sterilizer
// @Accept       json
// @Produce      json
// @Param        body  body  StartCycleRequest  true  "Program selection"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/sterilizer/start [post]
// @Security     BearerAuth
func (h *Handler) startCycle(c *gin.Context) {
	var req StartCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.services.Control.StartCycle(c.Request.Context(), req.ProgramID); err != nil {
		h.logAndJSONError(c, commandStatusCode(err), err.Error(), "cycle_start_refused", err, "program_id", req.ProgramID)
		return
	}
	h.respondWithStatusAndState(c, statusStarted)
}

// @Summary      Stop the running cycle
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/sterilizer/stop [post]
// @Security     BearerAuth
func (h *Handler) stopCycle(c *gin.Context) {
	h.services.Control.StopCycle(c.Request.Context())
	h.respondWithStatusAndState(c, statusStopped)
}

// @Summary      Release the door lock
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/sterilizer/door/open [post]
// @Security     BearerAuth
func (h *Handler) openDoor(c *gin.Context) {
	h.services.Control.OpenDoor()
	h.respondWithStatusAndState(c, statusAccepted)
}

// @Summary      Engage the door lock
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/sterilizer/door/close [post]
// @Security     BearerAuth
func (h *Handler) closeDoor(c *gin.Context) {
	h.services.Control.CloseDoor()
	h.respondWithStatusAndState(c, statusAccepted)
}

// @Summary      Start a vacuum leak test
// @Tags         sterilizer
// @Accept       json
// @Produce      json
// @Param        body  body  VacuumTestRequest  true  "Test durations"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/sterilizer/vacuum-test [post]
// @Security     BearerAuth
func (h *Handler) startVacuumTest(c *gin.Context) {
	var req VacuumTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if err := h.services.Control.StartVacuumTest(req.StabilizationSec, req.TestSec); err != nil {
		h.logAndJSONError(c, commandStatusCode(err), err.Error(), "vacuum_test_refused", err)
		return
	}
	h.respondWithStatusAndState(c, statusStarted)
}

// @Summary      Reset active errors
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/sterilizer/reset-errors [post]
// @Security     BearerAuth
func (h *Handler) resetErrors(c *gin.Context) {
	h.services.Control.ResetErrors()
	h.respondWithStatusAndState(c, statusAccepted)
}

// @Summary      Simulate a power failure
// @Tags         sterilizer
// @Accept       json
// @Produce      json
// @Param        body  body  PowerFailRequest  false  "Outage message"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/sterilizer/power-fail [post]
// @Security     BearerAuth
func (h *Handler) powerFail(c *gin.Context) {
	var req PowerFailRequest
	_ = c.ShouldBindJSON(&req) // body optional
	h.services.Control.PowerFail(req.Message)
	h.respondWithStatusAndState(c, statusAccepted)
}

// @Summary      Resume the cycle after a power failure
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/sterilizer/power-continue [post]
// @Security     BearerAuth
func (h *Handler) powerContinue(c *gin.Context) {
	h.services.Control.ContinueAfterPower()
	h.respondWithStatusAndState(c, statusAccepted)
}

// @Summary      Abort the cycle after a power failure
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/sterilizer/power-abort [post]
// @Security     BearerAuth
func (h *Handler) powerAbort(c *gin.Context) {
	h.services.Control.AbortAfterPower(c.Request.Context())
	h.respondWithStatusAndState(c, statusAccepted)
}

// @Summary      Set a program override
// @Description  Partial patch applied on top of the base template at cycle start.
// @Tags         sterilizer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Program id"
// @Param        body  body  models.ProgramOverride  true  "Override fields"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/sterilizer/programs/{id}/override [put]
// @Security     BearerAuth
func (h *Handler) setProgramOverride(c *gin.Context) {
	var ov models.ProgramOverride
	if err := c.ShouldBindJSON(&ov); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.services.Control.SetProgramOverride(id, ov); err != nil {
		h.logAndJSONError(c, commandStatusCode(err), err.Error(), "program_override_refused", err, "program_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusAccepted, "program_id": id})
}

// @Summary      Set calibration offsets
// @Tags         sterilizer
// @Accept       json
// @Produce      json
// @Param        body  body  models.CalibrationPatch  true  "Offset fields"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/sterilizer/calibration [put]
// @Security     BearerAuth
func (h *Handler) setCalibration(c *gin.Context) {
	var patch models.CalibrationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	h.services.Control.SetCalibration(patch)
	h.respondWithStatusAndState(c, statusAccepted)
}

// @Summary      Reset calibration offsets
// @Tags         sterilizer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/sterilizer/calibration [delete]
// @Security     BearerAuth
func (h *Handler) resetCalibration(c *gin.Context) {
	h.services.Control.ResetCalibration()
	h.respondWithStatusAndState(c, statusAccepted)
}
