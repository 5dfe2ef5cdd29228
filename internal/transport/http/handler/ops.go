package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workshop17/ticketing-engine/internal/health"
	"github.com/workshop17/ticketing-engine/internal/housekeeping"
)

const errInternalServer = "Internal server error"

// PassRunner is satisfied by *housekeeping.Runner.
type PassRunner interface {
	RunPass(ctx context.Context) (housekeeping.PassResult, error)
	LastResult() (housekeeping.PassResult, bool)
}

type OpsHandler struct {
	runner  PassRunner
	checker *health.Checker
	logger  *slog.Logger
}

func NewOpsHandler(runner PassRunner, checker *health.Checker, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{
		runner:  runner,
		checker: checker,
		logger:  logger.With("component", "ops_handler"),
	}
}

type passItemError struct {
	Step  string `json:"step"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

type passResultResponse struct {
	PassID     string          `json:"pass_id"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMS int64           `json:"duration_ms"`
	Reopened   int             `json:"reopened"`
	Escalated  int             `json:"escalated"`
	TasksFired int             `json:"tasks_fired"`
	Errors     []passItemError `json:"errors,omitempty"`
}

func toPassResponse(res housekeeping.PassResult) passResultResponse {
	out := passResultResponse{
		PassID:     res.PassID,
		StartedAt:  res.StartedAt,
		DurationMS: res.Duration.Milliseconds(),
		Reopened:   res.Reopened,
		Escalated:  res.Escalated,
		TasksFired: res.TasksFired,
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, passItemError{Step: e.Step, ID: e.ID, Error: e.Err.Error()})
	}
	return out
}

func (h *OpsHandler) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.checker.Liveness(ctx.Request.Context()))
}

func (h *OpsHandler) Readiness(ctx *gin.Context) {
	result := h.checker.Readiness(ctx.Request.Context())
	status := http.StatusOK
	if result.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, result)
}

// Status reports the most recent completed housekeeping pass.
func (h *OpsHandler) Status(ctx *gin.Context) {
	res, ok := h.runner.LastResult()
	if !ok {
		ctx.JSON(http.StatusOK, gin.H{"last_pass": nil})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"last_pass": toPassResponse(res)})
}

// Run triggers a housekeeping pass outside the regular schedule.
func (h *OpsHandler) Run(ctx *gin.Context) {
	res, err := h.runner.RunPass(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, housekeeping.ErrPassInProgress) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "pass already in progress"})
			return
		}
		h.logger.Error("manual pass", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, toPassResponse(res))
}
