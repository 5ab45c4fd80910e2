package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

const DefaultActionWait = 2 * time.Second

type ActionDispatcher interface {
	Dispatch(ctx context.Context, event domain.ActionEvent) *app.Task
}

type ReminderHandler struct {
	useCase    app.ReminderUseCase
	dispatcher ActionDispatcher
	actionWait time.Duration
}

// NewReminderHandler wires the reminder routes. actionWait bounds how long an
// action request waits for its outcome before answering "accepted".
func NewReminderHandler(useCase app.ReminderUseCase, dispatcher ActionDispatcher, actionWait time.Duration) *ReminderHandler {
	if actionWait <= 0 {
		actionWait = DefaultActionWait
	}

	return &ReminderHandler{
		useCase:    useCase,
		dispatcher: dispatcher,
		actionWait: actionWait,
	}
}

func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)

		return
	}

	output, err := h.useCase.CreateReminder(c.Request.Context(), app.CreateReminderInput{
		Title:      req.Title,
		DateTime:   req.dateTime(),
		Amount:     req.Amount,
		Category:   req.Category,
		Note:       req.Note,
		Repeating:  req.Repeating,
		RepeatType: req.RepeatType,
	})
	if err != nil {
		handleError(c, err)

		return
	}

	slog.InfoContext(c.Request.Context(), "reminder created successfully",
		"reminder_id", output.ID,
	)
	c.JSON(http.StatusCreated, FromDTO(output))
}

func (h *ReminderHandler) ListReminders(c *gin.Context) {
	var req ListRemindersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)

		return
	}

	output, err := h.useCase.ListReminders(c.Request.Context(), app.ListRemindersInput{
		Completed: req.Completed,
	})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromDTOs(output))
}

func (h *ReminderHandler) GetReminder(c *gin.Context) {
	output, err := h.useCase.GetReminder(c.Request.Context(), app.GetReminderInput{ID: c.Param("id")})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromDTO(output))
}

func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)

		return
	}

	output, err := h.useCase.UpdateReminder(c.Request.Context(), app.UpdateReminderInput{
		ID:         c.Param("id"),
		Title:      req.Title,
		DateTime:   req.dateTime(),
		Amount:     req.Amount,
		Category:   req.Category,
		Note:       req.Note,
		Repeating:  req.Repeating,
		RepeatType: req.RepeatType,
	})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromDTO(output))
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id := c.Param("id")

	if err := h.useCase.DeleteReminder(c.Request.Context(), app.DeleteReminderInput{ID: id}); err != nil {
		handleError(c, err)

		return
	}

	slog.InfoContext(c.Request.Context(), "reminder deleted successfully",
		"reminder_id", id,
	)
	c.Status(http.StatusNoContent)
}

func (h *ReminderHandler) CompleteReminder(c *gin.Context) {
	output, err := h.useCase.CompleteReminder(c.Request.Context(), app.CompleteReminderInput{ID: c.Param("id")})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromDTO(output))
}

func (h *ReminderHandler) PendingAlarms(c *gin.Context) {
	output, err := h.useCase.PendingAlarms(c.Request.Context(), app.GetReminderInput{ID: c.Param("id")})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, fromAlarms(output))
}

// DispatchAction runs a notification action as if it had been tapped. The
// response carries the outcome when it is ready within actionWait.
func (h *ReminderHandler) DispatchAction(c *gin.Context) {
	id, err := domain.ReminderIDFromString(c.Param("id"))
	if err != nil {
		handleError(c, app.NewValidationError("id", err.Error()))

		return
	}

	kind, ok := domain.NewActionKind(c.Param("action"))
	if !ok {
		handleError(c, app.NewValidationError("action", "unknown action: "+c.Param("action")))

		return
	}

	task := h.dispatcher.Dispatch(c.Request.Context(), domain.ActionEvent{Kind: kind, ReminderID: id})

	waitCtx, cancel := context.WithTimeout(c.Request.Context(), h.actionWait)
	defer cancel()

	if _, err := task.Wait(waitCtx); err != nil {
		slog.InfoContext(c.Request.Context(), "action still running, answering accepted",
			"reminder_id", id.String(),
			"action", string(kind),
		)
	}

	c.JSON(http.StatusAccepted, fromTask(task))
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reminders := router.Group("/reminders")
	{
		reminders.POST("", h.CreateReminder)
		reminders.GET("", h.ListReminders)
		reminders.GET("/:id", h.GetReminder)
		reminders.PUT("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
		reminders.POST("/:id/complete", h.CompleteReminder)
		reminders.GET("/:id/alarms", h.PendingAlarms)
		reminders.POST("/:id/actions/:action", h.DispatchAction)
	}
}
