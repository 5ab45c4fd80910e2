package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/KasumiMercury/primind-payment-reminder/internal/app"
	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/logging"
)

const (
	serverName    = "payment-reminders"
	serverVersion = "1.0.0"

	defaultActionWait = 5 * time.Second
)

type ActionDispatcher interface {
	Dispatch(ctx context.Context, event domain.ActionEvent) *app.Task
}

// Server exposes reminders as MCP tools.
type Server struct {
	mcpServer  *server.MCPServer
	useCase    app.ReminderUseCase
	dispatcher ActionDispatcher
	actionWait time.Duration
	currency   string
}

type Option func(*Server)

// WithActionWait bounds how long mark_reminder_paid waits for the outcome.
func WithActionWait(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.actionWait = d
		}
	}
}

func WithCurrency(code string) Option {
	return func(s *Server) {
		s.currency = code
	}
}

func NewServer(useCase app.ReminderUseCase, dispatcher ActionDispatcher, opts ...Option) *Server {
	s := &Server{
		useCase:    useCase,
		dispatcher: dispatcher,
		actionWait: defaultActionWait,
		currency:   app.DefaultCurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.registerTools()

	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// HTTPHandler serves the tools over the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List payment reminders, optionally only pending or only completed ones"),
			mcp.WithString("status", mcp.Description("Filter by status: pending, completed, or empty for all")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("schedule_reminder",
			mcp.WithDescription("Create a payment reminder and schedule its alarms"),
			mcp.WithString("title", mcp.Required(), mcp.Description("What has to be paid")),
			mcp.WithString("date_time", mcp.Description("Due time in RFC3339 format (e.g. 2025-01-15T09:00:00+07:00), empty for no due date")),
			mcp.WithString("amount", mcp.Description("Amount as a decimal string (e.g. 500000)")),
			mcp.WithString("category", mcp.Description("Optional category name")),
			mcp.WithString("note", mcp.Description("Optional note")),
		),
		s.handleScheduleReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("mark_reminder_paid",
			mcp.WithDescription("Mark a reminder as paid, as if the notification button had been pressed"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric reminder ID")),
		),
		s.handleMarkReminderPaid,
	)
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithModule(ctx, logging.ModuleMCP)

	var completed *bool

	switch status := req.GetString("status", ""); status {
	case "":
	case "pending":
		completed = new(bool)
	case "completed":
		v := true
		completed = &v
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown status %q (use pending or completed)", status)), nil
	}

	output, err := s.useCase.ListReminders(ctx, app.ListRemindersInput{Completed: completed})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if output.Count == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	reminders := make([]reminder, 0, len(output.Reminders))
	for _, r := range output.Reminders {
		reminders = append(reminders, fromOutput(r, s.currency))
	}

	return jsonResult(reminders)
}

func (s *Server) handleScheduleReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithModule(ctx, logging.ModuleMCP)

	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	var dateTime time.Time
	if raw := req.GetString("date_time", ""); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date_time format: %v (use RFC3339)", err)), nil
		}

		dateTime = t
	}

	amount := decimal.Zero
	if raw := req.GetString("amount", ""); raw != "" {
		a, err := decimal.NewFromString(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid amount: %v", err)), nil
		}

		amount = a
	}

	output, err := s.useCase.CreateReminder(ctx, app.CreateReminderInput{
		Title:    title,
		DateTime: dateTime,
		Amount:   amount,
		Category: req.GetString("category", ""),
		Note:     req.GetString("note", ""),
	})
	if err != nil {
		if app.IsValidationError(err) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid reminder: %v", err)), nil
		}

		return mcp.NewToolResultError("failed to schedule reminder, try again later"), nil
	}

	slog.InfoContext(ctx, "reminder scheduled from tool call",
		"reminder_id", output.ID,
	)

	return jsonResult(fromOutput(output, s.currency))
}

func (s *Server) handleMarkReminderPaid(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithModule(ctx, logging.ModuleMCP)

	raw := req.GetFloat("id", 0)
	if raw != float64(int64(raw)) {
		return mcp.NewToolResultError("id must be a whole number"), nil
	}

	id, err := domain.NewReminderID(int64(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid id: %v", err)), nil
	}

	task := s.dispatcher.Dispatch(ctx, domain.ActionEvent{Kind: domain.ActionMarkPaid, ReminderID: id})

	waitCtx, cancel := context.WithTimeout(ctx, s.actionWait)
	defer cancel()

	outcome, err := task.Wait(waitCtx)
	if err != nil {
		return mcp.NewToolResultText("Reminder " + strconv.FormatInt(id.Int64(), 10) + " is still being processed."), nil
	}

	if outcome.State != app.StateSuccess {
		return mcp.NewToolResultError(failureText(outcome)), nil
	}

	return mcp.NewToolResultText(outcome.Message), nil
}

// failureText falls back to the terminal state when the dispatcher left no
// user-facing message.
func failureText(outcome app.Outcome) string {
	if outcome.Message != "" {
		return outcome.Message
	}

	text := "action " + strings.ToLower(string(outcome.State))
	if outcome.Err != nil {
		text += ": " + outcome.Err.Error()
	}

	return text
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return mcp.NewToolResultText(string(output)), nil
}
