package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/milassn/fitness-tracker/internal/calendar"
	"github.com/milassn/fitness-tracker/internal/goals"
	"github.com/milassn/fitness-tracker/internal/models"
	"github.com/milassn/fitness-tracker/internal/stats"
	"github.com/milassn/fitness-tracker/internal/store"
)

// --- Tool definitions ---

var toolGetActiveMesocycle = mcp.NewTool("get_active_mesocycle",
	mcp.WithDescription("Get the currently active mesocycle: its date range, weekday schedule, workout templates, and full session list."),
)

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List the active mesocycle's training sessions, optionally filtered by week or completion state."),
	mcp.WithNumber("week", mcp.Description("Filter to one training week (1-based)")),
	mcp.WithBoolean("only_open", mcp.Description("When true, return only sessions not yet completed")),
)

var toolGetCalendarDay = mcp.NewTool("get_calendar_day",
	mcp.WithDescription("Get what the calendar shows for one date within the active mesocycle: the scheduled session and/or the recorded activity (rest day, sick day, other activity)."),
	mcp.WithString("date", mcp.Required(), mcp.Description("Date (YYYY-MM-DD)")),
)

var toolGetTrainingGoals = mcp.NewTool("get_training_goals",
	mcp.WithDescription("Get per-set training goals (reps, weight, RPE, drop sets) for one exercise across the active mesocycle, in session order."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
)

var toolListCompletedTrainings = mcp.NewTool("list_completed_trainings",
	mcp.WithDescription("List completed trainings with per-set results, most recent first."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of trainings to return. Defaults to 20.")),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Get aggregate training statistics: weekly volume, weekly average RPE, the current training streak, mesocycle progress, and best lifts by estimated one-rep max."),
	mcp.WithNumber("lifts", mcp.Description("Number of best lifts to include. Defaults to 3.")),
)

// --- Tool handlers ---

func (h *handlers) getActiveMesocycle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meso := h.overlay.ActiveMesocycle()
	if meso == nil {
		return mcp.NewToolResultError("no active mesocycle"), nil
	}
	result, err := mcp.NewToolResultJSON(meso)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meso := h.overlay.ActiveMesocycle()
	if meso == nil {
		return mcp.NewToolResultError("no active mesocycle"), nil
	}

	week := req.GetInt("week", 0)
	onlyOpen := req.GetBool("only_open", false)

	sessions := []models.Session{}
	for _, session := range meso.Sessions {
		if week > 0 && session.Week != week {
			continue
		}
		if onlyOpen && session.Completed {
			continue
		}
		sessions = append(sessions, session)
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCalendarDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dateStr, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date parameter is required"), nil
	}
	date, err := models.ParseDate(dateStr)
	if err != nil {
		return mcp.NewToolResultError("invalid date, expected YYYY-MM-DD: " + err.Error()), nil
	}

	meso := h.overlay.ActiveMesocycle()
	if meso == nil {
		return mcp.NewToolResultError("no active mesocycle"), nil
	}

	cell := calendar.CellForDate(meso, date)
	if cell.Empty() {
		result, _ := mcp.NewToolResultJSON(map[string]string{"date": dateStr, "content": "none"})
		return result, nil
	}
	result, err := mcp.NewToolResultJSON(cell)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	meso := h.overlay.ActiveMesocycle()
	if meso == nil {
		return mcp.NewToolResultError("no active mesocycle"), nil
	}

	targets := goals.TargetsForExercise(meso, exerciseID)
	if len(targets) == 0 {
		return mcp.NewToolResultError("exercise not scheduled in the active mesocycle"), nil
	}

	stored := h.goals.List()
	type targetGoals struct {
		SessionNumber int                  `json:"sessionNumber"`
		Date          models.Date          `json:"date"`
		Goal          *models.TrainingGoal `json:"goal,omitempty"`
	}
	out := make([]targetGoals, 0, len(targets))
	for _, target := range targets {
		out = append(out, targetGoals{
			SessionNumber: target.Session.Number,
			Date:          target.Session.Date,
			Goal:          goals.Get(stored, meso.ID, target.Key),
		})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listCompletedTrainings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	trainings, _ := store.LoadJSON[[]models.CompletedTraining](h.store, models.TableCompletedTrainings)
	// Most recent first.
	for i, j := 0, len(trainings)-1; i < j; i, j = i+1, j-1 {
		trainings[i], trainings[j] = trainings[j], trainings[i]
	}
	if limit > 0 && len(trainings) > limit {
		trainings = trainings[:limit]
	}

	result, err := mcp.NewToolResultJSON(trainings)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lifts := req.GetInt("lifts", 3)

	trainings, _ := store.LoadJSON[[]models.CompletedTraining](h.store, models.TableCompletedTrainings)
	now := time.Now()

	out := struct {
		stats.Summary
		BestLifts []stats.Lift `json:"bestLifts"`
	}{
		Summary:   stats.Summarize(trainings, h.overlay.ActiveMesocycle(), now),
		BestLifts: stats.BestLifts(trainings, lifts),
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
