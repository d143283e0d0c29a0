// Package mcp exposes the local training replica to MCP clients: the
// active plan, the calendar, training goals, completed trainings, and
// aggregate training statistics.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/milassn/fitness-tracker/internal/calendar"
	"github.com/milassn/fitness-tracker/internal/goals"
	"github.com/milassn/fitness-tracker/internal/store"
)

// New creates an MCP server with all tools and resources registered.
func New(s *store.Store, version string, log *slog.Logger) *server.MCPServer {
	srv := server.NewMCPServer("FitTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitTrack training data server. Query mesocycle plans, scheduled and completed trainings, calendar entries, and per-set training goals. All data comes from the local sync replica."),
	)

	h := &handlers{
		store:   s,
		overlay: calendar.New(s, log),
		goals:   goals.New(s, log),
	}

	srv.AddTools(
		server.ServerTool{Tool: toolGetActiveMesocycle, Handler: h.getActiveMesocycle},
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetCalendarDay, Handler: h.getCalendarDay},
		server.ServerTool{Tool: toolGetTrainingGoals, Handler: h.getTrainingGoals},
		server.ServerTool{Tool: toolListCompletedTrainings, Handler: h.listCompletedTrainings},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
	)

	srv.AddResources(
		server.ServerResource{Resource: resTodaysTraining, Handler: h.todaysTraining},
		server.ServerResource{Resource: resUpcomingSessions, Handler: h.upcomingSessions},
	)

	return srv
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	store   *store.Store
	overlay *calendar.Overlay
	goals   *goals.Planner
}
