package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/milassn/fitness-tracker/internal/calendar"
	"github.com/milassn/fitness-tracker/internal/models"
)

var resTodaysTraining = mcp.NewResource(
	"fittrack://todays_training",
	"Today's Training",
	mcp.WithResourceDescription("What today's calendar shows: the scheduled session with its workout, or the recorded activity"),
	mcp.WithMIMEType("application/json"),
)

var resUpcomingSessions = mcp.NewResource(
	"fittrack://upcoming_sessions",
	"Upcoming Sessions",
	mcp.WithResourceDescription("The next five uncompleted training sessions of the active mesocycle"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) todaysTraining(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	today := models.Today()
	content := map[string]any{"date": today.String()}

	if meso := h.overlay.ActiveMesocycle(); meso != nil {
		cell := calendar.CellForDate(meso, today)
		if cell.Session != nil {
			content["session"] = cell.Session
		}
		if cell.Activity != nil {
			content["activity"] = cell.Activity
		}
	}

	data, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) upcomingSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions := h.overlay.UpcomingSessions(5)

	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
