// ABOUTME: MCP resource implementations for jetgym.
// ABOUTME: Provides jetgym://workouts/recent, jetgym://streak, and jetgym://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/jetgym/internal/analytics"
	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

const (
	uriRecent  = "jetgym://workouts/recent"
	uriStreak  = "jetgym://streak"
	uriSummary = "jetgym://summary"

	recentLimit = 10
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriRecent,
		Name:        "Recent Workouts",
		Description: "Last 10 workouts with their exercises and sets",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriStreak,
		Name:        "Training Streak",
		Description: "Current streak and this week's completed weekdays",
		MIMEType:    "application/json",
	}, s.handleStreakResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriSummary,
		Name:        "Training Summary",
		Description: "Last workout, this week's workouts, streak and consistency",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	workouts, err := s.svc.Workouts.List(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	if len(workouts) > recentLimit {
		workouts = workouts[:recentLimit]
	}

	return jsonResource(uriRecent, map[string]any{
		"workouts": workouts,
		"count":    len(workouts),
	})
}

func (s *Server) handleStreakResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	streak, err := s.streak(ctx, uid)
	if err != nil {
		return nil, err
	}
	return jsonResource(uriStreak, streak)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	workouts, err := s.svc.Workouts.List(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	streak, err := s.streak(ctx, uid)
	if err != nil {
		return nil, err
	}

	loc := s.svc.Location()
	thisWeek := analytics.InRange(workouts, calendar.PeriodWeek.Range(s.svc.Now(), loc), loc)

	result := map[string]any{
		"totalWorkouts":    len(workouts),
		"workoutsThisWeek": len(thisWeek),
		"streak":           streak,
	}
	if last := analytics.LastWorkout(workouts, loc); last != nil {
		result["lastWorkout"] = analytics.Summarize(*last)
	}

	// Consistency degrades to the local computation when the server is down.
	insight, err := s.svc.Analytics.ConsistencyInsight(ctx, uid, 0)
	if err == nil {
		result["consistency"] = insight
	}

	return jsonResource(uriSummary, result)
}

// streak reads the cached streak, listing workouts first when nothing is cached.
func (s *Server) streak(ctx context.Context, uid int64) (models.Streak, error) {
	streak, err := s.svc.Analytics.StreakOrFetch(ctx, uid)
	if err != nil {
		return models.Streak{}, fmt.Errorf("failed to compute streak: %w", err)
	}
	return streak, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
