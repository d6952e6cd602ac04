// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the calendar to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/daybook/internal/apperr"
	"github.com/starford/daybook/internal/eventstore"
	"github.com/starford/daybook/internal/grid"
	"github.com/starford/daybook/internal/models"
	"github.com/starford/daybook/internal/view"
)

// EventFormatURI is the resource holding EventFormatContract.
const EventFormatURI = "daybook://event-format"

// Server wraps the MCP server with calendar tools.
type Server struct {
	mcp    *server.MCPServer
	store  *eventstore.Store
	locale grid.Locale
}

// New creates a new MCP server with all calendar tools registered.
func New(store *eventstore.Store, locale grid.Locale) *Server {
	s := &Server{store: store, locale: locale.Or()}

	s.mcp = server.NewMCPServer(
		"daybook",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	categories := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = string(c)
	}
	eventFields := func(dateRequired bool) []mcp.ToolOption {
		dateOpts := []mcp.PropertyOption{mcp.Description("Day as YYYY-MM-DD")}
		if dateRequired {
			dateOpts = append(dateOpts, mcp.Required())
		}
		return []mcp.ToolOption{
			mcp.WithString("title", mcp.Required(), mcp.Description("Event title")),
			mcp.WithString("date", dateOpts...),
			mcp.WithString("startTime", mcp.Required(), mcp.Description("Start as HH:MM (24h)")),
			mcp.WithString("endTime", mcp.Required(), mcp.Description("End as HH:MM (24h), after startTime")),
			mcp.WithString("category", mcp.Enum(categories...), mcp.Description("Event category (default personal)")),
			mcp.WithString("description", mcp.Description("Optional notes")),
			mcp.WithBoolean("isReminder", mcp.Description("Show in upcoming reminders and fire a reminder at start")),
		}
	}

	s.mcp.AddTool(mcp.NewTool("month_grid",
		mcp.WithDescription("Return the 6x7 month grid (Monday first) with events per day and upcoming reminders."),
		mcp.WithNumber("year", mcp.Description("Year (default current)")),
		mcp.WithNumber("month", mcp.Description("Month 1-12 (default current)")),
		mcp.WithString("selected", mcp.Description("Optional selected day YYYY-MM-DD")),
	), s.monthGrid)

	s.mcp.AddTool(mcp.NewTool("events_on_day",
		mcp.WithDescription("List the events on one day in creation order."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day as YYYY-MM-DD")),
	), s.eventsOnDay)

	s.mcp.AddTool(mcp.NewTool("create_event", append([]mcp.ToolOption{
		mcp.WithDescription("Create a calendar event. Read the contract first via get_event_contract or the " +
			EventFormatURI + " resource."),
	}, eventFields(true)...)...), s.createEvent)

	s.mcp.AddTool(mcp.NewTool("update_event", append([]mcp.ToolOption{
		mcp.WithDescription("Replace an existing event. Omitting date keeps the event's day."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Event id")),
	}, eventFields(false)...)...), s.updateEvent)

	s.mcp.AddTool(mcp.NewTool("delete_event",
		mcp.WithDescription("Delete an event. Unknown ids are not an error."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Event id")),
	), s.deleteEvent)

	s.mcp.AddTool(mcp.NewTool("upcoming_reminders",
		mcp.WithDescription("Return up to five reminder events starting after now, soonest first."),
	), s.upcomingReminders)

	s.mcp.AddTool(mcp.NewTool("import_calendar",
		mcp.WithDescription("Import events from iCalendar data: an http(s) URL of an .ics feed, "+
			"a data:text/calendar URI, or the raw BEGIN:VCALENDAR text."),
		mcp.WithString("source", mcp.Required(), mcp.Description("URL, data URI or iCalendar text")),
	), s.importCalendar)

	s.mcp.AddTool(mcp.NewTool("get_event_contract",
		mcp.WithDescription("Returns the event payload contract. "+
			"Call this before creating or updating events."),
	), s.getEventContract)

	s.mcp.AddResource(
		mcp.NewResource(EventFormatURI, "Event Format Contract",
			mcp.WithResourceDescription("Fields, formats and validation rules for calendar events."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEventFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// errorResult renders store errors; validation failures list every field.
func errorResult(err error) *mcp.CallToolResult {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		out, _ := json.Marshal(map[string]any{"error": "validation failed", "fields": verr.Fields})
		return mcp.NewToolResultError(string(out))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) parseDay(v string) (time.Time, error) {
	d, err := time.ParseInLocation(models.DateLayout, v, s.store.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", v)
	}
	return d, nil
}

func (s *Server) monthGrid(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := s.store.Now()
	year := req.GetInt("year", now.Year())
	month := req.GetInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid month %d", month)), nil
	}
	st := view.State{Year: year, Month: time.Month(month), Location: s.store.Location()}
	if sel := req.GetString("selected", ""); sel != "" {
		day, err := s.parseDay(sel)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		st = view.Reduce(st, view.SelectDay{Date: day})
	}
	return jsonResult(view.BuildMonth(st, s.store, now, s.locale)), nil
}

func (s *Server) eventsOnDay(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := s.parseDay(date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.store.EventsOnDay(day)), nil
}

// eventInput reads the event fields shared by create_event and update_event.
func (s *Server) eventInput(req mcp.CallToolRequest) (models.EventInput, error) {
	in := models.EventInput{
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		StartTime:   req.GetString("startTime", ""),
		EndTime:     req.GetString("endTime", ""),
		Category:    models.Category(req.GetString("category", "")),
		IsReminder:  req.GetBool("isReminder", false),
	}
	if date := req.GetString("date", ""); date != "" {
		day, err := s.parseDay(date)
		if err != nil {
			verr := &apperr.ValidationError{}
			verr.Add("date", "invalid date")
			return in, verr
		}
		in.Date = day
	}
	return in, nil
}

func (s *Server) createEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := s.eventInput(req)
	if err != nil {
		return errorResult(err), nil
	}
	ev, err := s.store.Create(ctx, in)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(ev), nil
}

func (s *Server) updateEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := s.eventInput(req)
	if err != nil {
		return errorResult(err), nil
	}
	ev, err := s.store.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return errorResult(err), nil
	}
	return jsonResult(ev), nil
}

func (s *Server) deleteEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !s.store.Delete(ctx, id) {
		return mcp.NewToolResultText(fmt.Sprintf("no event with id %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) upcomingReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.store.UpcomingReminders(s.store.Now())), nil
}

func (s *Server) getEventContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EventFormatContract), nil
}

func (s *Server) readEventFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      EventFormatURI,
			MIMEType: "text/markdown",
			Text:     EventFormatContract,
		},
	}, nil
}
