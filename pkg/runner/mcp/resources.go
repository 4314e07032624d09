package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const schedulesURI = "timebox://schedules"

func registerResources(srv *server.MCPServer, svc *Service) {
	registerSchedulesResource(srv, svc)
	registerScheduleTemplate(srv, svc)
}

func registerSchedulesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		schedulesURI,
		"Schedules",
		mcp.WithResourceDescription("Days with a locally saved schedule."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dates, err := svc.ListDates(ctx)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"dates": dates,
			"count": len(dates),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerScheduleTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		schedulesURI+"/{date}",
		"Schedule",
		mcp.WithTemplateDescription("Timeboxes of one day, including unsaved edits."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := templateArg(request.Params.Arguments, "date")
		if date == "" {
			date = strings.TrimPrefix(request.Params.URI, schedulesURI+"/")
		}
		if date == "" || date == request.Params.URI {
			return nil, fmt.Errorf("schedule date is required")
		}

		dto, err := svc.GetSchedule(ctx, date)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

// templateArg reads a URI template variable, which the server may hand
// over as a string or a list of strings.
func templateArg(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
