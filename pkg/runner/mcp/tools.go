package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/timebox/pkg/app"
)

const dateHelp = "Day as YYYY-MM-DD; today when omitted."

func registerTools(srv *server.MCPServer, svc *Service) {
	registerGetScheduleTool(srv, svc)
	registerSetBlockTool(srv, svc)
	registerAddTimeboxTool(srv, svc)
	registerDeleteBlockTool(srv, svc)
	registerAdjustBlocksTool(srv, svc)
	registerSaveScheduleTool(srv, svc)
	registerCarryOverTool(srv, svc)
	registerReportTool(srv, svc)
}

type dateArgs struct {
	Date string `json:"date"`
}

func registerGetScheduleTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_schedule",
		mcp.WithDescription("Show the timeboxes of a day, including unsaved edits."),
		mcp.WithString("date", mcp.Description(dateHelp)),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args dateArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.GetSchedule(ctx, args.Date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetBlockTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_block",
		mcp.WithDescription("Label a timebox and optionally move it. Labelling the last block adds the next one."),
		mcp.WithString("date", mcp.Description(dateHelp)),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Position of the block, starting at 0."),
		),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("What the timebox is for. Empty clears it."),
		),
		mcp.WithString("start", mcp.Description("New start as HH:mm.")),
		mcp.WithString("end", mcp.Description("New end as HH:mm; 00:00 or 24:00 is the end of the day.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Date  string `json:"date"`
			Index int    `json:"index"`
			Label string `json:"label"`
			Start string `json:"start"`
			End   string `json:"end"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.SetBlock(ctx, args.Date, app.BlockEdit{
			Index: args.Index,
			Label: args.Label,
			Start: args.Start,
			End:   args.End,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerAddTimeboxTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_timebox",
		mcp.WithDescription("Append a timebox after the last one, or from now when the day has fallen behind."),
		mcp.WithString("date", mcp.Description(dateHelp)),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args dateArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.AddTimebox(ctx, args.Date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteBlockTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_block",
		mcp.WithDescription("Remove a timebox. The only timebox of a day is kept."),
		mcp.WithString("date", mcp.Description(dateHelp)),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Position of the block, starting at 0."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Date  string `json:"date"`
			Index int    `json:"index"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.DeleteBlock(ctx, args.Date, args.Index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerAdjustBlocksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"adjust_blocks",
		mcp.WithDescription("Insert a timebox between a block and the next one, shortening both by half the length."),
		mcp.WithString("date", mcp.Description(dateHelp)),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Position of the block before the gap, starting at 0."),
		),
		mcp.WithString("minutes",
			mcp.Required(),
			mcp.Description("Length of the new block, such as 30, 45m or 1h."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Date    string `json:"date"`
			Index   int    `json:"index"`
			Minutes any    `json:"minutes"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.AdjustBlocks(ctx, args.Date, args.Index, fmt.Sprint(args.Minutes))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSaveScheduleTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"save_schedule",
		mcp.WithDescription("Save the labelled timeboxes of a day locally and sync them to the server."),
		mcp.WithString("date", mcp.Description(dateHelp)),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args dateArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.SaveSchedule(ctx, args.Date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCarryOverTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"carry_over",
		mcp.WithDescription("Start a day with the labelled timeboxes of another day. Unsaved edits of the day are replaced."),
		mcp.WithString("date", mcp.Description(dateHelp)),
		mcp.WithString("from", mcp.Description("Day to copy from as YYYY-MM-DD; the day before when omitted.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Date string `json:"date"`
			From string `json:"from"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.CarryOver(ctx, args.From, args.Date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerReportTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_report",
		mcp.WithDescription("Sum the labelled time of saved days, per day and per label."),
		mcp.WithString("since", mcp.Description("First day as YYYY-MM-DD; six days before until when omitted.")),
		mcp.WithString("until", mcp.Description("Last day as YYYY-MM-DD; today when omitted.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Since string `json:"since"`
			Until string `json:"until"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.Report(ctx, args.Since, args.Until)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
