// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the review catalogue to LLMs via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/royfox/little-reviews/internal/apperr"
	"github.com/royfox/little-reviews/internal/authoring"
	"github.com/royfox/little-reviews/internal/query"
	"github.com/royfox/little-reviews/internal/reviewservice"
)

const recordFormatURI = "littlereviews://record-format"

// Server wraps the MCP server with catalogue tools.
type Server struct {
	mcp *server.MCPServer
	svc *reviewservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *reviewservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Little Reviews",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_reviews",
		mcp.WithDescription("List reviews, filtered by media type and a title/author search, in the requested order."),
		mcp.WithString("type", mcp.Description("Media type filter"), mcp.Enum("all", "Movie", "TV Show", "Book", "Music")),
		mcp.WithString("query", mcp.Description("Case-insensitive substring of title or author")),
		mcp.WithString("sort", mcp.Description("Sort key"), mcp.Enum("reviewDate", "releaseYear", "rating")),
		mcp.WithString("direction", mcp.Description("Sort direction"), mcp.Enum("desc", "asc")),
	), s.listReviews)

	s.mcp.AddTool(mcp.NewTool("get_review",
		mcp.WithDescription("Read one review including its full text."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Review id (record file name without extension)")),
	), s.getReview)

	s.mcp.AddTool(mcp.NewTool("search_reviews",
		mcp.WithDescription("Full-text search through review titles, authors and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchReviews)

	s.mcp.AddTool(mcp.NewTool("draft_review",
		mcp.WithDescription("Produce a review record file for a new review, or for an edit when id is given. "+
			"Nothing is saved: the caller places the returned YAML into the record store. "+
			"Read the format first via get_record_format or the "+recordFormatURI+" resource."),
		mcp.WithString("id", mcp.Description("Existing review id to edit; omit for a new review")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the work")),
		mcp.WithString("type", mcp.Required(), mcp.Enum("Movie", "TV Show", "Book", "Music")),
		mcp.WithString("author", mcp.Description("Author (Book) or artist (Music)")),
		mcp.WithNumber("rating", mcp.Required(), mcp.Description("0 to 5 in half steps")),
		mcp.WithNumber("release_year", mcp.Required(), mcp.Description("Year of release")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Review body in Markdown")),
	), s.draftReview)

	s.mcp.AddTool(mcp.NewTool("get_record_format",
		mcp.WithDescription("Returns the review record file format."),
	), s.getRecordFormat)

	s.mcp.AddResource(
		mcp.NewResource(recordFormatURI, "Record Format",
			mcp.WithResourceDescription("Review record file format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrUnavailable):
		return mcp.NewToolResultError("catalogue unavailable: run `littlereviews build` first")
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("review not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listReviews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := url.Values{}
	v.Set("type", req.GetString("type", query.FilterAll))
	v.Set("q", req.GetString("query", ""))
	v.Set("sort", req.GetString("sort", ""))
	v.Set("dir", req.GetString("direction", ""))

	res, err := s.svc.List(ctx, query.ParseState(v))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res)
}

func (s *Server) getReview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(d.Review)
}

func (s *Server) searchReviews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, q, 20)
	if err != nil {
		return toolError(err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no reviews found"), nil
	}
	return jsonResult(results)
}

func (s *Server) draftReview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mediaType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rating, err := req.RequireFloat("rating")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	year, err := req.RequireFloat("release_year")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := s.svc.Draft(ctx, reviewservice.DraftRequest{
		ID: req.GetString("id", ""),
		Draft: authoring.Draft{
			Title:       title,
			Type:        mediaType,
			Author:      req.GetString("author", ""),
			Rating:      rating,
			Text:        text,
			ReleaseYear: int(year),
		},
	})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# save as %s\n%s", out.FileName, out.Content)), nil
}

func (s *Server) getRecordFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      recordFormatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
