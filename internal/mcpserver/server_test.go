package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/royfox/little-reviews/internal/catalog"
	"github.com/royfox/little-reviews/internal/record"
	"github.com/royfox/little-reviews/internal/reviewservice"
	"github.com/royfox/little-reviews/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir, store := testutil.TestStore(t)
	testutil.WriteRecord(t, dir, "dune.yaml", testutil.Record("Dune", "Book", "2024-01-01")+"author: Frank Herbert\n")
	testutil.WriteRecord(t, dir, "heat.yaml", testutil.Record("Heat", "Movie", "2024-02-01"))

	sess := testutil.BuildSession(t, store)
	return New(reviewservice.NewService(reviewservice.NewSessions(sess)), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_reviews":
		result, err = srv.listReviews(ctx, req)
	case "get_review":
		result, err = srv.getReview(ctx, req)
	case "search_reviews":
		result, err = srv.searchReviews(ctx, req)
	case "draft_review":
		result, err = srv.draftReview(ctx, req)
	case "get_record_format":
		result, err = srv.getRecordFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListReviews(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_reviews", map[string]any{})
	var res reviewservice.ListResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Items) != 2 || res.Items[0].ID != "heat" {
		t.Errorf("items = %+v, want heat first", res.Items)
	}

	r = callTool(t, srv, "list_reviews", map[string]any{"type": "Book", "direction": "asc"})
	res = reviewservice.ListResult{}
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if len(res.Items) != 1 || res.Items[0].ID != "dune" {
		t.Errorf("filtered items = %+v", res.Items)
	}
}

func TestGetReview(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_review", map[string]any{"id": "dune"})
	if r.IsError {
		t.Fatalf("get_review error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"author": "Frank Herbert"`) {
		t.Errorf("review = %s", resultText(r))
	}

	r = callTool(t, srv, "get_review", map[string]any{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing review")
	}
}

func TestSearchReviews(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_reviews", map[string]any{"query": "herbert"})
	if !strings.Contains(resultText(r), `"id": "dune"`) {
		t.Errorf("search = %s", resultText(r))
	}

	r = callTool(t, srv, "search_reviews", map[string]any{"query": "zzz"})
	if resultText(r) != "no reviews found" {
		t.Errorf("empty search = %q", resultText(r))
	}
}

func TestDraftReview(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "draft_review", map[string]any{
		"title": "Kind of Blue", "type": "Music", "author": "Miles Davis",
		"rating": 5.0, "release_year": 1959.0, "text": "So what.",
	})
	if r.IsError {
		t.Fatalf("draft error: %s", resultText(r))
	}
	text := resultText(r)
	header, body, ok := strings.Cut(text, "\n")
	if !ok || !strings.HasPrefix(header, "# save as kind-of-blue-") {
		t.Fatalf("unexpected draft output %q", text)
	}
	got, err := record.Decode([]byte(body), time.Now())
	if err != nil {
		t.Fatalf("draft does not decode: %v", err)
	}
	if got.Author != "Miles Davis" || got.ReleaseYear != 1959 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestDraftReview_Invalid(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "draft_review", map[string]any{
		"title": "X", "type": "Music", "rating": 2.0, "release_year": 2000.0, "text": "no artist",
	})
	if !r.IsError {
		t.Error("expected error for music without artist")
	}

	r = callTool(t, srv, "draft_review", map[string]any{"title": "X"})
	if !r.IsError {
		t.Error("expected error for missing arguments")
	}
}

func TestGetRecordFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_record_format", map[string]any{})
	if !strings.Contains(resultText(r), "releaseYear") {
		t.Error("record format contract missing field list")
	}

	contents, err := srv.readRecordFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
}

func TestUnavailableCatalogue(t *testing.T) {
	sess := &catalog.Session{Status: catalog.Unavailable}
	srv := New(reviewservice.NewService(reviewservice.NewSessions(sess)), "test")
	r := callTool(t, srv, "list_reviews", map[string]any{})
	if !r.IsError || !strings.Contains(resultText(r), "unavailable") {
		t.Errorf("unavailable = %q", resultText(r))
	}
}
