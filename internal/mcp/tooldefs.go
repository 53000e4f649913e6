package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kayratasci4/Notes/internal/ai"
)

var createToolDef = mcp.NewTool("note_create",
	mcp.WithDescription("Create a new empty note. Returns the note; its id becomes the natural selection candidate."),
	mcp.WithString("title", mcp.Description("Initial title (optional)")),
	mcp.WithString("content", mcp.Description("Initial content (optional)")),
)

var listToolDef = mcp.NewTool("note_list",
	mcp.WithDescription("List all notes sorted by last update, newest first."),
)

var searchToolDef = mcp.NewTool("note_search",
	mcp.WithDescription("Search notes by case-insensitive substring over title or content, sorted by last update."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
)

var getToolDef = mcp.NewTool("note_get",
	mcp.WithDescription("Fetch a single note by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
)

var updateToolDef = mcp.NewTool("note_update",
	mcp.WithDescription("Update a note's title and/or content. Omitted fields are left unchanged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("content", mcp.Description("New content")),
)

var deleteToolDef = mcp.NewTool("note_delete",
	mcp.WithDescription("Delete a note permanently. Requires confirm=true; deletion is irreversible."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to confirm the irreversible delete")),
)

var generateToolDef = mcp.NewTool("note_generate",
	mcp.WithDescription("Apply an AI text-generation action to a note's content and commit the result."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	mcp.WithString("action", mcp.Required(),
		mcp.Description("Action kind: "+strings.Join(ai.Actions(), ", "))),
)
