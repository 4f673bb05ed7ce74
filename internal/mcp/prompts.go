package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("system_diagram",
		mcp.WithPromptDescription("Draw a system architecture diagram with shapes and connectors"),
		mcp.WithArgument("systemName",
			mcp.ArgumentDescription("Name of the system to diagram"),
			mcp.RequiredArgument(),
		),
	), s.handleSystemDiagramPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("import_figma_design",
		mcp.WithPromptDescription("Bring a Figma design into a new board and tidy its layers"),
		mcp.WithArgument("figmaUrl",
			mcp.ArgumentDescription("Figma file or frame URL"),
			mcp.RequiredArgument(),
		),
	), s.handleImportFigmaPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("wireframe",
		mcp.WithPromptDescription("Sketch a screen wireframe inside a frame"),
		mcp.WithArgument("screen",
			mcp.ArgumentDescription("Screen to wireframe, e.g. 'login page'"),
			mcp.RequiredArgument(),
		),
	), s.handleWireframePrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}
}

func (s *Server) handleSystemDiagramPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := req.Params.Arguments["systemName"]
	return userPrompt(fmt.Sprintf("Create a system diagram for: %s", name), fmt.Sprintf(`Create a system architecture diagram for "%s" on the active board. Follow these steps:

1. Identify the main components of the system
2. Use add_shapes to create a rect for each component, named after it, without x/y so they are laid out automatically
3. Add a text shape above each group of components when it helps
4. Use connect_nodes to link related components, showing data flow or dependencies
5. Use arrange_nodes if the result looks crowded
6. Finish with list_layers to check every component is present

Use consistent colors: #3b82f6 for services, #10b981 for databases, #f59e0b for external systems.`, name)), nil
}

func (s *Server) handleImportFigmaPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	url := req.Params.Arguments["figmaUrl"]
	return userPrompt("Import a Figma design", fmt.Sprintf(`Import the Figma design at %s. Follow these steps:

1. Use create_document with a name describing the design
2. Use import_figma with source set to the URL. If it fails with a missing token, ask the user for a Figma personal access token and retry with the token argument
3. Use list_layers to review the imported layers
4. Rename layers with unclear names using update_node
5. Use export_image on the top-level frame to show the user the result`, url)), nil
}

func (s *Server) handleWireframePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	screen := req.Params.Arguments["screen"]
	return userPrompt(fmt.Sprintf("Wireframe: %s", screen), fmt.Sprintf(`Sketch a low-fidelity wireframe of a %s. Follow these steps:

1. Add a frame shape of 390x844 named after the screen
2. Add rects, text and lines for the layout, placing them inside the frame so they become its children
3. Keep a grayscale palette (#e5e7eb, #9ca3af, #374151)
4. Use export_image on the frame to preview it`, screen)), nil
}
