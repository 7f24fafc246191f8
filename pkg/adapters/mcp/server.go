// Package mcp exposes the session manager as a Model Context Protocol server,
// so agents can mount components and dispatch messages as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SendResponse is the structured result of a message dispatch.
type SendResponse struct {
	AppStateChanged   bool                 `json:"app_state_changed" jsonschema_description:"Whether the dispatch committed application state"`
	LocalStateChanged bool                 `json:"local_state_changed" jsonschema_description:"Whether the dispatch committed local state"`
	Actions           int                  `json:"actions" jsonschema_description:"Number of actions routed"`
	Tree              *domain.TreeSnapshot `json:"tree,omitempty" jsonschema_description:"The tree after the dispatch"`
}

// MountResponse is the structured result of mounting a session.
type MountResponse struct {
	SessionID string        `json:"session_id" jsonschema_description:"The created session"`
	Root      domain.NodeID `json:"root" jsonschema_description:"The root node ID"`
}

// Server wraps a session manager and a component registry as an MCP server.
type Server struct {
	sessions  *session.Manager
	registry  *registry.Registry
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(sessions *session.Manager, reg *registry.Registry) *Server {
	s := &Server{
		sessions:  sessions,
		registry:  reg,
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: list_components
	s.mcpServer.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List the component names registered with the engine."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.registry.Components())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: mount_session
	mountTool := mcp.NewTool("mount_session",
		mcp.WithDescription("Mount a registered component as the root of a new session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Identifier for the new session")),
		mcp.WithString("component", mcp.Required(), mcp.Description("Registered component name")),
		mcp.WithString("app_state", mcp.Description("JSON value for the root's initial application state (optional)")),
		mcp.WithOutputSchema[MountResponse](),
	)
	s.mcpServer.AddTool(mountTool, mcp.NewStructuredToolHandler(s.handleMount))

	// TOOL: get_tree
	treeTool := mcp.NewTool("get_tree",
		mcp.WithDescription("Get the full component tree snapshot for a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
		mcp.WithOutputSchema[domain.TreeSnapshot](),
	)
	s.mcpServer.AddTool(treeTool, mcp.NewStructuredToolHandler(s.handleGetTree))

	// TOOL: send_message
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send a registered message to a node and report the effect."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Target node ID")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Registered message type name")),
		mcp.WithString("payload", mcp.Description("JSON object with the message fields (optional)")),
		mcp.WithOutputSchema[SendResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSend))
}

func (s *Server) handleMount(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (MountResponse, error) {
	sessionID, _ := args["session_id"].(string)
	component, _ := args["component"].(string)

	var appState any
	if stateStr, ok := args["app_state"].(string); ok && stateStr != "" {
		if err := json.Unmarshal([]byte(stateStr), &appState); err != nil {
			return MountResponse{}, fmt.Errorf("invalid app_state: %w", err)
		}
	}

	eng := espalier.New(espalier.WithRegistry(s.registry))
	root, err := eng.MountNamed(component, ports.MountConfig{AppState: appState})
	if err != nil {
		return MountResponse{}, fmt.Errorf("mount failed: %w", err)
	}
	if err := s.sessions.Create(ctx, sessionID, eng); err != nil {
		return MountResponse{}, fmt.Errorf("create session failed: %w", err)
	}

	return MountResponse{SessionID: sessionID, Root: root}, nil
}

func (s *Server) handleGetTree(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.TreeSnapshot, error) {
	sessionID, _ := args["session_id"].(string)

	snap, err := s.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return domain.TreeSnapshot{}, fmt.Errorf("snapshot failed: %w", err)
	}
	return *snap, nil
}

func (s *Server) handleSend(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SendResponse, error) {
	sessionID, _ := args["session_id"].(string)
	nodeStr, _ := args["node_id"].(string)
	nodeID := domain.NodeID(nodeStr)
	msgType, _ := args["type"].(string)

	var payload map[string]any
	if payloadStr, ok := args["payload"].(string); ok && payloadStr != "" {
		if err := json.Unmarshal([]byte(payloadStr), &payload); err != nil {
			return SendResponse{}, fmt.Errorf("invalid payload: %w", err)
		}
	}

	var resp SendResponse
	err := s.sessions.With(ctx, sessionID, func(eng *espalier.Engine) error {
		component, err := eng.ComponentOf(nodeID)
		if err != nil {
			return err
		}
		msg, err := s.registry.DecodeMessage(component, msgType, payload)
		if err != nil {
			return err
		}

		effect, err := eng.Send(nodeID, msg)
		if err != nil {
			return err
		}

		resp = SendResponse{
			AppStateChanged:   !effect.KeepsAppState(),
			LocalStateChanged: !effect.KeepsLocalState(),
			Actions:           len(effect.Actions),
			Tree:              eng.Snapshot(sessionID),
		}
		return nil
	})
	if err != nil {
		return SendResponse{}, fmt.Errorf("send failed: %w", err)
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: espalier://components
	s.mcpServer.AddResource(mcp.NewResource("espalier://components", "Registered Components",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.registry.Components())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal components: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://components",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
