package main

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
)

// dashboardState is the demo root's application state.
type dashboardState struct {
	Count   int  `json:"count"`
	Enabled bool `json:"enabled"`
}

type increment struct {
	By int `json:"by"`
}

type reset struct{}

type flip struct{}

// dashboardDef is the component behind the demo and the serve/mcp fixtures.
func dashboardDef() ports.Definition {
	return ports.Definition{
		Name: "dashboard",
		Handler: func(msg domain.Message, appState, localState any, locals, args []any) (domain.HandlerResult, error) {
			state, _ := appState.(dashboardState)
			switch m := msg.(type) {
			case increment:
				state.Count += m.By
				return domain.HandlerResult{domain.AppState(state)}, nil
			case reset:
				state.Count = 0
				return domain.HandlerResult{domain.AppState(state)}, nil
			case flip:
				state.Enabled = !state.Enabled
				return domain.HandlerResult{domain.AppState(state)}, nil
			}
			return nil, nil
		},
		Render: func(appState, localState any, locals, args []any) (string, error) {
			state, _ := appState.(dashboardState)
			status := "off"
			if state.Enabled {
				status = "on"
			}
			return fmt.Sprintf("# Dashboard\n\nCount: **%d**\n\nSwitch: **%s**\n", state.Count, status), nil
		},
	}
}

// newDemoRegistry registers the demo components and their wire messages.
func newDemoRegistry() (*registry.Registry, error) {
	reg := registry.New()
	if err := reg.Register(dashboardDef()); err != nil {
		return nil, err
	}
	reg.RegisterMessage("dashboard", "increment", increment{})
	reg.RegisterMessage("dashboard", "reset", reset{})
	reg.RegisterMessage("dashboard", "flip", flip{})
	return reg, nil
}

// parseDemoInput maps user input lines to dashboard messages.
func parseDemoInput(line string) (domain.Message, bool) {
	switch line {
	case "+", "inc":
		return increment{By: 1}, true
	case "reset":
		return reset{}, true
	case "flip":
		return flip{}, true
	}
	return nil, false
}
