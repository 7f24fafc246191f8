package espalier_test

import (
	"strings"
	"testing"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runnerEngine(t *testing.T) *espalier.Engine {
	t.Helper()
	eng := espalier.New()
	_, err := eng.Mount(counterDef(), ports.MountConfig{AppState: 0})
	require.NoError(t, err)
	return eng
}

func TestRunner_DispatchLoop(t *testing.T) {
	eng := runnerEngine(t)

	var out strings.Builder
	r := &espalier.Runner{
		Input:    strings.NewReader("inc\ninc\nquit\n"),
		Output:   &out,
		Headless: true,
		Parse: func(line string) (domain.Message, bool) {
			if line == "inc" {
				return increment{}, true
			}
			return nil, false
		},
	}

	require.NoError(t, r.Run(eng))
	assert.Equal(t, 2, eng.Snapshot("s").Node(eng.Root()).AppState)
	assert.Contains(t, out.String(), "count: 0")
	assert.Contains(t, out.String(), "count: 2")
}

func TestRunner_EOFExitsGracefully(t *testing.T) {
	eng := runnerEngine(t)

	var out strings.Builder
	r := &espalier.Runner{
		Input:    strings.NewReader("inc\n"),
		Output:   &out,
		Headless: true,
		Parse: func(line string) (domain.Message, bool) {
			return increment{}, true
		},
	}
	require.NoError(t, r.Run(eng))
}

func TestRunner_UnparsedLinesAreSkipped(t *testing.T) {
	eng := runnerEngine(t)

	var out strings.Builder
	r := &espalier.Runner{
		Input:    strings.NewReader("noise\nquit\n"),
		Output:   &out,
		Headless: true,
		Parse: func(line string) (domain.Message, bool) {
			return nil, false
		},
	}
	require.NoError(t, r.Run(eng))
	assert.Equal(t, 0, eng.Snapshot("s").Node(eng.Root()).AppState)
}

func TestRunner_RequiresWiring(t *testing.T) {
	eng := runnerEngine(t)

	assert.Error(t, (&espalier.Runner{}).Run(eng))
	assert.Error(t, (&espalier.Runner{Input: strings.NewReader(""), Output: &strings.Builder{}}).Run(eng))

	empty := espalier.New()
	r := &espalier.Runner{
		Input:  strings.NewReader(""),
		Output: &strings.Builder{},
		Parse:  func(string) (domain.Message, bool) { return nil, false },
	}
	assert.Error(t, r.Run(empty))
}
