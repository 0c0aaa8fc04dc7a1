package main

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/oxy-cubes/config"
	"github.com/Carmen-Shannon/oxy-cubes/engine/input"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnapshot(t *testing.T) {
	s, err := parseSnapshot("forward, left")
	require.NoError(t, err)
	assert.Equal(t, input.NewSnapshot(input.MoveForward, input.TurnLeft), s)

	s, err = parseSnapshot("")
	require.NoError(t, err)
	assert.True(t, s.Empty())

	_, err = parseSnapshot("forward,up")
	assert.Error(t, err)
}

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.Size = 4
	cfg.Grid.Seed = 1
	cfg.Engine.Workers = 1
	return cfg
}

func TestSimulateMovesCamera(t *testing.T) {
	var out bytes.Buffer
	err := simulate(smallConfig(), simulateOptions{frames: 60, dt: 1.0 / 60.0, input: "forward"}, &out, zerolog.Nop())
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "frames:   60 (0 skipped)")
	assert.Contains(t, text, "input:    {forward}")
	// one second at 50 units per second from 141.4214
	assert.Contains(t, text, "radius:   91.42")
	assert.Contains(t, text, "visible:  64 / 64")
	assert.Contains(t, text, "origin:   ndc (")
}

func TestSimulateNoFrames(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, simulate(smallConfig(), simulateOptions{}, &out, zerolog.Nop()))
	assert.Contains(t, out.String(), "frames:   0 (0 skipped)")
	assert.Contains(t, out.String(), "radius:   141.4214")
}

func TestSimulateRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, simulate(smallConfig(), simulateOptions{frames: 1, input: "jump"}, &out, zerolog.Nop()))
	assert.Error(t, simulate(smallConfig(), simulateOptions{frames: -1}, &out, zerolog.Nop()))
	assert.Error(t, simulate(smallConfig(), simulateOptions{frames: 1, width: -5}, &out, zerolog.Nop()))
}

func TestConfigCommandPrintsYAML(t *testing.T) {
	t.Setenv("CUBES_GRID_SIZE", "7")
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "size: 7")
}
