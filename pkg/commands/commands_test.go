package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantName string
		wantArgs []string
		wantErr  error
	}{
		{name: "slash and args", line: "/ld add home", wantName: "ld", wantArgs: []string{"add", "home"}},
		{name: "no slash", line: "bk", wantName: "bk", wantArgs: []string{}},
		{name: "command name is lowered", line: "/LD Home", wantName: "ld", wantArgs: []string{"Home"}},
		{name: "quoted name", line: `/ld add "my base"`, wantName: "ld", wantArgs: []string{"add", "my base"}},
		{name: "extra whitespace", line: "  /ld   list  ", wantName: "ld", wantArgs: []string{"list"}},
		{name: "empty", line: "/", wantErr: ErrEmptyCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.ElementsMatch(t, tt.wantArgs, got.Args)
		})
	}
}

func TestRouterDispatchesByNameAndAlias(t *testing.T) {
	router := NewRouter()
	var got []Invocation
	err := router.Register(Command{
		Name:    "landmark",
		Aliases: []string{"ld"},
		Handler: func(ctx context.Context, inv Invocation) error {
			got = append(got, inv)
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, router.Dispatch(context.Background(), "u1", "/landmark list"))
	require.NoError(t, router.Dispatch(context.Background(), "u2", "/LD to home"))

	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, []string{"list"}, got[0].Args)
	assert.Equal(t, "u2", got[1].UserID)
	assert.Equal(t, []string{"to", "home"}, got[1].Args)
	assert.Equal(t, []string{"landmark"}, router.Names())
}

func TestRouterUnknownCommand(t *testing.T) {
	router := NewRouter()
	err := router.Dispatch(context.Background(), "u1", "/warp home")
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestRouterRejectsDuplicates(t *testing.T) {
	router := NewRouter()
	noop := func(ctx context.Context, inv Invocation) error { return nil }
	require.NoError(t, router.Register(Command{Name: "back", Aliases: []string{"bk"}, Handler: noop}))

	assert.Error(t, router.Register(Command{Name: "bk", Handler: noop}))
	assert.Error(t, router.Register(Command{Name: "other", Handler: nil}))
	assert.Error(t, router.Register(Command{Handler: noop}))
}

func TestHelpCommandListsUsage(t *testing.T) {
	router := NewRouter()
	noop := func(ctx context.Context, inv Invocation) error { return nil }
	require.NoError(t, router.Register(Command{Name: "landmark", Aliases: []string{"ld"}, Usage: "[to|add|del] <name>", Handler: noop}))
	require.NoError(t, router.Register(Command{Name: "back", Aliases: []string{"bk"}, Handler: noop}))

	var got []string
	reply := func(ctx context.Context, userID string, text string) error {
		assert.Equal(t, "alice", userID)
		got = append(got, text)
		return nil
	}
	require.NoError(t, router.Register(HelpCommand(router, reply)))

	require.NoError(t, router.Dispatch(context.Background(), "alice", "/help"))
	assert.Equal(t, []string{
		"Commands:",
		"/back (/bk)",
		"/help",
		"/landmark (/ld) [to|add|del] <name>",
	}, got)
}
