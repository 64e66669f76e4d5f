package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/buildkite/shellwords"
)

// ErrUnknownCommand is returned by Dispatch when no command matches the name.
var ErrUnknownCommand = errors.New("unknown command")

// ErrEmptyCommand is returned by Parse for a line without a command name.
var ErrEmptyCommand = errors.New("empty command")

// ErrSyntax wraps shell-word splitting failures such as an unclosed quote.
var ErrSyntax = errors.New("invalid command syntax")

// Invocation is a parsed command line issued by a user.
type Invocation struct {
	UserID string
	Name   string
	Args   []string
}

type Handler func(ctx context.Context, inv Invocation) error

// Command is a chat command and the names it answers to.
type Command struct {
	Name    string
	Aliases []string
	// Usage is the argument synopsis shown by /help.
	Usage   string
	Handler Handler
}

// Parse splits a chat line such as `/ld add "my base"` into a command name and arguments.
// Arguments follow POSIX shell quoting so names may contain spaces.
func Parse(line string) (Invocation, error) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "/")

	parts, err := shellwords.SplitPosix(line)
	if err != nil {
		return Invocation{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if len(parts) == 0 || parts[0] == "" {
		return Invocation{}, ErrEmptyCommand
	}

	return Invocation{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}, nil
}

// Router maps command names and aliases to handlers.
type Router struct {
	lock     sync.RWMutex
	commands map[string]*Command
}

func NewRouter() *Router {
	return &Router{
		commands: make(map[string]*Command),
	}
}

// Register adds a command under its name and aliases.
// Registering a name twice is an error.
func (r *Router) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name is required")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %s has no handler", cmd.Name)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	names := append([]string{cmd.Name}, cmd.Aliases...)
	for _, name := range names {
		if _, exists := r.commands[strings.ToLower(name)]; exists {
			return fmt.Errorf("command %s is already registered", name)
		}
	}
	c := cmd
	for _, name := range names {
		r.commands[strings.ToLower(name)] = &c
	}
	return nil
}

// Lookup returns the command registered under name or alias.
func (r *Router) Lookup(name string) (*Command, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// Names returns the primary names of all registered commands.
func (r *Router) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, cmd := range r.commands {
		if seen[cmd.Name] {
			continue
		}
		seen[cmd.Name] = true
		names = append(names, cmd.Name)
	}
	sort.Strings(names)
	return names
}

// Dispatch parses line and runs the matching command for userID.
func (r *Router) Dispatch(ctx context.Context, userID string, line string) error {
	inv, err := Parse(line)
	if err != nil {
		return err
	}
	inv.UserID = userID
	return r.Invoke(ctx, inv)
}

// Invoke runs an already parsed invocation.
func (r *Router) Invoke(ctx context.Context, inv Invocation) error {
	cmd, ok := r.Lookup(inv.Name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, inv.Name)
	}
	return cmd.Handler(ctx, inv)
}
