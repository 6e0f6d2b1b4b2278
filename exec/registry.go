package exec

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// RunOptions carries the per-call arguments of Invoke through a registry
type RunOptions struct {
	Pattern LoadingPattern
	Writer  StreamWriter
	Debug   bool
}

// CommandWrapper is the interface named commands implement to be
// registered in a CommandRegistry
type CommandWrapper interface {
	// Name returns the command name for registry lookup
	Name() string
	// Description returns a brief description of what the command does
	Description() string
	// Execute runs the command through inv and returns its captured output
	Execute(ctx context.Context, inv *Invoker, opts RunOptions) (string, error)
}

// SpecCommand is a CommandWrapper backed by a fixed ProcessSpec,
// typically one declared under "commands:" in wren.yml
type SpecCommand struct {
	CommandName string
	Summary     string
	Spec        ProcessSpec
}

func (c SpecCommand) Name() string { return c.CommandName }

func (c SpecCommand) Description() string {
	if c.Summary != "" {
		return c.Summary
	}
	return c.Spec.String()
}

func (c SpecCommand) Execute(ctx context.Context, inv *Invoker, opts RunOptions) (string, error) {
	return inv.Invoke(ctx, c.Spec, opts.Pattern, opts.Writer, opts.Debug)
}

// CommandRegistry manages registered command wrappers
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]CommandWrapper
}

// NewCommandRegistry creates a new command registry instance
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]CommandWrapper),
	}
}

// Register adds a command wrapper to the registry
func (r *CommandRegistry) Register(cmd CommandWrapper) error {
	if cmd == nil {
		return fmt.Errorf("cannot register nil command")
	}

	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("cannot register command with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command '%s' is already registered", name)
	}

	r.commands[name] = cmd
	return nil
}

// Get retrieves a command wrapper by name
func (r *CommandRegistry) Get(name string) (CommandWrapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns all registered command names in sorted order
func (r *CommandRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Size returns the number of registered commands
func (r *CommandRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.commands)
}

// Execute runs a command by name if it exists
func (r *CommandRegistry) Execute(ctx context.Context, name string, inv *Invoker, opts RunOptions) (string, error) {
	cmd, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("command '%s' not found in registry", name)
	}
	return cmd.Execute(ctx, inv, opts)
}
