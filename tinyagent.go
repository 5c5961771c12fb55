// Package tinyagent provides a high-level façade over the agent runtime:
// the process-wide agent registry, the shared workspace and the delegation
// protocol that lets agents hand tasks to subagents, one-to-one or as a
// bounded parallel fan-out. Most applications interact with this package by:
//  1. Creating a Runtime via New() (optionally overriding the in-memory
//     workspace or the logger)
//  2. Building agents with NewAgent, wiring subagents into parents
//  3. Invoking the root agent with a task
//
// All defaults are safe for local development and testing; production
// deployments typically supply a directory-backed workspace and a structured
// logger.
package tinyagent

import (
	"github.com/XinyueZ/tinyagent/agent"
	"github.com/XinyueZ/tinyagent/core"
	"github.com/XinyueZ/tinyagent/delegation"
	"github.com/XinyueZ/tinyagent/logging"
	"github.com/XinyueZ/tinyagent/registry"
	"github.com/XinyueZ/tinyagent/workspace"
)

// Options configures the Runtime.
type Options struct {
	// Registry holding every live agent. Defaults to a fresh registry.
	Registry *registry.Registry

	// Workspace backing agent storage. Defaults to an in-memory store;
	// supply workspace.NewDirStore to persist to disk.
	Workspace core.Workspace

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Runtime aggregates the registry, the workspace and the delegator every
// agent built through it shares.
type Runtime struct {
	registry  *registry.Registry
	ws        core.Workspace
	logger    logging.Logger
	delegator *delegation.Delegator
}

// New creates a Runtime with optional overrides.
func New(optFns ...func(o *Options)) *Runtime {
	opts := Options{
		Workspace: workspace.NewInMemoryStore(),
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Registry == nil {
		opts.Registry = registry.New(opts.Logger)
	}

	return &Runtime{
		registry:  opts.Registry,
		ws:        opts.Workspace,
		logger:    opts.Logger,
		delegator: delegation.New(opts.Registry, opts.Workspace, opts.Logger),
	}
}

// Registry returns the runtime's agent registry.
func (r *Runtime) Registry() *registry.Registry { return r.registry }

// Workspace returns the runtime's storage backend.
func (r *Runtime) Workspace() core.Workspace { return r.ws }

// Delegator returns the runtime's delegation protocol implementation.
func (r *Runtime) Delegator() *delegation.Delegator { return r.delegator }

// Logger returns the runtime's logger.
func (r *Runtime) Logger() logging.Logger { return r.logger }

// NewAgent builds an agent wired into this runtime. Zero-valued Registry,
// Delegator, Workspace and Logger fields on cfg are filled from the runtime;
// everything else passes through to agent.New.
func (r *Runtime) NewAgent(cfg agent.Config) (*agent.Agent, error) {
	if cfg.Registry == nil {
		cfg.Registry = r.registry
	}
	if cfg.Delegator == nil {
		cfg.Delegator = r.delegator
	}
	if cfg.Workspace == nil {
		cfg.Workspace = r.ws
	}
	if cfg.Logger == nil {
		cfg.Logger = r.logger
	}
	return agent.New(cfg)
}
