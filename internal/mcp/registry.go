package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Tool is the interface every registered MCP tool must implement.
type Tool interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error)
}

// Prompt is the interface for MCP prompts.
type Prompt interface {
	// Definition returns the prompt metadata (name, description, arguments).
	Definition() PromptDefinition
	// Get returns the prompt messages, optionally customized by arguments.
	Get(arguments map[string]string) (*PromptsGetResult, error)
}

// Resource is the interface for MCP resources. URI may contain
// single-segment {placeholder} captures; see parseURITemplate.
type Resource interface {
	Definition() ResourceDefinition
	// Read returns the resource content. params carries values captured
	// from a template match (empty for an exact-match resource).
	Read(params map[string]string) (*ResourcesReadResult, error)
}

// resourceEntry pairs a registered Resource with its compiled template, if
// the URI contains any {placeholder} segments.
type resourceEntry struct {
	resource Resource
	template *uriTemplate
}

// Registry holds all registered tools, prompts, and resources for the
// lifetime of one MCP server process.
type Registry struct {
	mu            sync.RWMutex
	tools         map[string]Tool
	toolOrder     []string
	prompts       map[string]Prompt
	promptOrder   []string
	resources     map[string]*resourceEntry // keyed by URI as registered
	resourceOrder []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]Tool),
		prompts:   make(map[string]Prompt),
		resources: make(map[string]*resourceEntry),
	}
}

// --- Tools ---

// Register adds a tool to the registry. Panics if a tool with the same
// name is already registered — double registration is a programmer error
// that must fail fast at server construction.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool %q already registered", name))
	}
	r.tools[name] = t
	r.toolOrder = append(r.toolOrder, name)
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns all registered tool definitions in registration order.
func (r *Registry) List() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.toolOrder))
	for _, name := range r.toolOrder {
		t := r.tools[name]
		defs = append(defs, ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// HasTools returns true if any tools are registered.
func (r *Registry) HasTools() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools) > 0
}

// --- Prompts ---

// RegisterPrompt adds a prompt to the registry. Panics on duplicate name.
func (r *Registry) RegisterPrompt(p Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Definition().Name
	if _, exists := r.prompts[name]; exists {
		panic(fmt.Sprintf("prompt %q already registered", name))
	}
	r.prompts[name] = p
	r.promptOrder = append(r.promptOrder, name)
}

// GetPrompt returns a prompt by name, or nil if not found.
func (r *Registry) GetPrompt(name string) Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prompts[name]
}

// ListPrompts returns all registered prompt definitions in registration order.
func (r *Registry) ListPrompts() []PromptDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]PromptDefinition, 0, len(r.promptOrder))
	for _, name := range r.promptOrder {
		defs = append(defs, r.prompts[name].Definition())
	}
	return defs
}

// HasPrompts returns true if any prompts are registered.
func (r *Registry) HasPrompts() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts) > 0
}

// --- Resources ---

// placeholderRe matches a single {name} capture segment.
var placeholderRe = regexp.MustCompile(`\{[^{}/]+\}`)

// uriTemplate is a compiled single-segment URI template.
type uriTemplate struct {
	pattern *regexp.Regexp
	names   []string
}

// parseURITemplate compiles uri into a uriTemplate if it contains any
// {name} placeholders. Multi-segment captures (a placeholder containing a
// literal '/', or two placeholder groups with no literal separator between
// them) are rejected — the core only supports single-segment captures,
// each of which matches exactly one path segment (no '/').
func parseURITemplate(uri string) (*uriTemplate, error) {
	if !strings.Contains(uri, "{") {
		return nil, nil
	}

	var names []string
	var pat strings.Builder
	pat.WriteString("^")

	last := 0
	matches := placeholderRe.FindAllStringIndex(uri, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("malformed URI template %q: unbalanced braces", uri)
	}
	for i, m := range matches {
		start, end := m[0], m[1]
		literal := uri[last:start]
		pat.WriteString(regexp.QuoteMeta(literal))
		name := uri[start+1 : end-1]
		if name == "" {
			return nil, fmt.Errorf("malformed URI template %q: empty placeholder", uri)
		}
		// Reject two adjacent placeholders with no literal separator —
		// the capture boundary would be ambiguous (effectively a
		// multi-segment capture).
		if i > 0 && literal == "" {
			return nil, fmt.Errorf("rejecting multi-segment template %q: adjacent placeholders with no separator", uri)
		}
		names = append(names, name)
		pat.WriteString(`([^/]+)`)
		last = end
	}
	pat.WriteString(regexp.QuoteMeta(uri[last:]))
	pat.WriteString("$")

	return &uriTemplate{
		pattern: regexp.MustCompile(pat.String()),
		names:   names,
	}, nil
}

// match attempts to match uri against the template, returning captured
// named values and whether it matched.
func (t *uriTemplate) match(uri string) (map[string]string, bool) {
	m := t.pattern.FindStringSubmatch(uri)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(t.names))
	for i, name := range t.names {
		params[name] = m[i+1]
	}
	return params, true
}

// RegisterResource adds a resource to the registry. Panics on duplicate
// URI, or if the URI contains a multi-segment template (rejected at
// registration time).
func (r *Registry) RegisterResource(res Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uri := res.Definition().URI
	if _, exists := r.resources[uri]; exists {
		panic(fmt.Sprintf("resource %q already registered", uri))
	}

	tmpl, err := parseURITemplate(uri)
	if err != nil {
		panic(err.Error())
	}

	r.resources[uri] = &resourceEntry{resource: res, template: tmpl}
	r.resourceOrder = append(r.resourceOrder, uri)
}

// GetResource resolves uri to a registered resource and any captured
// template parameters. Exact matches are tried first, then each
// registered template in registration order.
func (r *Registry) GetResource(uri string) (Resource, map[string]string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.resources[uri]; ok && entry.template == nil {
		return entry.resource, nil
	}

	for _, registeredURI := range r.resourceOrder {
		entry := r.resources[registeredURI]
		if entry.template == nil {
			continue
		}
		if params, ok := entry.template.match(uri); ok {
			return entry.resource, params
		}
	}
	return nil, nil
}

// ListResources returns all registered resource definitions in registration order.
func (r *Registry) ListResources() []ResourceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ResourceDefinition, 0, len(r.resourceOrder))
	for _, uri := range r.resourceOrder {
		defs = append(defs, r.resources[uri].resource.Definition())
	}
	return defs
}

// HasResources returns true if any resources are registered.
func (r *Registry) HasResources() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources) > 0
}
