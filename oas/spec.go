package oas

// Version is the OpenAPI version written at the root of every document.
const Version = "3.0.0"

// Spec is the root of an OpenAPI document and owns the whole tree.
//
// See: https://spec.openapis.org/oas/v3.0.3#openapi-object
type Spec struct {
	root Node
}

// New returns an empty document carrying only the openapi version.
func New() *Spec {
	return &Spec{root: Node{"openapi": Version}}
}

// Node returns the root of the document tree.
func (s *Spec) Node() Node {
	return s.root
}

// Info returns the info object, creating it if needed.
func (s *Spec) Info() *Info {
	return &Info{node: Child(s.root, "info")}
}

// Servers returns the servers sequence, creating it if needed.
func (s *Spec) Servers() *Servers {
	ChildList(s.root, "servers")
	return &Servers{owner: s.root}
}

// Paths returns the paths object, creating it if needed.
func (s *Spec) Paths() *Paths {
	return &Paths{node: Child(s.root, "paths")}
}

// Components returns the components object, creating it if needed.
func (s *Spec) Components() *Components {
	return &Components{node: Child(s.root, "components")}
}

// Info provides metadata about the API.
//
// See: https://spec.openapis.org/oas/v3.0.3#info-object
type Info struct {
	node Node
}

func (i *Info) Title() string          { return stringAt(i.node, "title") }
func (i *Info) SetTitle(title string)  { i.node["title"] = title }
func (i *Info) Description() string    { return stringAt(i.node, "description") }
func (i *Info) Version() string        { return stringAt(i.node, "version") }
func (i *Info) SetVersion(v string)    { i.node["version"] = v }
func (i *Info) TermsOfService() string { return stringAt(i.node, "termsOfService") }

func (i *Info) SetDescription(description string) {
	i.node["description"] = description
}

func (i *Info) SetTermsOfService(url string) {
	i.node["termsOfService"] = url
}

// Servers is the ordered servers sequence of the document.
//
// See: https://spec.openapis.org/oas/v3.0.3#server-object
type Servers struct {
	owner Node
}

// Len returns the number of servers.
func (s *Servers) Len() int {
	return len(ChildList(s.owner, "servers"))
}

// At returns the i-th server. Indexing with Len appends a blank server.
func (s *Servers) At(i int) (*Server, error) {
	n, err := ItemAt(s.owner, "servers", i)
	if err != nil {
		return nil, err
	}
	return &Server{node: n}, nil
}

// Server is one entry of the servers sequence.
type Server struct {
	node Node
}

func (s *Server) URL() string         { return stringAt(s.node, "url") }
func (s *Server) SetURL(url string)   { s.node["url"] = url }
func (s *Server) Description() string { return stringAt(s.node, "description") }

func (s *Server) SetDescription(description string) {
	s.node["description"] = description
}

// Paths maps URL templates to path items.
//
// See: https://spec.openapis.org/oas/v3.0.3#paths-object
type Paths struct {
	node Node
}

// Get returns the path item for the template, creating it if needed.
func (p *Paths) Get(template string) *PathItem {
	return &PathItem{node: Child(p.node, template)}
}

// Node returns the underlying mapping.
func (p *Paths) Node() Node {
	return p.node
}

// Components holds the shared schemas and security schemes.
//
// See: https://spec.openapis.org/oas/v3.0.3#components-object
type Components struct {
	node Node
}

// Schemas returns the shared schemas mapping, creating it if needed.
func (c *Components) Schemas() Node {
	return Child(c.node, "schemas")
}

// SecuritySchemes returns the security schemes mapping, creating it if needed.
func (c *Components) SecuritySchemes() Node {
	return Child(c.node, "securitySchemes")
}

// MergeSchemas copies definitions into the shared schemas mapping. A name
// that is already present keeps its first value; the skipped names are
// returned in the order they were seen.
func (c *Components) MergeSchemas(defs map[string]Node) []string {
	schemas := c.Schemas()

	var skipped []string
	for _, name := range sortedKeys(defs) {
		if _, ok := schemas[name]; ok {
			skipped = append(skipped, name)
			continue
		}
		schemas[name] = defs[name]
	}

	return skipped
}

// AddSecurityScheme registers a security scheme unless one with the same
// name exists. It reports whether the scheme was added.
//
// See: https://spec.openapis.org/oas/v3.0.3#security-scheme-object
func (c *Components) AddSecurityScheme(name string, scheme Node) bool {
	schemes := c.SecuritySchemes()
	if _, ok := schemes[name]; ok {
		return false
	}
	schemes[name] = scheme
	return true
}
