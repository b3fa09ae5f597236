package oas

// Parameter locations.
//
// See: https://spec.openapis.org/oas/v3.0.3#parameter-locations
const (
	InPath   = "path"
	InQuery  = "query"
	InHeader = "header"
)

// Parameters is the indexed parameter sequence of an operation. Parameters
// are addressed by their append order.
type Parameters struct {
	owner Node
}

// Len returns the number of parameters.
func (p *Parameters) Len() int {
	return len(ChildList(p.owner, "parameters"))
}

// At returns the i-th parameter. Indexing with Len appends a blank
// parameter; indexing past Len fails with ErrIndexOutOfRange.
func (p *Parameters) At(i int) (*Parameter, error) {
	n, err := ItemAt(p.owner, "parameters", i)
	if err != nil {
		return nil, err
	}
	return &Parameter{node: n}, nil
}

// Parameter describes a single operation parameter.
//
// See: https://spec.openapis.org/oas/v3.0.3#parameter-object
type Parameter struct {
	node Node
}

func (p *Parameter) Name() string            { return stringAt(p.node, "name") }
func (p *Parameter) SetName(name string)     { p.node["name"] = name }
func (p *Parameter) In() string              { return stringAt(p.node, "in") }
func (p *Parameter) SetIn(in string)         { p.node["in"] = in }
func (p *Parameter) Description() string     { return stringAt(p.node, "description") }
func (p *Parameter) SetDescription(s string) { p.node["description"] = s }
func (p *Parameter) Required() bool          { return boolAt(p.node, "required") }
func (p *Parameter) SetRequired(b bool)      { p.node["required"] = b }

// Schema returns the parameter schema, creating it if needed.
func (p *Parameter) Schema() Node {
	return Child(p.node, "schema")
}

// SetSchema replaces the parameter schema.
func (p *Parameter) SetSchema(schema Node) {
	p.node["schema"] = schema
}
