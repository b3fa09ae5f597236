package oas

// Security is the ordered sequence of security requirements of an
// operation. Entries are single-key mappings from scheme name to scopes and
// are addressed by scheme name.
//
// See: https://spec.openapis.org/oas/v3.0.3#security-requirement-object
type Security struct {
	owner Node
}

// Len returns the number of requirements.
func (s *Security) Len() int {
	return len(ChildList(s.owner, "security"))
}

// Get returns the requirement for a scheme name, appending a fresh
// {name: []} entry when none exists.
func (s *Security) Get(name string) *SecurityItem {
	list := ChildList(s.owner, "security")

	for i, v := range list {
		entry, ok := AsNode(v)
		if !ok || len(entry) != 1 {
			continue
		}
		if _, ok := entry[name]; ok {
			list[i] = entry
			return &SecurityItem{entry: entry, name: name}
		}
	}

	entry := Node{name: []string{}}
	s.owner["security"] = append(list, entry)
	return &SecurityItem{entry: entry, name: name}
}

// Names returns the scheme names in requirement order.
func (s *Security) Names() []string {
	var names []string
	for _, v := range ChildList(s.owner, "security") {
		entry, ok := AsNode(v)
		if !ok {
			continue
		}
		for name := range entry {
			names = append(names, name)
		}
	}
	return names
}

// SecurityItem is the scope list of one requirement.
type SecurityItem struct {
	entry Node
	name  string
}

// Scopes returns the required scopes.
func (s *SecurityItem) Scopes() []string {
	return stringsAt(s.entry, s.name)
}

// AddScope appends a scope unless it is already listed.
func (s *SecurityItem) AddScope(scope string) {
	scopes := s.Scopes()
	for _, existing := range scopes {
		if existing == scope {
			return
		}
	}
	s.entry[s.name] = append(scopes, scope)
}
