package keyring

import (
	"fmt"
	"sort"

	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
	"github.com/PolarWolf314/keymaker/internal/secrets"
)

// Properties is a set of property nodes keyed by name. The zero value is
// ready to use.
type Properties struct {
	props map[string]secrets.PropertyNode
}

// SetProperty stores property under name, replacing any existing one.
func (p *Properties) SetProperty(name string, property secrets.PropertyNode) {
	if p.props == nil {
		p.props = make(map[string]secrets.PropertyNode)
	}
	p.props[name] = property
}

// SetValue stores a plaintext property.
func (p *Properties) SetValue(name, value string) {
	p.SetProperty(name, secrets.NewProperty([]byte(name), []byte(value)))
}

// Property returns the property stored under name.
func (p *Properties) Property(name string) (secrets.PropertyNode, error) {
	property, ok := p.props[name]
	if !ok {
		return secrets.PropertyNode{}, fmt.Errorf("%w: %q", kerrors.ErrPropertyNotFound, name)
	}
	return property, nil
}

// Value returns the content of the named property as a string.
func (p *Properties) Value(name string) (string, error) {
	property, err := p.Property(name)
	if err != nil {
		return "", err
	}
	return string(property.Content()), nil
}

// RemoveProperty deletes the named property. Removing a missing property is a no-op.
func (p *Properties) RemoveProperty(name string) {
	delete(p.props, name)
}

// PropertyCount returns the number of properties.
func (p *Properties) PropertyCount() int {
	return len(p.props)
}

// PropertyNames returns the property names in byte order.
func (p *Properties) PropertyNames() []string {
	names := make([]string, 0, len(p.props))
	for name := range p.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EachProperty calls fn for every property in name order.
func (p *Properties) EachProperty(fn func(name string, property secrets.PropertyNode)) {
	for _, name := range p.PropertyNames() {
		fn(name, p.props[name])
	}
}

// Map builds a new bag from fn's output, leaving p unchanged. Each result
// is keyed by its own name, so decrypting a bag re-keys it by plaintext name.
func (p *Properties) Map(fn func(name string, property secrets.PropertyNode) (secrets.PropertyNode, error)) (Properties, error) {
	var out Properties
	for _, name := range p.PropertyNames() {
		mapped, err := fn(name, p.props[name])
		if err != nil {
			return Properties{}, err
		}
		out.SetProperty(string(mapped.Name()), mapped)
	}
	return out, nil
}

func (p *Properties) cloneProperties() Properties {
	var out Properties
	for name, property := range p.props {
		out.SetProperty(name, property.Clone())
	}
	return out
}

func (p *Properties) equalProperties(other *Properties) bool {
	if len(p.props) != len(other.props) {
		return false
	}
	for name, property := range p.props {
		theirs, ok := other.props[name]
		if !ok || !property.Equal(theirs) {
			return false
		}
	}
	return true
}

// WipeProperties zeroes every property's name and content.
func (p *Properties) WipeProperties() {
	for name, property := range p.props {
		property.Wipe()
		delete(p.props, name)
	}
}
