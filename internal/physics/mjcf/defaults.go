package mjcf

import "fmt"

// mainClass is the implicit name of the top-level <default>.
const mainClass = "main"

// class is one <default> class: attribute defaults per element kind.
type class struct {
	name   string
	parent *class
	attrs  map[string]map[string]string
}

// lookup resolves an attribute default for an element kind, walking up
// the class chain.
func (c *class) lookup(kind, key string) (string, bool) {
	for ; c != nil; c = c.parent {
		if v, ok := c.attrs[kind][key]; ok {
			return v, true
		}
	}
	return "", false
}

// parseDefaults registers e and its nested classes.
func parseDefaults(classes map[string]*class, e *element, parent *class) error {
	name, ok := e.attr("class")
	if !ok {
		if parent != nil {
			return fmt.Errorf("%s: nested default without class", e)
		}
		name = mainClass
	}
	c := classes[name]
	if c == nil {
		c = &class{name: name, parent: parent, attrs: map[string]map[string]string{}}
		classes[name] = c
	}

	for _, child := range e.children {
		if child.name == "default" {
			if err := parseDefaults(classes, child, c); err != nil {
				return err
			}
			continue
		}
		kind := c.attrs[child.name]
		if kind == nil {
			kind = map[string]string{}
			c.attrs[child.name] = kind
		}
		for k, v := range child.attrs {
			kind[k] = v
		}
	}
	return nil
}
