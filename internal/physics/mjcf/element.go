package mjcf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// element is one XML element with its attributes and child elements.
// Character data is not kept.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
	file     string
	line     int
}

func (e *element) attr(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

func (e *element) String() string {
	return fmt.Sprintf("<%s> at %s:%d", e.name, e.file, e.line)
}

// parseXML decodes data into an element tree and returns the root.
func parseXML(data []byte, file string) (*element, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var (
		root  *element
		stack []*element
	)
	for {
		t, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		switch se := t.(type) {
		case xml.StartElement:
			line, _ := decoder.InputPos()
			e := &element{
				name:  se.Name.Local,
				attrs: make(map[string]string, len(se.Attr)),
				file:  file,
				line:  line,
			}
			for _, a := range se.Attr {
				e.attrs[a.Name.Local] = strings.TrimSpace(a.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parsing %s: multiple root elements", file)
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parsing %s: no root element", file)
	}
	return root, nil
}

// maxIncludeDepth bounds nested <include> resolution.
const maxIncludeDepth = 16

// expandIncludes replaces every <include file="..."/> below e with the
// children of the included file's root element. Paths resolve against dir.
func expandIncludes(fsys fs.FS, e *element, dir string, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("%s: includes nested deeper than %d", e, maxIncludeDepth)
	}
	var out []*element
	for _, c := range e.children {
		if c.name != "include" {
			if err := expandIncludes(fsys, c, dir, depth); err != nil {
				return err
			}
			out = append(out, c)
			continue
		}
		file, ok := c.attr("file")
		if !ok {
			return fmt.Errorf("%s: include without file", c)
		}
		p := path.Join(dir, file)
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
		inc, err := parseXML(data, p)
		if err != nil {
			return err
		}
		if err := expandIncludes(fsys, inc, dir, depth+1); err != nil {
			return err
		}
		out = append(out, inc.children...)
	}
	e.children = out
	return nil
}
