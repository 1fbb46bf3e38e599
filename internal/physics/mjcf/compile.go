// Package mjcf compiles the subset of the MJCF scene format the viewer
// needs into a physics.Model: the kinematic tree, geoms, sites, lights,
// materials, textures, meshes, joint actuators, keyframes and spatial
// tendons. Contacts, equality constraints, sensors and composite objects
// are not compiled.
package mjcf

import (
	"errors"
	"fmt"
	"io/fs"
	gomath "math"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/physview/internal/logger"
	"github.com/Faultbox/physview/internal/physics"
)

// ErrUnsupported reports a scene element the compiler does not handle.
var ErrUnsupported = errors.New("unsupported mjcf feature")

// Sections that carry nothing the viewer draws or simulates.
var ignoredSections = map[string]bool{
	"visual":    true,
	"statistic": true,
	"size":      true,
	"contact":   true,
	"equality":  true,
	"sensor":    true,
	"custom":    true,
	"extension": true,
}

// Body children that are silently skipped.
var ignoredBodyChildren = map[string]bool{
	"inertial": true,
	"camera":   true,
	"plugin":   true,
}

// Load reads and compiles the scene file name from fsys.
func Load(fsys fs.FS, name string) (*physics.Model, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return Compile(fsys, name, data)
}

// Compile compiles scene data. Included files, meshes and textures are
// resolved against the directory of name in fsys.
func Compile(fsys fs.FS, name string, data []byte) (*physics.Model, error) {
	root, err := parseXML(data, name)
	if err != nil {
		return nil, err
	}
	if root.name != "mujoco" {
		return nil, fmt.Errorf("%s: root element is <%s>, want <mujoco>", name, root.name)
	}
	dir := path.Dir(name)
	if err := expandIncludes(fsys, root, dir, 0); err != nil {
		return nil, err
	}

	c := newCompiler(fsys, dir)
	m, err := c.compile(root)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	c.log.Debug("model compiled",
		zap.String("file", name),
		zap.Int("nbody", m.NBody),
		zap.Int("ngeom", m.NGeom),
		zap.Int("nq", m.NQ),
		zap.Int("nu", m.NU),
	)
	return m, nil
}

type compiler struct {
	fsys fs.FS
	dir  string
	b    *physics.Builder
	log  *zap.Logger

	degrees    bool
	eulerSeq   string
	meshDir    string
	textureDir string

	classes   map[string]*class
	parents   []int
	joints    map[string]int
	sites     map[string]int
	materials map[string]int
	textures  map[string]int
	meshes    map[string]int
	hfields   map[string][3]float64
}

func newCompiler(fsys fs.FS, dir string) *compiler {
	return &compiler{
		fsys:      fsys,
		dir:       dir,
		b:         physics.NewBuilder(),
		log:       logger.Named("mjcf"),
		degrees:   true,
		eulerSeq:  "xyz",
		classes:   map[string]*class{},
		parents:   []int{-1},
		joints:    map[string]int{},
		sites:     map[string]int{},
		materials: map[string]int{},
		textures:  map[string]int{},
		meshes:    map[string]int{},
		hfields:   map[string][3]float64{},
	}
}

// sections returns the root children named name, in document order.
func sections(root *element, name string) []*element {
	var out []*element
	for _, e := range root.children {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func (c *compiler) compile(root *element) (*physics.Model, error) {
	for _, e := range sections(root, "compiler") {
		if err := c.compilerOptions(e); err != nil {
			return nil, err
		}
	}
	for _, e := range sections(root, "option") {
		if err := c.options(e); err != nil {
			return nil, err
		}
	}
	for _, e := range sections(root, "default") {
		if err := parseDefaults(c.classes, e, nil); err != nil {
			return nil, err
		}
	}
	if err := c.assets(sections(root, "asset")); err != nil {
		return nil, err
	}
	for _, e := range sections(root, "worldbody") {
		if err := c.bodyChildren(e, 0, nil); err != nil {
			return nil, err
		}
	}
	for _, e := range sections(root, "tendon") {
		if err := c.tendons(e); err != nil {
			return nil, err
		}
	}
	for _, e := range sections(root, "actuator") {
		if err := c.actuators(e); err != nil {
			return nil, err
		}
	}
	for _, e := range sections(root, "keyframe") {
		if err := c.keyframes(e); err != nil {
			return nil, err
		}
	}

	for _, e := range root.children {
		if ignoredSections[e.name] {
			c.log.Debug("section ignored", zap.String("section", e.name))
		}
	}
	return c.b.Build()
}

func (c *compiler) compilerOptions(e *element) error {
	s := scope{e: e}
	switch a := s.str("angle", "degree"); a {
	case "degree":
		c.degrees = true
	case "radian":
		c.degrees = false
	default:
		return s.errorf("angle", "want degree or radian, got %q", a)
	}
	seq := s.str("eulerseq", c.eulerSeq)
	if len(seq) != 3 || strings.Trim(seq, "xyzXYZ") != "" {
		return s.errorf("eulerseq", "want three of xyzXYZ, got %q", seq)
	}
	c.eulerSeq = seq
	asset := s.str("assetdir", "")
	c.meshDir = s.str("meshdir", asset)
	c.textureDir = s.str("texturedir", asset)
	return nil
}

func (c *compiler) options(e *element) error {
	s := scope{e: e}
	ts, err := s.float("timestep", 0.002)
	if err != nil {
		return err
	}
	if ts <= 0 {
		return s.errorf("timestep", "must be positive")
	}
	g, err := s.vec3("gravity", [3]float64{0, 0, -9.81})
	if err != nil {
		return err
	}
	c.b.Options(physics.Options{Timestep: ts, Gravity: g})
	return nil
}

// classFor picks the defaults class of e: its own class attribute, then
// the enclosing childclass, then the main class.
func (c *compiler) classFor(e *element, childclass *class) (*class, error) {
	if name, ok := e.attr("class"); ok {
		cls := c.classes[name]
		if cls == nil {
			return nil, fmt.Errorf("%s: unknown class %q", e, name)
		}
		return cls, nil
	}
	if childclass != nil {
		return childclass, nil
	}
	return c.classes[mainClass], nil
}

func (c *compiler) scopeFor(e *element, kind string, childclass *class) (scope, error) {
	cls, err := c.classFor(e, childclass)
	if err != nil {
		return scope{}, err
	}
	return scope{e: e, cls: cls, kind: kind}, nil
}

// bodyChildren compiles the contents of body (or the worldbody). Joints
// come first so each body's joints are contiguous, then geoms, sites and
// lights in document order, then child bodies depth first.
func (c *compiler) bodyChildren(e *element, body int, childclass *class) error {
	if name, ok := e.attr("childclass"); ok {
		cls := c.classes[name]
		if cls == nil {
			return fmt.Errorf("%s: unknown childclass %q", e, name)
		}
		childclass = cls
	}

	for _, child := range e.children {
		switch child.name {
		case "joint", "freejoint":
			if body == 0 {
				return fmt.Errorf("%s: joints are not allowed in the world body", child)
			}
			if err := c.joint(child, body, childclass); err != nil {
				return err
			}
		}
	}

	var bodies []*element
	for _, child := range e.children {
		var err error
		switch child.name {
		case "joint", "freejoint":
		case "geom":
			err = c.geom(child, body, childclass)
		case "site":
			err = c.site(child, body, childclass)
		case "light":
			err = c.light(child, body, childclass)
		case "body":
			bodies = append(bodies, child)
		default:
			if ignoredBodyChildren[child.name] {
				continue
			}
			err = fmt.Errorf("%w: %s", ErrUnsupported, child)
		}
		if err != nil {
			return err
		}
	}

	for _, child := range bodies {
		if err := c.body(child, body, childclass); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) body(e *element, parent int, childclass *class) error {
	s := scope{e: e}
	pos, err := s.vec3("pos", [3]float64{})
	if err != nil {
		return err
	}
	quat, err := c.orientation(s)
	if err != nil {
		return err
	}
	id := c.b.Body(s.str("name", ""), parent, pos, quat)
	c.parents = append(c.parents, parent)
	return c.bodyChildren(e, id, childclass)
}

func (c *compiler) joint(e *element, body int, childclass *class) error {
	s, err := c.scopeFor(e, "joint", childclass)
	if err != nil {
		return err
	}
	spec := physics.JointSpec{Name: s.str("name", ""), Body: body}

	typ := s.str("type", "hinge")
	if e.name == "freejoint" {
		typ = "free"
	}
	switch typ {
	case "free":
		spec.Type = physics.JointFree
		if c.parents[body] != 0 {
			return fmt.Errorf("%s: free joint must belong to a child of the world body", e)
		}
	case "ball":
		spec.Type = physics.JointBall
	case "slide":
		spec.Type = physics.JointSlide
	case "hinge":
		spec.Type = physics.JointHinge
	default:
		return s.errorf("type", "unknown joint type %q", typ)
	}

	if spec.Pos, err = s.vec3("pos", [3]float64{}); err != nil {
		return err
	}
	axis, err := s.vec3("axis", [3]float64{0, 0, 1})
	if err != nil {
		return err
	}
	l := gomath.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if l < 1e-12 {
		return s.errorf("axis", "zero axis")
	}
	spec.Axis = [3]float64{axis[0] / l, axis[1] / l, axis[2] / l}

	if spec.Damping, err = s.float("damping", 0); err != nil {
		return err
	}
	if spec.Stiffness, err = s.float("stiffness", 0); err != nil {
		return err
	}
	if spec.Ref, err = s.float("ref", 0); err != nil {
		return err
	}
	r, err := s.floats("range", []float64{0, 0}, 2, 2)
	if err != nil {
		return err
	}
	if spec.Limited, err = s.limited("limited", "range"); err != nil {
		return err
	}
	if spec.Type == physics.JointHinge {
		spec.Ref = c.angle(spec.Ref)
		r[0], r[1] = c.angle(r[0]), c.angle(r[1])
	}
	spec.Range = [2]float64{r[0], r[1]}

	id := c.b.Joint(spec)
	if spec.Name != "" {
		if _, dup := c.joints[spec.Name]; dup {
			return fmt.Errorf("%s: repeated joint name %q", e, spec.Name)
		}
		c.joints[spec.Name] = id
	}
	return nil
}

func (c *compiler) geom(e *element, body int, childclass *class) error {
	s, err := c.scopeFor(e, "geom", childclass)
	if err != nil {
		return err
	}
	typName := s.str("type", "sphere")
	if _, explicit := s.get("type"); !explicit && s.has("mesh") {
		typName = "mesh"
	}
	typ, ok := physics.ParseGeomType(typName)
	if !ok {
		return fmt.Errorf("%w: geom type %q at %s", ErrUnsupported, typName, e)
	}

	spec := physics.NewGeomSpec(typ, body)
	spec.Name = s.str("name", "")
	if spec.Group, err = s.int("group", 0); err != nil {
		return err
	}
	size, err := s.floats("size", []float64{0, 0, 0}, 1, 3)
	if err != nil {
		return err
	}
	spec.Size = [3]float64{size[0], size[1], size[2]}
	if spec.Pos, err = s.vec3("pos", [3]float64{}); err != nil {
		return err
	}
	if spec.Quat, err = c.orientation(s); err != nil {
		return err
	}
	if spec.RGBA, err = s.rgba("rgba", spec.RGBA); err != nil {
		return err
	}

	if s.has("fromto") {
		if err := c.fromTo(s, &spec); err != nil {
			return err
		}
	}

	if name, ok := s.get("material"); ok {
		id, found := c.materials[name]
		if !found {
			return s.errorf("material", "unknown material %q", name)
		}
		spec.Material = id
	}

	switch typ {
	case physics.GeomMesh:
		name, ok := s.get("mesh")
		if !ok {
			return fmt.Errorf("%s: mesh geom without mesh", e)
		}
		id, found := c.meshes[name]
		if !found {
			return s.errorf("mesh", "unknown mesh %q", name)
		}
		spec.Mesh = id
	case physics.GeomHField:
		if size, found := c.hfields[s.str("hfield", "")]; found {
			spec.Size = size
		}
	}

	c.b.Geom(spec)
	return nil
}

// fromTo places a capsule, cylinder, box or ellipsoid between two points.
func (c *compiler) fromTo(s scope, spec *physics.GeomSpec) error {
	v, err := s.floats("fromto", nil, 6, 6)
	if err != nil {
		return err
	}
	d := [3]float64{v[3] - v[0], v[4] - v[1], v[5] - v[2]}
	half := gomath.Sqrt(d[0]*d[0]+d[1]*d[1]+d[2]*d[2]) / 2
	if half < 1e-12 {
		return s.errorf("fromto", "zero length")
	}
	spec.Pos = [3]float64{(v[0] + v[3]) / 2, (v[1] + v[4]) / 2, (v[2] + v[5]) / 2}
	spec.Quat = zAxisQuat(d)

	switch spec.Type {
	case physics.GeomCapsule, physics.GeomCylinder:
		spec.Size[1] = half
	case physics.GeomBox, physics.GeomEllipsoid:
		spec.Size[2] = half
	default:
		return s.errorf("fromto", "not valid for %s geoms", spec.Type)
	}
	return nil
}

func (c *compiler) site(e *element, body int, childclass *class) error {
	s, err := c.scopeFor(e, "site", childclass)
	if err != nil {
		return err
	}
	pos, err := s.vec3("pos", [3]float64{})
	if err != nil {
		return err
	}
	name := s.str("name", "")
	id := c.b.Site(name, body, pos)
	if name != "" {
		if _, dup := c.sites[name]; dup {
			return fmt.Errorf("%s: repeated site name %q", e, name)
		}
		c.sites[name] = id
	}
	return nil
}

func (c *compiler) light(e *element, body int, childclass *class) error {
	s, err := c.scopeFor(e, "light", childclass)
	if err != nil {
		return err
	}
	spec := physics.LightSpec{Body: body}
	if spec.Directional, err = s.bool("directional", false); err != nil {
		return err
	}
	if spec.CastShadow, err = s.bool("castshadow", true); err != nil {
		return err
	}
	if spec.Pos, err = s.vec3("pos", [3]float64{}); err != nil {
		return err
	}
	if spec.Dir, err = s.vec3("dir", [3]float64{0, 0, -1}); err != nil {
		return err
	}
	att, err := s.vec3("attenuation", [3]float64{1, 0, 0})
	if err != nil {
		return err
	}
	diffuse, err := s.vec3("diffuse", [3]float64{0.7, 0.7, 0.7})
	if err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		spec.Attenuation[i] = float32(att[i])
		spec.Diffuse[i] = float32(diffuse[i])
	}
	c.b.Light(spec)
	return nil
}

func (c *compiler) tendons(e *element) error {
	for _, t := range e.children {
		if t.name != "spatial" {
			c.log.Debug("tendon ignored", zap.String("kind", t.name), zap.Int("line", t.line))
			continue
		}
		s, err := c.scopeFor(t, "tendon", nil)
		if err != nil {
			return err
		}
		width, err := s.float("width", 0.003)
		if err != nil {
			return err
		}
		rgba, err := s.rgba("rgba", [4]float32{0.5, 0.5, 0.5, 1})
		if err != nil {
			return err
		}

		var sites []int
		for _, w := range t.children {
			if w.name != "site" {
				c.log.Debug("tendon wrap object ignored", zap.String("kind", w.name), zap.Int("line", w.line))
				continue
			}
			name, _ := w.attr("site")
			id, ok := c.sites[name]
			if !ok {
				return fmt.Errorf("%s: unknown site %q", w, name)
			}
			sites = append(sites, id)
		}
		if len(sites) < 2 {
			return fmt.Errorf("%s: spatial tendon needs at least two sites", t)
		}
		c.b.Tendon(s.str("name", ""), width, rgba, sites)
	}
	return nil
}

func (c *compiler) actuators(e *element) error {
	for _, a := range e.children {
		kind := a.name
		cls, err := c.classFor(a, nil)
		if err != nil {
			return err
		}
		s := scope{e: a, cls: cls, kind: kind, fallback: "general"}

		jointName, ok := s.get("joint")
		if !ok {
			jointName, ok = s.get("jointinparent")
		}
		if !ok {
			c.log.Debug("actuator without joint transmission ignored",
				zap.String("kind", kind), zap.Int("line", a.line))
			continue
		}
		joint, found := c.joints[jointName]
		if !found {
			return fmt.Errorf("%s: unknown joint %q", a, jointName)
		}

		gear, err := s.floats("gear", []float64{1}, 1, 6)
		if err != nil {
			return err
		}
		ctrlRange, err := s.floats("ctrlrange", []float64{0, 0}, 2, 2)
		if err != nil {
			return err
		}
		limited, err := s.limited("ctrllimited", "ctrlrange")
		if err != nil {
			return err
		}
		if limited && ctrlRange[0] >= ctrlRange[1] {
			return s.errorf("ctrlrange", "invalid range %v", ctrlRange)
		}
		c.b.Actuator(physics.ActuatorSpec{
			Name:        s.str("name", ""),
			Joint:       joint,
			Gear:        gear[0],
			CtrlLimited: limited,
			CtrlRange:   [2]float64{ctrlRange[0], ctrlRange[1]},
		})
	}
	return nil
}

func (c *compiler) keyframes(e *element) error {
	for _, k := range e.children {
		if k.name != "key" {
			continue
		}
		s := scope{e: k}
		t, err := s.float("time", 0)
		if err != nil {
			return err
		}
		qpos, err := s.floats("qpos", nil, 0, gomath.MaxInt32)
		if err != nil {
			return err
		}
		c.b.Key(s.str("name", ""), t, qpos)
	}
	return nil
}

// zAxisQuat returns the rotation taking +Z onto d.
func zAxisQuat(d [3]float64) [4]float64 {
	q := mgl64.QuatBetweenVectors(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{d[0], d[1], d[2]}).Normalize()
	return [4]float64{q.W, q.V[0], q.V[1], q.V[2]}
}
