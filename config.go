package snakec

import "fmt"

// Config is a typed string-keyed settings map, in the same style the
// teacher uses for grammar/compiler options: each value remembers its
// own type and panics on a type-mismatched access, catching a typo'd
// path or a wrong accessor immediately instead of silently returning a
// zero value. Unlike the teacher's grammar options, nothing here ever
// needs a string-valued setting, so the type witness only distinguishes
// bool from int.
type Config map[string]cfgVal

// NewConfig returns the default configuration: unoptimized codegen,
// no register allocator, the dead field-count guard omitted.
func NewConfig() *Config {
	m := make(Config)
	m.SetInt("compiler.optimize", 0)
	m.SetBool("compiler.regalloc", false)
	m.SetBool("compiler.omit_field_count_guard", true)
	return &m
}

type cfgKind int

const (
	cfgBool cfgKind = iota
	cfgInt
)

func (k cfgKind) String() string {
	if k == cfgBool {
		return "bool"
	}
	return "int"
}

type cfgVal struct {
	kind cfgKind
	b    bool
	i    int
}

// set records v at path, panicking if path already holds a value of a
// different kind — reusing a config path for two different types is a
// programming error, not a valid reconfiguration.
func (c *Config) set(path string, v cfgVal) {
	if old, ok := (*c)[path]; ok && old.kind != v.kind {
		panic(fmt.Sprintf("can't assign %s to %s setting %q", v.kind, old.kind, path))
	}
	(*c)[path] = v
}

func (c *Config) SetBool(path string, v bool) {
	c.set(path, cfgVal{kind: cfgBool, b: v})
}

func (c *Config) SetInt(path string, v int) {
	c.set(path, cfgVal{kind: cfgInt, i: v})
}

func (c *Config) GetBool(path string) bool {
	v, ok := (*c)[path]
	if !ok {
		panic(fmt.Sprintf("bool setting %q does not exist", path))
	}
	if v.kind != cfgBool {
		panic(fmt.Sprintf("can't retrieve bool from %s setting %q", v.kind, path))
	}
	return v.b
}

func (c *Config) GetInt(path string) int {
	v, ok := (*c)[path]
	if !ok {
		panic(fmt.Sprintf("int setting %q does not exist", path))
	}
	if v.kind != cfgInt {
		panic(fmt.Sprintf("can't retrieve int from %s setting %q", v.kind, path))
	}
	return v.i
}
