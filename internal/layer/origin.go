package layer

import "strings"

// Origins records, for every leaf path of a merged configuration, the name
// of the source that provided it.
type Origins map[string]string

// Track records cfg, named name, as merged over the configurations tracked
// so far. It follows Merge: a leaf replaces whatever was below or above it,
// and an empty map leaves existing children alone.
func (o Origins) Track(name string, cfg map[string]any) {
	for path, val := range FlattenMap(cfg) {
		if m, ok := val.(map[string]any); ok && len(m) == 0 && o.hasChildren(path) {
			continue
		}
		o.dropChildren(path)
		o.dropParents(path)
		o[path] = name
	}
}

// Which returns the source name for the leaf at path.
func (o Origins) Which(path string) (string, bool) {
	name, ok := o[path]
	return name, ok
}

// Sub returns the origins below path, with the path prefix removed.
func (o Origins) Sub(path string) Origins {
	prefix := path + Separator
	sub := make(Origins)
	for k, name := range o {
		if strings.HasPrefix(k, prefix) {
			sub[strings.TrimPrefix(k, prefix)] = name
		}
	}
	return sub
}

// Clone returns a copy of o.
func (o Origins) Clone() Origins {
	c := make(Origins, len(o))
	for k, name := range o {
		c[k] = name
	}
	return c
}

func (o Origins) hasChildren(path string) bool {
	prefix := path + Separator
	for k := range o {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func (o Origins) dropChildren(path string) {
	prefix := path + Separator
	for k := range o {
		if strings.HasPrefix(k, prefix) {
			delete(o, k)
		}
	}
}

func (o Origins) dropParents(path string) {
	for i := strings.LastIndex(path, Separator); i > 0; i = strings.LastIndex(path[:i], Separator) {
		delete(o, path[:i])
	}
}
