package resources

import "iter"

// collection keeps values by name in insertion order.
type collection[T any] struct {
	names []string
	items map[string]T
}

// add stores v unless name is taken and reports whether it was stored.
func (c *collection[T]) add(name string, v T) bool {
	if _, exists := c.items[name]; exists {
		return false
	}
	if c.items == nil {
		c.items = make(map[string]T)
	}
	c.names = append(c.names, name)
	c.items[name] = v
	return true
}

// replace overwrites an existing entry, keeping its position.
func (c *collection[T]) replace(name string, v T) {
	if _, exists := c.items[name]; !exists {
		c.add(name, v)
		return
	}
	c.items[name] = v
}

func (c *collection[T]) get(name string) (T, bool) {
	v, ok := c.items[name]
	return v, ok
}

func (c *collection[T]) len() int {
	return len(c.names)
}

func (c *collection[T]) all() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, name := range c.names {
			if !yield(name, c.items[name]) {
				return
			}
		}
	}
}
