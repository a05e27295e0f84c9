package interp

import "github.com/dolthub/swiss"

// Class is a Lox class value: a name, an optional superclass, and a table
// of methods declared directly on it (not including inherited ones, which
// are reached by walking the superclass chain at lookup time).
type Class struct {
	name       string
	superclass *Class
	methods    map[string]*Function
}

// NewClass constructs a Class. superclass may be nil.
func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	return &Class{name: name, superclass: superclass, methods: methods}
}

// String implements Value: a class's canonical string form is its own
// name.
func (c *Class) String() string { return c.name }

// findMethod looks up name among c's own methods, then its superclass
// chain, returning (nil, false) if not found anywhere.
func (c *Class) findMethod(name string) (*Function, bool) {
	if m, ok := c.methods[name]; ok {
		return m, true
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil, false
}

// Arity implements Callable: a class's arity is its initializer's arity, or
// 0 if it has none.
func (c *Class) Arity() int {
	if init, ok := c.findMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

// Call implements Callable: calling a class constructs a fresh instance,
// running its initializer (if any) against the given arguments.
func (c *Class) Call(it *Interpreter, args []Value) (Value, error) {
	instance := NewInstance(c)
	if init, ok := c.findMethod("init"); ok {
		if _, err := init.bind(instance).Call(it, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

var _ Callable = (*Class)(nil)

// Instance is a Lox object: an instance of some Class, with its own field
// table.
type Instance struct {
	class  *Class
	fields *swiss.Map[string, Value]
}

// NewInstance constructs a fresh, field-less instance of class.
func NewInstance(class *Class) *Instance {
	return &Instance{class: class, fields: swiss.NewMap[string, Value](4)}
}

// String implements Value.
func (i *Instance) String() string { return i.class.name + " instance" }

// Get implements property access: fields shadow methods, and a found
// method is bound to this instance before being returned.
func (i *Instance) Get(name string) (Value, error) {
	if v, ok := i.fields.Get(name); ok {
		return v, nil
	}
	if m, ok := i.class.findMethod(name); ok {
		return m.bind(i), nil
	}
	return nil, undefinedProperty(name)
}

// Set implements property assignment: an unconditional write into fields,
// with no prior declaration required.
func (i *Instance) Set(name string, v Value) {
	i.fields.Put(name, v)
}

func undefinedProperty(name string) error {
	return runtimeErrorf("Undefined property '%s'.", name)
}
