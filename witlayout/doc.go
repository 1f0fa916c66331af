// Package witlayout builds layout descriptors for WIT types.
//
// Sizes, alignments and field offsets follow the Canonical ABI: records and
// tuples pad every member to its natural alignment, variants store a
// discriminant followed by a payload union sized by the largest case, and
// strings and lists are a (ptr u32, len u32) pair pointing into linear
// memory.
//
//	d := witlayout.NewDescriber()
//	t, err := d.Describe(recordTypeDef)
//	inst := layout.New(t, source.NewMemory(mod.Memory()), layout.At(addr))
//
// Lift follows the pointer of a string or list instance and returns the
// loaded elements.
package witlayout
