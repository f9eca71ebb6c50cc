package compare

// colorPair keys a bucket
type colorPair struct {
	old Color
	new Color
}

// bucket is one color class holding elements of both sides
type bucket struct {
	key     colorPair
	degree  int
	members []int32
	count   [2]int
}

// balanced reports whether both sides hold the same number of members
func (b *bucket) balanced() bool {
	return b.count[0] == b.count[1]
}

// ambiguous reports whether a balanced bucket holds more than one element
// per side
func (b *bucket) ambiguous() bool {
	return b.count[0] > 1
}

// beats ranks buckets for the forced split: degree-1 buckets win over
// others, then the larger bucket wins.
func (b *bucket) beats(other *bucket) bool {
	leaf, otherLeaf := b.degree == 1, other.degree == 1
	if leaf != otherLeaf {
		return leaf
	}
	return len(b.members) > len(other.members)
}

// partition groups elements by color pair, keeping buckets in first-seen
// order so iteration is deterministic
type partition struct {
	index   map[colorPair]int
	buckets []bucket
}

func (p *partition) assign(elems []element) {
	if p.index == nil {
		p.index = make(map[colorPair]int, len(elems))
	} else {
		clear(p.index)
	}
	p.buckets = p.buckets[:0]

	for i := range elems {
		el := &elems[i]
		key := colorPair{old: el.old, new: el.new}
		bi, ok := p.index[key]
		if !ok {
			bi = len(p.buckets)
			p.index[key] = bi
			p.buckets = append(p.buckets, bucket{key: key, degree: el.degree})
		}
		b := &p.buckets[bi]
		b.members = append(b.members, int32(i))
		b.count[el.side]++
	}
}

// generation is one complete bucket assignment of devices and wires
type generation struct {
	devices partition
	wires   partition
}

// slot names one half of the double buffer
type slot uint8

const (
	slotFront slot = iota
	slotBack
)

func (s slot) other() slot {
	if s == slotFront {
		return slotBack
	}
	return slotFront
}

// bucketTables double-buffers generations so the current assignment can be
// compared with the previous one without rebuilding it.
type bucketTables struct {
	gens    [2]generation
	current slot
	filled  bool
}

// next switches to the other slot and returns it for reassignment
func (t *bucketTables) next() *generation {
	if t.filled {
		t.current = t.current.other()
	}
	t.filled = true
	return &t.gens[t.current]
}

// latest returns the most recent assignment
func (t *bucketTables) latest() *generation {
	return &t.gens[t.current]
}

// previous returns the assignment before latest
func (t *bucketTables) previous() *generation {
	return &t.gens[t.current.other()]
}
