package weapon

// Magazine owns the ammunition count for one removable magazine. It is
// created on insertion into a magazine well and detached on ejection.
// Count is mutated only through ConsumeOne/RefillOne/RefillAll so the
// host-side ammo visuals stay synchronized via the visibility sink.
type Magazine struct {
	className string
	capacity  int
	count     int

	// visibility is notified on empty/non-empty transitions so the host
	// can hide or show the bullet models. May be nil.
	visibility func(visible bool)
}

// NewMagazine creates a magazine holding count rounds of capacity total.
// Counts are clamped into [0, capacity].
func NewMagazine(className string, capacity, count int) *Magazine {
	if capacity < 0 {
		capacity = 0
	}
	if count < 0 {
		count = 0
	}
	if count > capacity {
		count = capacity
	}
	return &Magazine{className: className, capacity: capacity, count: count}
}

// SetVisibilitySink registers the ammo-visibility callback and immediately
// reconciles the visual with the current count.
func (m *Magazine) SetVisibilitySink(fn func(visible bool)) {
	m.visibility = fn
	m.notify()
}

func (m *Magazine) notify() {
	if m.visibility != nil {
		m.visibility(m.count > 0)
	}
}

// ConsumeOne decrements the count if any rounds remain and reports whether
// a round was consumed. On the transition to zero the visibility sink is
// signalled so the host hides the bullet model.
func (m *Magazine) ConsumeOne() bool {
	if m.count <= 0 {
		return false
	}
	m.count--
	if m.count == 0 {
		m.notify()
	}
	return true
}

// RefillOne increments the count by one. Capacity is not enforced here:
// callers are expected to stay within it (see DESIGN.md on over-filling).
func (m *Magazine) RefillOne() {
	m.count++
	if m.count == 1 {
		m.notify()
	}
}

// RefillAll restores the magazine to full capacity.
func (m *Magazine) RefillAll() {
	wasEmpty := m.count == 0
	m.count = m.capacity
	if wasEmpty && m.count > 0 {
		m.notify()
	}
}

// Count returns the number of rounds remaining.
func (m *Magazine) Count() int { return m.count }

// Capacity returns the magazine's designed capacity.
func (m *Magazine) Capacity() int { return m.capacity }

// ClassName returns the magazine class identifier used for acceptance checks.
func (m *Magazine) ClassName() string { return m.className }
