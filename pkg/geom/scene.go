package geom

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pulsegrid/pkg/errors"
)

// Scene is the layout session: an id-addressed arena of boxes.
//
// Bindings are stored as id edges. The owner keeps the outgoing list and the
// target keeps a count of incoming edges per owner, so releasing a box only
// edits the edge lists of its neighbours.
type Scene struct {
	boxes     map[ID]*Box
	order     []ID
	factor    float64
	logger    *log.Logger
	newID     func() ID
	displaced []ID
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger routes diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPrecision sets the number of decimal places coordinates round to.
func WithPrecision(digits int) Option {
	return func(s *Scene) {
		if digits >= 0 {
			s.factor = precisionFactor(digits)
		}
	}
}

// WithIDGenerator replaces the UUID generator, mainly for reproducible tests.
func WithIDGenerator(fn func() ID) Option {
	return func(s *Scene) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewScene creates an empty scene.
func NewScene(opts ...Option) *Scene {
	s := &Scene{
		boxes:  make(map[ID]*Box),
		factor: precisionFactor(DefaultPrecision),
		logger: log.New(io.Discard),
		newID:  func() ID { return ID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Logger returns the scene's diagnostic logger.
func (s *Scene) Logger() *log.Logger { return s.logger }

// Round rounds v to the scene precision.
func (s *Scene) Round(v float64) float64 {
	a := Anchor{factor: s.factor}
	return a.round(v)
}

// Step returns the smallest distinguishable coordinate difference.
func (s *Scene) Step() float64 { return 1 / s.factor }

// NewBox creates a box with a fresh id.
func (s *Scene) NewBox(label string) *Box {
	id := s.newID()
	for s.boxes[id] != nil {
		id = s.newID()
	}
	return s.add(id, label)
}

// NewBoxWithID creates a box with a caller-chosen id, as needed when
// rebuilding a tree from a snapshot.
func (s *Scene) NewBoxWithID(id ID, label string) (*Box, error) {
	if id == "" {
		return s.NewBox(label), nil
	}
	if s.boxes[id] != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate entity id %q", id)
	}
	return s.add(id, label), nil
}

func (s *Scene) add(id ID, label string) *Box {
	b := &Box{
		Anchor: Anchor{id: id, label: label, factor: s.factor},
		scene:  s,
	}
	s.boxes[id] = b
	s.order = append(s.order, id)
	return b
}

// Box looks up a live box.
func (s *Scene) Box(id ID) (*Box, bool) {
	b, ok := s.boxes[id]
	return b, ok
}

// Len returns the number of live boxes.
func (s *Scene) Len() int { return len(s.boxes) }

// Boxes returns live boxes in creation order.
func (s *Scene) Boxes() []*Box {
	out := make([]*Box, 0, len(s.boxes))
	for _, id := range s.order {
		if b := s.boxes[id]; b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Bindings returns every binding, grouped by owner in creation order.
func (s *Scene) Bindings() []Binding {
	var out []Binding
	for _, b := range s.Boxes() {
		out = append(out, b.outgoing...)
	}
	return out
}

// Release destroys a box and every binding that starts or ends at it.
// Releasing an unknown id is a no-op.
func (s *Scene) Release(id ID) {
	b := s.boxes[id]
	if b == nil {
		return
	}
	b.ClearBindings()
	for owner := range b.incoming {
		if o := s.boxes[owner]; o != nil {
			o.ClearBindsTo(id)
		}
	}
	delete(s.boxes, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	s.displaced = slices.DeleteFunc(s.displaced, func(d ID) bool { return d == id })
	b.incoming = nil
}

// EnforceAll runs EnforceBindings on every box in creation order.
func (s *Scene) EnforceAll() (int, error) {
	total := 0
	for _, b := range s.Boxes() {
		n, err := b.EnforceBindings()
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *Scene) markDisplaced(id ID) {
	if !slices.Contains(s.displaced, id) {
		s.displaced = append(s.displaced, id)
	}
}

// Displaced returns the boxes written by a binding since the last
// ClearDisplaced, in first-write order. Their parents need a recompute.
func (s *Scene) Displaced() []ID {
	return slices.Clone(s.displaced)
}

// ClearDisplaced forgets the displaced set.
func (s *Scene) ClearDisplaced() { s.displaced = s.displaced[:0] }
