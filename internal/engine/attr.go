package engine

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/agbru/fieldfmt/internal/dom"
	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/mask"
)

const (
	// AttrID carries the instance ID of the mask bound to a field.
	AttrID = "data-mask-id"
	// AttrOptions carries the JSON option set of the mask.
	AttrOptions = "data-mask-options"
)

var _ mask.Engine = (*AttrEngine)(nil)

// ErrDestroyed is returned when an instance is destroyed twice.
var ErrDestroyed = errors.New("mask instance already destroyed")

// AttrEngine binds masks to elements by writing data attributes.
// It is safe for concurrent use.
type AttrEngine struct {
	mu        sync.Mutex
	instances map[string]*AttrInstance
	order     []string
	newID     func() string
}

// NewAttrEngine returns an empty engine that names instances with random
// UUIDs.
func NewAttrEngine() *AttrEngine {
	return &AttrEngine{
		instances: make(map[string]*AttrInstance),
		newID:     func() string { return uuid.NewString() },
	}
}

// Attach implements mask.Engine. An element that already carries a live mask
// of this engine has it destroyed first, so each element holds at most one.
func (e *AttrEngine) Attach(el dom.Element, cfg mask.Config) (mask.Instance, error) {
	if el == nil {
		return nil, apperrors.ValidationError{Field: "element", Message: "must not be nil"}
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, apperrors.WrapError(err, "encoding mask options")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if prev, ok := el.Attr(AttrID); ok {
		if old, live := e.instances[prev]; live {
			e.destroyLocked(old)
			e.compactLocked()
		}
	}

	inst := &AttrInstance{id: e.newID(), engine: e, el: el, cfg: cfg.Clone()}
	el.SetAttr(AttrID, inst.id)
	el.SetAttr(AttrOptions, string(payload))
	e.instances[inst.id] = inst
	e.order = append(e.order, inst.id)
	return inst, nil
}

// Instances returns the live instances in attach order.
func (e *AttrEngine) Instances() []*AttrInstance {
	e.mu.Lock()
	defer e.mu.Unlock()

	live := make([]*AttrInstance, 0, len(e.instances))
	for _, id := range e.order {
		if inst, ok := e.instances[id]; ok {
			live = append(live, inst)
		}
	}
	return live
}

// Lookup returns the live instance with the given ID.
func (e *AttrEngine) Lookup(id string) (*AttrInstance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instances[id]
	return inst, ok
}

// DestroyAll destroys every live instance.
func (e *AttrEngine) DestroyAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range e.order {
		if inst, ok := e.instances[id]; ok {
			e.destroyLocked(inst)
		}
	}
	e.order = e.order[:0]
}

func (e *AttrEngine) destroyLocked(inst *AttrInstance) {
	delete(e.instances, inst.id)
	if id, ok := inst.el.Attr(AttrID); ok && id == inst.id {
		inst.el.RemoveAttr(AttrID)
		inst.el.RemoveAttr(AttrOptions)
	}
}

// compactLocked drops destroyed IDs from the attach order once it has grown
// well past the live set.
func (e *AttrEngine) compactLocked() {
	if len(e.order) < 2*len(e.instances)+16 {
		return
	}
	kept := e.order[:0]
	for _, id := range e.order {
		if _, ok := e.instances[id]; ok {
			kept = append(kept, id)
		}
	}
	e.order = kept
}

// AttrInstance is a mask bound by an AttrEngine.
type AttrInstance struct {
	id     string
	engine *AttrEngine
	el     dom.Element
	cfg    mask.Config
}

// ID implements mask.Instance.
func (i *AttrInstance) ID() string { return i.id }

// Element returns the element the mask is bound to.
func (i *AttrInstance) Element() dom.Element { return i.el }

// Config returns a copy of the options the mask was created with.
func (i *AttrInstance) Config() mask.Config { return i.cfg.Clone() }

// Destroy implements mask.Instance. It removes the mask attributes unless the
// element has since been bound to another instance.
func (i *AttrInstance) Destroy() error {
	i.engine.mu.Lock()
	defer i.engine.mu.Unlock()
	if _, ok := i.engine.instances[i.id]; !ok {
		return ErrDestroyed
	}
	i.engine.destroyLocked(i)
	i.engine.compactLocked()
	return nil
}
