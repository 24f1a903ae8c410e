package graph

import "fmt"

// Router owns one set of processors and evaluates them in dependency
// order, once per audio block. A voice holds two routers: its own and a
// shared "global" one processed exactly once per block regardless of the
// number of voices; sources owned by another router impose no ordering
// edge, so the owner must process the global router first.
type Router struct {
	cfg Config

	processors []Processor
	index      map[Processor]int
	order      []Processor
	dirty      bool

	outputs     map[string]*Output
	outputNames []string
}

// NewRouter returns an empty router. Zero Config fields fall back to the
// defaults.
func NewRouter(cfg Config) *Router {
	return &Router{
		cfg:     cfg.withDefaults(),
		index:   make(map[Processor]int),
		outputs: make(map[string]*Output),
	}
}

// Config returns the router's engine configuration.
func (r *Router) Config() Config { return r.cfg }

// Add registers a processor and binds it to the engine configuration,
// allocating its output buffers. Registering the same processor twice is
// a programming error.
func (r *Router) Add(p Processor) {
	if _, ok := r.index[p]; ok {
		panic("synth: processor registered twice")
	}

	r.index[p] = len(r.processors)
	r.processors = append(r.processors, p)
	p.bind(r.cfg)
	r.dirty = true
}

// Remove unregisters a processor so the router stops evaluating it. The
// processor's outputs stay valid for anything still holding them.
func (r *Router) Remove(p Processor) {
	at, ok := r.index[p]
	if !ok {
		panic("synth: processor not registered")
	}

	r.processors = append(r.processors[:at], r.processors[at+1:]...)
	delete(r.index, p)

	for i := at; i < len(r.processors); i++ {
		r.index[r.processors[i]] = i
	}

	r.dirty = true
}

// Contains reports whether p is registered with this router.
func (r *Router) Contains(p Processor) bool {
	_, ok := r.index[p]
	return ok
}

// Len returns the number of registered processors.
func (r *Router) Len() int { return len(r.processors) }

// Invalidate forces the evaluation order to be rebuilt before the next
// block. Call it after re-plugging inputs of registered processors.
func (r *Router) Invalidate() { r.dirty = true }

// RegisterOutput exposes out under name for the graph's owner.
func (r *Router) RegisterOutput(name string, out *Output) {
	if _, ok := r.outputs[name]; ok {
		panic(fmt.Sprintf("synth: output %q registered twice", name))
	}

	r.outputs[name] = out
	r.outputNames = append(r.outputNames, name)
}

// Output returns the registered output for name.
func (r *Router) Output(name string) *Output {
	out, ok := r.outputs[name]
	if !ok {
		panic(fmt.Sprintf("synth: unknown output %q", name))
	}

	return out
}

// OutputNames returns the registered output names in registration order.
func (r *Router) OutputNames() []string {
	names := make([]string, len(r.outputNames))
	copy(names, r.outputNames)

	return names
}

// ProcessBlock evaluates every enabled processor for the next n frames,
// rebuilding the evaluation order first if the topology changed.
func (r *Router) ProcessBlock(n int) {
	if n <= 0 || n > r.cfg.BlockSize {
		panic(fmt.Sprintf("synth: block length must be in [1, %d]: %d", r.cfg.BlockSize, n))
	}

	if r.dirty {
		r.rebuildOrder()
	}

	for _, p := range r.order {
		if p.Enabled() {
			p.ProcessBlock(n)
		}
	}
}

// rebuildOrder recomputes the topological evaluation order. Ties keep
// registration order; a dependency cycle is a fatal configuration error.
func (r *Router) rebuildOrder() {
	count := len(r.processors)
	indegree := make([]int, count)
	outgoing := make([][]int, count)

	edge := func(from, to int) {
		if from == to {
			// A processor plugged into itself can never be scheduled.
			indegree[to]++
			return
		}

		outgoing[from] = append(outgoing[from], to)
		indegree[to]++
	}

	for i, p := range r.processors {
		for slot := range p.InputCount() {
			if j, ok := r.resolve(p.Source(slot).Owner()); ok {
				edge(j, i)
			}
		}

		// A nested router's reads from outer processors order the
		// container; reads that resolve back to the container itself are
		// inner edges the nested router already orders.
		if c, ok := p.(Container); ok {
			visitNested(c.Inner(), func(source *Output) {
				if j, ok := r.resolve(source.Owner()); ok && j != i {
					edge(j, i)
				}
			})
		}
	}

	order := make([]Processor, 0, count)
	emitted := make([]bool, count)

	for len(order) < count {
		next := -1

		for i := range count {
			if !emitted[i] && indegree[i] == 0 {
				next = i
				break
			}
		}

		if next < 0 {
			panic("synth: processor graph contains a cycle")
		}

		emitted[next] = true
		order = append(order, r.processors[next])

		for _, dep := range outgoing[next] {
			indegree[dep]--
		}
	}

	r.order = order
	r.dirty = false
}

// visitNested calls fn for every output consumed inside r, recursing
// through nested containers.
func visitNested(r *Router, fn func(*Output)) {
	for _, p := range r.processors {
		for slot := range p.InputCount() {
			fn(p.Source(slot))
		}

		if c, ok := p.(Container); ok {
			visitNested(c.Inner(), fn)
		}
	}
}

// resolve maps an output owner to the registered processor that produces
// it in this router: either the owner itself or the container whose
// nested graph holds it.
func (r *Router) resolve(owner Processor) (int, bool) {
	if owner == nil {
		return 0, false
	}

	if i, ok := r.index[owner]; ok {
		return i, true
	}

	for i, p := range r.processors {
		c, ok := p.(Container)
		if !ok {
			continue
		}

		if containsDeep(c.Inner(), owner) {
			return i, true
		}
	}

	return 0, false
}

func containsDeep(r *Router, p Processor) bool {
	if r.Contains(p) {
		return true
	}

	for _, q := range r.processors {
		if c, ok := q.(Container); ok && containsDeep(c.Inner(), p) {
			return true
		}
	}

	return false
}
