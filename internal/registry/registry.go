// Package registry stores prototypes and their parent edges, and resolves
// canonical member paths through the inheritance graph.
//
// Prototypes live in an arena addressed by stable integer IDs. Parent lists
// hold IDs rather than pointers, so identity comparison is O(1) and the graph
// has no ownership cycles. Prototypes are never deleted.
//
// Lookup order is a breadth-first linearization: starting at the queried
// prototype, parents are expanded in declaration order and no prototype is
// visited twice. In a diamond the earliest-declared parent that defines a
// member wins.
package registry

import (
	"fmt"
	"slices"

	"github.com/Moop-Lang/Moop-wasm/internal/path"
)

// ID addresses a prototype in the registry arena.
type ID int

// Prototype is a named node in the inheritance graph.
type Prototype struct {
	ID      ID
	Name    string
	Parents []ID

	members     map[string]bool
	memberOrder []string
}

// Defines reports whether the prototype locally defines member
// ("actor" or "actor.func").
func (p *Prototype) Defines(member string) bool {
	return p.members[member]
}

// Edge is a declared child <- parent relation.
type Edge struct {
	Child  string
	Parent string
}

// String renders the edge in its serialized form.
func (e Edge) String() string {
	return e.Child + " <- " + e.Parent
}

// Target is the outcome of a successful member resolution.
type Target struct {
	// Requested is the path as written by the caller.
	Requested path.CanonicalPath

	// Path is the member rooted at the prototype that defines it.
	Path path.CanonicalPath

	// Definer is the name of the defining prototype.
	Definer string

	// Depth is the breadth-first distance from the requested prototype.
	Depth int
}

// Info is a read-only snapshot of a prototype.
type Info struct {
	Name    string   `json:"name"`
	Parents []string `json:"parents"`
	Members []string `json:"members"`
}

// Registry is the inheritance graph for one session.
// A Registry is not safe for concurrent use.
type Registry struct {
	protos []Prototype
	index  map[string]ID
	edges  []Edge
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{index: make(map[string]ID)}
}

// ensure returns the ID for name, creating the prototype if absent.
func (r *Registry) ensure(name string) ID {
	if id, ok := r.index[name]; ok {
		return id
	}
	id := ID(len(r.protos))
	r.protos = append(r.protos, Prototype{
		ID:      id,
		Name:    name,
		members: make(map[string]bool),
	})
	r.index[name] = id
	return id
}

// Declare registers a prototype without parents or members.
// Returns true if the prototype was newly created.
func (r *Registry) Declare(name string) (bool, error) {
	if _, err := path.ParseArity(name, 1); err != nil {
		return false, err
	}
	_, existed := r.index[name]
	r.ensure(name)
	return !existed, nil
}

// DeclareEdge records child <- parent.
//
// Both prototypes are created if absent and parent is appended to child's
// parent list. If the edge would close a cycle the registry is left
// untouched and a Cycle error is returned. Re-declaring an existing edge is
// a no-op and returns added=false.
func (r *Registry) DeclareEdge(child, parent string) (added bool, err error) {
	if _, err := path.ParseArity(child, 1); err != nil {
		return false, err
	}
	if _, err := path.ParseArity(parent, 1); err != nil {
		return false, err
	}

	if child == parent {
		return false, newCycleError(child, parent, []string{child, child})
	}

	childID, childOK := r.index[child]
	parentID, parentOK := r.index[parent]

	if childOK && parentOK {
		if slices.Contains(r.protos[childID].Parents, parentID) {
			return false, nil
		}
		// The edge closes a cycle iff child is already an ancestor of parent.
		if chain := r.ancestorChain(parentID, childID); chain != nil {
			cycle := append([]string{child}, chain...)
			return false, newCycleError(child, parent, cycle)
		}
	}

	childID = r.ensure(child)
	parentID = r.ensure(parent)
	r.protos[childID].Parents = append(r.protos[childID].Parents, parentID)
	r.edges = append(r.edges, Edge{Child: child, Parent: parent})
	return true, nil
}

// ancestorChain searches parent links from `from` for `target`. It returns
// the names along the discovered chain, from `from` through `target`
// inclusive, or nil when target is not an ancestor.
func (r *Registry) ancestorChain(from, target ID) []string {
	prev := make([]ID, len(r.protos))
	visited := make([]bool, len(r.protos))
	for i := range prev {
		prev[i] = -1
	}

	queue := []ID{from}
	visited[from] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			var chain []string
			for n := cur; n != -1; n = prev[n] {
				chain = append(chain, r.protos[n].Name)
			}
			slices.Reverse(chain)
			return chain
		}
		for _, p := range r.protos[cur].Parents {
			if !visited[p] {
				visited[p] = true
				prev[p] = cur
				queue = append(queue, p)
			}
		}
	}
	return nil
}

// Define records the member named by p on its prototype, creating the
// prototype if needed. A one-segment path only declares the prototype;
// a three-segment path also defines its actor.
// Returns true if anything new was recorded.
func (r *Registry) Define(p path.CanonicalPath) (bool, error) {
	if p.IsZero() {
		return false, fmt.Errorf("define: zero path")
	}

	_, existed := r.index[p.Proto()]
	proto := &r.protos[r.ensure(p.Proto())]
	added := !existed

	if p.Actor() != "" && !proto.members[p.Actor()] {
		proto.members[p.Actor()] = true
		proto.memberOrder = append(proto.memberOrder, p.Actor())
		added = true
	}
	if p.Func() != "" && !proto.members[p.Member()] {
		proto.members[p.Member()] = true
		proto.memberOrder = append(proto.memberOrder, p.Member())
		added = true
	}
	return added, nil
}

// Resolve finds the prototype that defines the member named by p, searching
// p's prototype and then its ancestors in breadth-first declaration order.
//
// A one-segment path resolves iff the prototype exists.
func (r *Registry) Resolve(p path.CanonicalPath) (Target, error) {
	startID, ok := r.index[p.Proto()]
	if !ok {
		return Target{}, newUnresolvedError(p.String(), nil)
	}
	if p.Arity() == 1 {
		return Target{Requested: p, Path: p, Definer: p.Proto()}, nil
	}

	member := p.Member()
	var searched []string

	visited := make([]bool, len(r.protos))
	type entry struct {
		id    ID
		depth int
	}
	queue := []entry{{startID, 0}}
	visited[startID] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		proto := &r.protos[cur.id]
		searched = append(searched, proto.Name)
		if proto.members[member] {
			return Target{
				Requested: p,
				Path:      p.WithProto(proto.Name),
				Definer:   proto.Name,
				Depth:     cur.depth,
			}, nil
		}

		for _, parent := range proto.Parents {
			if !visited[parent] {
				visited[parent] = true
				queue = append(queue, entry{parent, cur.depth + 1})
			}
		}
	}

	return Target{}, newUnresolvedError(p.String(), searched)
}

// ResolveMember is Resolve for separately supplied segments.
func (r *Registry) ResolveMember(proto, actor, fn string) (Target, error) {
	p, err := path.New(proto, actor, fn)
	if err != nil {
		return Target{}, err
	}
	return r.Resolve(p)
}

// Linearize returns the lookup order used by Resolve for name,
// starting with name itself. Returns nil for unknown prototypes.
func (r *Registry) Linearize(name string) []string {
	start, ok := r.index[name]
	if !ok {
		return nil
	}

	visited := make([]bool, len(r.protos))
	order := []string{}
	queue := []ID{start}
	visited[start] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, r.protos[cur].Name)
		for _, p := range r.protos[cur].Parents {
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return order
}

// Parents returns the direct parents of name in declaration order.
func (r *Registry) Parents(name string) []string {
	id, ok := r.index[name]
	if !ok {
		return nil
	}
	parents := make([]string, len(r.protos[id].Parents))
	for i, p := range r.protos[id].Parents {
		parents[i] = r.protos[p].Name
	}
	return parents
}

// IsAncestor reports whether ancestor is reachable from child through one
// or more parent edges.
func (r *Registry) IsAncestor(child, ancestor string) bool {
	childID, ok := r.index[child]
	if !ok {
		return false
	}
	ancID, ok := r.index[ancestor]
	if !ok || childID == ancID {
		return false
	}
	return r.ancestorChain(childID, ancID) != nil
}

// Has reports whether a prototype named name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Get returns a snapshot of the named prototype.
func (r *Registry) Get(name string) (Info, bool) {
	id, ok := r.index[name]
	if !ok {
		return Info{}, false
	}
	return Info{
		Name:    name,
		Parents: r.Parents(name),
		Members: slices.Clone(r.protos[id].memberOrder),
	}, true
}

// Names returns prototype names in creation order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.protos))
	for i, p := range r.protos {
		names[i] = p.Name
	}
	return names
}

// Edges returns a copy of the declared edges in declaration order.
func (r *Registry) Edges() []Edge {
	return slices.Clone(r.edges)
}

// Snapshot serializes the graph as "Child <- Parent" strings, one per edge,
// in declaration order.
func (r *Registry) Snapshot() []string {
	out := make([]string, len(r.edges))
	for i, e := range r.edges {
		out[i] = e.String()
	}
	return out
}

// EdgeCount returns the number of declared edges.
func (r *Registry) EdgeCount() int {
	return len(r.edges)
}

// PrototypeCount returns the number of prototypes.
func (r *Registry) PrototypeCount() int {
	return len(r.protos)
}

// PathCount returns the number of canonical paths the registry knows:
// one per prototype plus one per defined actor or function.
func (r *Registry) PathCount() int {
	n := len(r.protos)
	for i := range r.protos {
		n += len(r.protos[i].memberOrder)
	}
	return n
}
