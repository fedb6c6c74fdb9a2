package classify

// Aho-Corasick automaton over folded UTF-8 bytes. Each node carries a
// 256-way transition table so the scan loop is branch-light and map free

type acNode struct {
	next   [256]int32 // -1 when absent
	fail   int32
	output []int // phrase ids ending here, including those reached by fail links
}

type automaton struct {
	nodes []acNode
}

func newNode() acNode {
	var n acNode
	for i := range n.next {
		n.next[i] = -1
	}
	return n
}

func newAutomaton() *automaton {
	return &automaton{nodes: []acNode{newNode()}}
}

// add inserts phrase p under id. Empty phrases are ignored
func (a *automaton) add(p []byte, id int) {
	if len(p) == 0 {
		return
	}
	s := int32(0)
	for _, b := range p {
		nxt := a.nodes[s].next[b]
		if nxt == -1 {
			nxt = int32(len(a.nodes))
			a.nodes[s].next[b] = nxt
			a.nodes = append(a.nodes, newNode())
		}
		s = nxt
	}
	a.nodes[s].output = append(a.nodes[s].output, id)
}

// build computes fail links breadth first and folds suffix outputs into each node
func (a *automaton) build() {
	q := make([]int32, 0, len(a.nodes))
	for b := range 256 {
		if s := a.nodes[0].next[b]; s != -1 {
			a.nodes[s].fail = 0
			q = append(q, s)
		}
	}
	for qi := 0; qi < len(q); qi++ {
		r := q[qi]
		for b := range 256 {
			s := a.nodes[r].next[b]
			if s == -1 {
				continue
			}
			q = append(q, s)

			f := a.nodes[r].fail
			for f != 0 && a.nodes[f].next[b] == -1 {
				f = a.nodes[f].fail
			}
			if nxt := a.nodes[f].next[b]; nxt != -1 {
				a.nodes[s].fail = nxt
			} else {
				a.nodes[s].fail = 0
			}
			a.nodes[s].output = append(a.nodes[s].output, a.nodes[a.nodes[s].fail].output...)
		}
	}
}

// scan calls fn(end, id) for every phrase occurrence ending at byte offset end.
// Returning false from fn stops the scan
func (a *automaton) scan(text string, fn func(end, id int) bool) {
	s := int32(0)
	for i := 0; i < len(text); i++ {
		b := text[i]
		for s != 0 && a.nodes[s].next[b] == -1 {
			s = a.nodes[s].fail
		}
		if nxt := a.nodes[s].next[b]; nxt != -1 {
			s = nxt
		}
		for _, id := range a.nodes[s].output {
			if !fn(i+1, id) {
				return
			}
		}
	}
}
