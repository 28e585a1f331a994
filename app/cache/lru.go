package cache

// lruList keeps cache keys in recency order. The front is the most recently
// used key, the back is the next eviction candidate.
type lruList struct {
	root  lruNode // sentinel: root.next is the front, root.prev the back
	nodes map[string]*lruNode
}

type lruNode struct {
	key        string
	prev, next *lruNode
}

func newLRUList() *lruList {
	l := &lruList{nodes: make(map[string]*lruNode)}
	l.root.next = &l.root
	l.root.prev = &l.root
	return l
}

// touch inserts key at the front, or moves it there when already present
func (l *lruList) touch(key string) {
	if node, ok := l.nodes[key]; ok {
		l.unlink(node)
		l.pushFront(node)
		return
	}
	node := &lruNode{key: key}
	l.nodes[key] = node
	l.pushFront(node)
}

func (l *lruList) remove(key string) {
	if node, ok := l.nodes[key]; ok {
		l.unlink(node)
		delete(l.nodes, key)
	}
}

// popOldest removes and returns the least recently used key
func (l *lruList) popOldest() (string, bool) {
	if len(l.nodes) == 0 {
		return "", false
	}
	node := l.root.prev
	l.unlink(node)
	delete(l.nodes, node.key)
	return node.key, true
}

func (l *lruList) len() int {
	return len(l.nodes)
}

// keys lists the keys from most to least recently used
func (l *lruList) keys() []string {
	out := make([]string, 0, len(l.nodes))
	for n := l.root.next; n != &l.root; n = n.next {
		out = append(out, n.key)
	}
	return out
}

func (l *lruList) pushFront(node *lruNode) {
	node.prev = &l.root
	node.next = l.root.next
	l.root.next.prev = node
	l.root.next = node
}

func (l *lruList) unlink(node *lruNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
	node.prev, node.next = nil, nil
}
