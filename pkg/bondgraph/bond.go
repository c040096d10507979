package bondgraph

// Bond is a directed connection between two nodes of the same model.
type Bond struct {
	uri    string
	source *Node
	target *Node
}

// newBond links source and target through their adjacency lists.
func newBond(uri string, source, target *Node) *Bond {
	source.AddTarget(target)
	target.AddSource(source)
	return &Bond{uri: uri, source: source, target: target}
}

func (b *Bond) URI() string   { return b.uri }
func (b *Bond) Source() *Node { return b.source }
func (b *Bond) Target() *Node { return b.target }
