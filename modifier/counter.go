package modifier

import "fmt"

// Counter is the grammar-scoped monotonic counter behind every
// synthetic rule name (spec §5: "a per-grammar monotone counter owned
// by the modifier", not a process global). One Counter is created per
// Run call and threaded through the desugaring pass only.
type Counter struct {
	n int
}

func NewCounter() *Counter {
	return &Counter{}
}

// Next returns a fresh synthetic id rooted at parentID.
func (c *Counter) Next(parentID string) string {
	c.n++
	return fmt.Sprintf("%s__GEN_%d", parentID, c.n)
}
