package dialog

// NavStack is the back-navigation history of one session together with the
// last text rendered for each step.
type NavStack struct {
	steps []Step
	texts map[Step]string
}

// Push records s as the most recent step. It always succeeds.
func (n *NavStack) Push(s Step) {
	n.steps = append(n.steps, s)
}

// Pop removes and returns the most recent step. ok is false on an empty stack.
func (n *NavStack) Pop() (s Step, ok bool) {
	if len(n.steps) == 0 {
		return Idle, false
	}
	s = n.steps[len(n.steps)-1]
	n.steps = n.steps[:len(n.steps)-1]
	return s, true
}

// Len returns the number of recorded steps.
func (n NavStack) Len() int { return len(n.steps) }

// Steps returns a copy of the history, oldest first.
func (n NavStack) Steps() []Step {
	return append([]Step(nil), n.steps...)
}

// Clear empties the history and the text cache.
func (n *NavStack) Clear() {
	n.steps = nil
	n.texts = nil
}

// StoreText caches the text last rendered for s.
func (n *NavStack) StoreText(s Step, text string) {
	if n.texts == nil {
		n.texts = make(map[Step]string)
	}
	n.texts[s] = text
}

// FetchText returns the cached text for s.
func (n *NavStack) FetchText(s Step) (string, bool) {
	t, ok := n.texts[s]
	return t, ok
}

func (n NavStack) clone() NavStack {
	c := NavStack{steps: append([]Step(nil), n.steps...)}
	if len(n.texts) > 0 {
		c.texts = make(map[Step]string, len(n.texts))
		for k, v := range n.texts {
			c.texts[k] = v
		}
	}
	return c
}
