package testutil

import "sync"

// Navigator records every destination it is asked to navigate to.
type Navigator struct {
	mu           sync.Mutex
	destinations []string
}

func (n *Navigator) Navigate(destination string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.destinations = append(n.destinations, destination)
}

// Destinations returns a copy of the recorded destinations.
func (n *Navigator) Destinations() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.destinations...)
}
