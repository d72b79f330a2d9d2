package supervisor

// DependencyStatus is the observed probe state of one dependency target.
type DependencyStatus struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Soft      bool   `json:"soft,omitempty"`
	Reachable bool   `json:"reachable"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`
}

// ChildStatus is the observed state of one supervised process.
type ChildStatus struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	PID      int    `json:"pid,omitempty"`
	Running  bool   `json:"running"`
	ExitCode int    `json:"exit_code"`
}

// StatusSnapshot is a point-in-time view of the supervisor, safe to serialize.
type StatusSnapshot struct {
	State        State              `json:"state"`
	Dependencies []DependencyStatus `json:"dependencies"`
	Children     []ChildStatus      `json:"children"`
}

// Snapshot captures the current supervisor state for the status endpoints.
func (s *Supervisor) Snapshot() StatusSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatusSnapshot{State: s.state}
	snap.Dependencies = make([]DependencyStatus, len(s.deps))
	copy(snap.Dependencies, s.deps)

	if s.aux != nil {
		snap.Children = append(snap.Children, ChildStatus{
			Name:     s.aux.Name(),
			Role:     string(s.aux.Role()),
			PID:      s.aux.PID(),
			Running:  s.aux.Running(),
			ExitCode: s.aux.ExitCode(),
		})
	}
	if s.primary != nil {
		snap.Children = append(snap.Children, ChildStatus{
			Name:     s.primary.Name(),
			Role:     string(s.primary.Role()),
			PID:      s.primary.PID(),
			Running:  s.primary.Running(),
			ExitCode: s.primary.ExitCode(),
		})
	}
	return snap
}
