package bollywood

// PID (Process ID) represents a unique reference to an actor instance.
type PID struct {
	ID string
}

// String returns the string representation of the PID.
func (pid *PID) String() string {
	if pid == nil {
		return "<nil>"
	}
	return pid.ID
}

// Equal reports whether both PIDs address the same actor.
func (pid *PID) Equal(other *PID) bool {
	if pid == nil || other == nil {
		return pid == other
	}
	return pid.ID == other.ID
}
