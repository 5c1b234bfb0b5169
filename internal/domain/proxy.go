package domain

// NetworkPath is one proxy egress route. Exactly one path is bound to
// exactly one worker for that worker's entire lifetime.
type NetworkPath string

func (p NetworkPath) String() string {
	return string(p)
}
