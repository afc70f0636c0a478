package syncqueue

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRetrying   Status = "retrying"
	StatusFailed     Status = "failed"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true},
	StatusRetrying:   {StatusProcessing: true},
	StatusProcessing: {StatusCompleted: true, StatusRetrying: true, StatusFailed: true},
	StatusCompleted:  {},
	StatusFailed:     {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal: tidak akan diambil lagi oleh claim.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
