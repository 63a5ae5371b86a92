package tui

// QueryStatus is the lifecycle state of one dashboard request.
type QueryStatus int

const (
	QueryIdle QueryStatus = iota
	QueryLoading
	QuerySuccess
	QueryError
)

func (s QueryStatus) String() string {
	switch s {
	case QueryLoading:
		return "loading"
	case QuerySuccess:
		return "success"
	case QueryError:
		return "error"
	default:
		return "idle"
	}
}

// Query tracks the latest request of one kind. Every Start hands out a new sequence
// number; a result carrying an older number belongs to a superseded request and
// Finish ignores it.
type Query struct {
	Status QueryStatus
	Err    error
	seq    uint64
}

// Start marks the query as loading and returns the sequence number the result
// must carry.
func (q *Query) Start() uint64 {
	q.seq++
	q.Status = QueryLoading
	q.Err = nil
	return q.seq
}

// Finish records the outcome of request seq. It reports false, changing nothing,
// when seq is stale.
func (q *Query) Finish(seq uint64, err error) bool {
	if seq != q.seq || q.Status != QueryLoading {
		return false
	}
	if err != nil {
		q.Status = QueryError
		q.Err = err
		return true
	}
	q.Status = QuerySuccess
	return true
}

// Reset drops any request in flight.
func (q *Query) Reset() {
	q.seq++
	q.Status = QueryIdle
	q.Err = nil
}

func (q Query) Loading() bool {
	return q.Status == QueryLoading
}
