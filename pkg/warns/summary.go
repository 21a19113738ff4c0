package warns

// UnbanSummary is the outcome of one group in a summary
type UnbanSummary struct {
	GroupID string `json:"groupId"`
	Error   string `json:"error,omitempty"`
}

// UnwarnSummary is the JSON view of an UnwarnResult
type UnwarnSummary struct {
	UserID      string         `json:"userId"`
	NoOp        bool           `json:"noop"`
	Removed     string         `json:"removed,omitempty"`
	RemovedID   string         `json:"removedId,omitempty"`
	RemovedDate string         `json:"removedDate,omitempty"`
	ActiveCount int            `json:"activeCount"`
	Threshold   int            `json:"threshold"`
	WasBanned   bool           `json:"wasBanned"`
	Unbans      []UnbanSummary `json:"unbans,omitempty"`
}

// Summary flattens the result for transports
func (r *UnwarnResult) Summary() UnwarnSummary {
	s := UnwarnSummary{
		NoOp:        r.NoOp,
		ActiveCount: r.ActiveCount,
		Threshold:   r.Threshold,
		WasBanned:   r.WasBanned,
	}
	if r.User != nil {
		s.UserID = r.User.ID
	}
	if !r.NoOp {
		s.Removed = r.Label()
		s.RemovedID = r.Removed.ID
		if r.Removed.HasDate() {
			s.RemovedDate = CanonicalDate(*r.Removed.Date)
		}
	}
	for _, o := range r.Unbans {
		u := UnbanSummary{GroupID: o.GroupID}
		if o.Err != nil {
			u.Error = o.Err.Error()
		}
		s.Unbans = append(s.Unbans, u)
	}
	return s
}
