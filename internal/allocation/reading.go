package allocation

// Reading is one recorded pair of meter readings for a billing period.
// When the physical meter was swapped mid-period, Replaced is set and the
// split carries the final reading of the old meter and the initial reading
// of the new one.
type Reading struct {
	Previous float64
	Current  float64

	Replaced   bool
	FinalOld   float64
	InitialNew float64
}

// Consumption converts the reading into consumed units. Usage accrues on the
// old meter up to its final reading, then resumes on the new meter from its
// initial reading. Negative deltas clamp to zero.
func (r Reading) Consumption() float64 {
	if r.Replaced {
		return ClampNegativeToZero(r.FinalOld-r.Previous) + ClampNegativeToZero(r.Current-r.InitialNew)
	}
	return ClampNegativeToZero(r.Current - r.Previous)
}
