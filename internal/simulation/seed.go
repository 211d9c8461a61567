package simulation

// PCG stream selectors, so the return generator and the care-event draw
// consume independent random streams from the same scenario seed.
const (
	returnStream = 0x9e3779b97f4a7c15
	ltcStream    = 0xda3e39cb94b95bdb
)

// ScenarioSeed derives the seed for one scenario from the run's base
// seed and the scenario index. The splitmix64 finalizer decorrelates
// adjacent indices, and the result depends only on (baseSeed, index), so
// a scenario reproduces bit-identically no matter which worker runs it.
func ScenarioSeed(baseSeed uint64, index int) uint64 {
	z := baseSeed + (uint64(index)+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
