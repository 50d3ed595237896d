package cache

// Keyer generates cache keys.
type Keyer interface {
	// RunKey identifies an optimisation run over the modules with the given hash.
	RunKey(modulesHash string, opts RunKeyOpts) string

	// ArtifactKey identifies a rendered output of a run.
	ArtifactKey(runHash string, opts ArtifactKeyOpts) string
}

// RunKeyOpts holds every input besides the modules that changes a run's result.
type RunKeyOpts struct {
	InitialTemperature float64    `json:"t0"`
	Decay              float64    `json:"decay"`
	Frozen             float64    `json:"frozen"`
	Trials             int        `json:"trials"`
	Weights            [4]float64 `json:"weights"`
	Seed               uint64     `json:"seed"`
	Metropolis         bool       `json:"metropolis"`
}

// ArtifactKeyOpts holds the render options of an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale"`
	Stroke float64 `json:"stroke"`
	Labels bool    `json:"labels"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RunKey generates a key for a run.
func (DefaultKeyer) RunKey(modulesHash string, opts RunKeyOpts) string {
	return hashKey("run", modulesHash, opts)
}

// ArtifactKey generates a key for an artifact.
func (DefaultKeyer) ArtifactKey(runHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", runHash, opts)
}
