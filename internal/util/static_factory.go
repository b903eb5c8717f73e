package util

// StaticFactory is a Factory backed by plain fields, for tests and for
// embedding garden's command packages without going through Cobra flag
// parsing.
type StaticFactory struct {
	HomeDirectory  string
	ConfigFilePath string
	StrictMode     bool
}

func (f *StaticFactory) HomeDir() string {
	return f.HomeDirectory
}

func (f *StaticFactory) Clock() Clock {
	return &RealClock{}
}

func (f *StaticFactory) ConfigFile() string {
	return f.ConfigFilePath
}

func (f *StaticFactory) Strict() bool {
	return f.StrictMode
}
