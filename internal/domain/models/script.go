package models

// DeployScript is one file under deploy/: an ordered list of deployments
// plus the tags used to select it.
type DeployScript struct {
	ID           string       `yaml:"-"` // file stem, e.g. "001_event_contract"
	Path         string       `yaml:"-"`
	Tags         []string     `yaml:"tags"`
	Dependencies []string     `yaml:"dependencies"`
	Deployments  []DeployStep `yaml:"deployments"`
}

// DeployStep describes a single contract deployment
type DeployStep struct {
	Name     string     `yaml:"name"`
	Contract string     `yaml:"contract,omitempty"` // artifact name, defaults to Name
	From     string     `yaml:"from"`
	Args     []any      `yaml:"args,omitempty"`
	Proxy    *ProxySpec `yaml:"proxy,omitempty"`
	Skip     bool       `yaml:"skip,omitempty"`
}

// ProxySpec configures deployment behind an upgradeable proxy
type ProxySpec struct {
	Kind     ProxyKind     `yaml:"kind"`
	Artifact string        `yaml:"artifact,omitempty"` // proxy contract artifact override
	Owner    string        `yaml:"owner,omitempty"`    // named account or address, defaults to From
	Execute  *ProxyExecute `yaml:"execute,omitempty"`
}

// ProxyExecute holds the calls executed through the proxy on deployment
type ProxyExecute struct {
	Init *MethodCall `yaml:"init,omitempty"`
}

// MethodCall is a method name plus literal arguments
type MethodCall struct {
	Method string `yaml:"method"`
	Args   []any  `yaml:"args,omitempty"`
}

// ArtifactName returns the compiled contract to deploy for the step
func (s *DeployStep) ArtifactName() string {
	if s.Contract != "" {
		return s.Contract
	}
	return s.Name
}

// Initializer returns the proxy initializer call, or nil when there is none
func (s *DeployStep) Initializer() *MethodCall {
	if s.Proxy == nil || s.Proxy.Execute == nil {
		return nil
	}
	return s.Proxy.Execute.Init
}

// HasTag reports whether the script carries any of the given tags
func (s *DeployScript) HasTag(tags ...string) bool {
	for _, want := range tags {
		for _, tag := range s.Tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}
