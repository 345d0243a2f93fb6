package bwrap

// seccompArgs returns the positional builder for c.Seccomp. The filter
// program itself is built by the caller and passed in as an already-open
// fd; this package only owns fd-passing, not filter composition.
func (c *Config) seccompArgs() FDBuilder {
	return newFile(positionalArgs[Seccomp], c.Seccomp)
}
