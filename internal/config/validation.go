package config

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if len(c.Blends) == 0 {
		warnings = append(warnings, "Configuration defines no blends")
	}
	return append(warnings, c.toValidator().ValidateAll()...)
}
