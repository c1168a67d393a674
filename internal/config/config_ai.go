package config

// applyOperationDefaults fills unset operation fields from the global AI settings
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
}

// GetExplainConfig returns the AI configuration for recommendation explanations
// with fallback to the global AI settings
func (c *Config) GetExplainConfig() OperationAIConfig {
	config := c.AI.Explain
	c.applyOperationDefaults(&config)
	return config
}
