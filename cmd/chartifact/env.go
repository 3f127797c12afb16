package main

import "github.com/chartifact-labs/go-chartifact/internal/config"

// Environment variable names. Flags beat env vars beat the config file.
const (
	EnvWorkspace     = "CHARTIFACT_WORKSPACE"
	EnvSandboxModule = "CHARTIFACT_SANDBOX_MODULE"
	EnvHostModule    = "CHARTIFACT_HOST_MODULE"
)

// applyEnvOverrides folds environment variables into the config.
func applyEnvOverrides(cfg *config.Config, getenv func(string) string) {
	if v := getenv(EnvWorkspace); v != "" {
		cfg.Workspace = v
	}
	if v := getenv(EnvSandboxModule); v != "" {
		cfg.Runtime.SandboxModule = v
	}
	if v := getenv(EnvHostModule); v != "" {
		cfg.Runtime.HostModule = v
	}
}
