package ports

import "go.trai.ch/roster/internal/core/domain"

// ConfigLoader defines the interface for loading the configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the configuration for the given working directory.
	// An explicit path, when not empty, takes precedence over discovery.
	Load(cwd, explicit string) (domain.Config, error)
}
