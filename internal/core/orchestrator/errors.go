package orchestrator

import "errors"

var (
	errNilRand     = errors.New("orchestrator: Config.Rand must not be nil")
	errNoEndpoints = errors.New("orchestrator: at least one endpoint is required")
)
