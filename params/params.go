package params

import "time"

const (
	ServerBodyLimit       = 1048576 // 1 MiB
	ServerIdleTimeout     = 30 * time.Second
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 10 * time.Second
	SearchDefaultLimit    = 100 // page size when the caller omits limit
	SearchMaxLimit        = 100 // hard cap regardless of requested limit
	HealthCheckServerAddr = ":3001"
	ProductionEnvName     = "production" // environment name that locks the destructive reset
)
