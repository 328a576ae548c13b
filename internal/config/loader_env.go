// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Wrapper methods record every key the loader consumes.

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}
