package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables that override the config file
const (
	EnvAPIKey          = "WMATA_API_KEY"
	EnvStation         = "METRO_STATION"
	EnvRefreshInterval = "METRO_REFRESH_INTERVAL"
	EnvPageDisplayTime = "METRO_PAGE_DISPLAY_TIME"
	EnvLayout          = "METRO_LAYOUT"
	EnvScrollSpeed     = "METRO_SCROLL_SPEED"
	EnvSink            = "METRO_SINK"
	EnvCacheBackend    = "METRO_CACHE_BACKEND"
	EnvCacheTTL        = "METRO_CACHE_TTL"
	EnvRedisAddr       = "METRO_REDIS_ADDR"
	EnvRedisPassword   = "METRO_REDIS_PASSWORD"
	EnvLogLevel        = "METRO_LOG_LEVEL"
	EnvLogFormat       = "METRO_LOG_FORMAT"
	EnvHTTPAddr        = "METRO_HTTP_ADDR"
)

func (c *Config) applyEnv() {
	c.APIKey = getEnv(EnvAPIKey, c.APIKey)
	c.Station = getEnv(EnvStation, c.Station)
	c.RefreshInterval = getIntEnv(EnvRefreshInterval, c.RefreshInterval)
	c.PageDisplayTime = getIntEnv(EnvPageDisplayTime, c.PageDisplayTime)
	c.Layout = getEnv(EnvLayout, c.Layout)
	c.DisplayOptions.ScrollSpeed = getIntEnv(EnvScrollSpeed, c.DisplayOptions.ScrollSpeed)
	c.Display.Sink = getEnv(EnvSink, c.Display.Sink)
	c.Cache.Backend = getEnv(EnvCacheBackend, c.Cache.Backend)
	c.Cache.TTL = getDurationEnv(EnvCacheTTL, c.Cache.TTL)
	c.Cache.RedisAddr = getEnv(EnvRedisAddr, c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv(EnvRedisPassword, c.Cache.RedisPassword)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Log.Format = getEnv(EnvLogFormat, c.Log.Format)
	c.Server.Addr = getEnv(EnvHTTPAddr, c.Server.Addr)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
