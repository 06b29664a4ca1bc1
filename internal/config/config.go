// Package config parses the scan daemon's configuration from flags and
// WSCAND_* environment variables, flags taking precedence.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds scand's runtime configuration.
type Config struct {
	Interfaces []string
	Addr       string
	DBPath     string
	Debug      bool

	EnableActiveScanning           bool
	DisablePeriodicScan            bool
	DisableMacAddressRandomization bool
	InitialPeriodicScanInterval    time.Duration
	MaximumPeriodicScanInterval    time.Duration

	RankBandModifier5Ghz float64
}

// Load parses command line flags and WSCAND_* environment variables into
// a Config. Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	ifaceStr := getEnv("WSCAND_INTERFACE", "wlan0")
	cfg.Addr = getEnv("WSCAND_ADDR", ":8080")
	cfg.DBPath = getEnv("WSCAND_DB", "scand.db")
	cfg.EnableActiveScanning = getEnvBool("WSCAND_ACTIVE_SCAN", true)
	cfg.DisablePeriodicScan = getEnvBool("WSCAND_NO_PERIODIC", false)
	cfg.DisableMacAddressRandomization = getEnvBool("WSCAND_NO_MAC_RANDOM", false)
	initialSecs := getEnvInt("WSCAND_PERIODIC_INIT", 10)
	maxSecs := getEnvInt("WSCAND_PERIODIC_MAX", 300)
	cfg.RankBandModifier5Ghz = getEnvFloat("WSCAND_RANK_5GHZ", 1.0)

	flag.StringVar(&ifaceStr, "i", ifaceStr, "Network interface(s) to scan on (comma separated)")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Observability HTTP/WebSocket listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the known-networks SQLite database")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	flag.BoolVar(&cfg.EnableActiveScanning, "active-scan", cfg.EnableActiveScanning, "Allow active (direct-probe) scanning in addition to passive")
	flag.BoolVar(&cfg.DisablePeriodicScan, "no-periodic", cfg.DisablePeriodicScan, "Disable the periodic background scan schedule")
	flag.BoolVar(&cfg.DisableMacAddressRandomization, "no-mac-random", cfg.DisableMacAddressRandomization, "Disable source MAC randomization on active probes")
	flag.IntVar(&initialSecs, "periodic-init", initialSecs, "Initial periodic scan interval, in seconds")
	flag.IntVar(&maxSecs, "periodic-max", maxSecs, "Maximum periodic scan backoff interval, in seconds")
	flag.Float64Var(&cfg.RankBandModifier5Ghz, "rank-5ghz", cfg.RankBandModifier5Ghz, "BSS ranking modifier applied to 5GHz networks")

	flag.Parse()

	cfg.Interfaces = parseInterfaces(ifaceStr)
	cfg.InitialPeriodicScanInterval = clampSeconds(initialSecs) * time.Second
	cfg.MaximumPeriodicScanInterval = clampSeconds(maxSecs) * time.Second

	return cfg
}

// clampSeconds bounds a configured interval to nl80211's 16-bit
// scheduled-scan interval field (max 65535 seconds).
func clampSeconds(s int) time.Duration {
	if s < 1 {
		return 1
	}
	if s > 65535 {
		return 65535
	}
	return time.Duration(s)
}

func parseInterfaces(s string) []string {
	var ifaces []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ifaces = append(ifaces, trimmed)
		}
	}
	return ifaces
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
