// Package config provides configuration helpers for gros-client-go commands.
package config

import (
	"os"
	"strconv"
)

// Default robot endpoint.
const (
	DefaultRobotHost = "127.0.0.1"
	DefaultRobotPort = 8001
)

// RobotHost returns the robot host from the ROBOT_HOST env var.
// Falls back to the default loopback address if not set.
func RobotHost() string {
	if host := os.Getenv("ROBOT_HOST"); host != "" {
		return host
	}
	return DefaultRobotHost
}

// RobotPort returns the robot port from the ROBOT_PORT env var.
// Falls back to the default control port if not set or unparsable.
func RobotPort() int {
	if raw := os.Getenv("ROBOT_PORT"); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			return port
		}
	}
	return DefaultRobotPort
}

// RobotSSL reports whether ROBOT_SSL requests TLS for both channels.
func RobotSSL() bool {
	ssl, _ := strconv.ParseBool(os.Getenv("ROBOT_SSL"))
	return ssl
}
