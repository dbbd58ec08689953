// mockrobot serves an in-process GROS robot endpoint on the default
// control port, for developing against this client without hardware.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/fftai/gros-client-go/internal/config"
	"github.com/fftai/gros-client-go/internal/log"
	"github.com/fftai/gros-client-go/internal/mockrobot"
	"github.com/fftai/gros-client-go/pkg/motor"
)

func main() {
	_ = godotenv.Load()
	log.Init(os.Getenv("LOG_LEVEL"))

	srv := mockrobot.New(mockrobot.WithLimits([]motor.JointLimit{
		{No: "1", Orientation: "left", MinAngle: -90, MaxAngle: 90, IP: "192.168.12.31"},
		{No: "1", Orientation: "right", MinAngle: -90, MaxAngle: 90, IP: "192.168.12.32"},
		{No: "2", Orientation: "left", MinAngle: -30, MaxAngle: 30, IP: "192.168.12.33"},
		{No: "2", Orientation: "right", MinAngle: -30, MaxAngle: 30, IP: "192.168.12.34"},
	}))

	addr := fmt.Sprintf("127.0.0.1:%d", config.RobotPort())
	log.Info("mock robot listening", "addr", addr)
	if err := srv.StartAt(addr); err != nil {
		log.Error("mock robot exited", "err", err)
		os.Exit(1)
	}
}
