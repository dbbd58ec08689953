// grosctl is a small demo CLI for driving a GROS humanoid from the shell.
//
// Usage:
//
//	ROBOT_HOST=192.168.12.1 go run ./cmd/grosctl stand
//	go run ./cmd/grosctl walk 10 0.3
//	go run ./cmd/grosctl head 0 5 -10
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fftai/gros-client-go/internal/config"
	"github.com/fftai/gros-client-go/internal/log"
	"github.com/fftai/gros-client-go/pkg/robot"
	"github.com/fftai/gros-client-go/pkg/transport"
)

func main() {
	_ = godotenv.Load()
	log.Init(os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		usage()
	}

	h := robot.NewHuman(
		transport.WithHost(config.RobotHost()),
		transport.WithPort(config.RobotPort()),
		transport.WithSSL(config.RobotSSL()),
	)
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := h.Connect(ctx); err != nil {
		fatal(err)
	}

	var err error
	switch os.Args[1] {
	case "start":
		_, err = h.Start(ctx)
	case "stop":
		_, err = h.Stop(ctx)
	case "stand":
		_, err = h.Stand(ctx)
	case "walk":
		err = h.Walk(argFloat(2), argFloat(3))
	case "head":
		err = h.Head(argFloat(2), argFloat(3), argFloat(4))
	case "limits":
		ls, lerr := h.GetJointLimits(ctx)
		if lerr != nil {
			fatal(lerr)
		}
		for _, l := range ls {
			fmt.Printf("%+v\n", l)
		}
	default:
		usage()
	}
	if err != nil {
		fatal(err)
	}

	// Streaming sends are fire-and-forget; give retries a moment before
	// tearing the process down.
	time.Sleep(200 * time.Millisecond)
}

func argFloat(i int) float64 {
	if i >= len(os.Args) {
		usage()
	}
	v, err := strconv.ParseFloat(os.Args[i], 64)
	if err != nil {
		fatal(fmt.Errorf("bad numeric argument %q: %w", os.Args[i], err))
	}
	return v
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: grosctl start|stop|stand|limits|walk <angle> <speed>|head <roll> <pitch> <yaw>")
	os.Exit(2)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "grosctl:", err)
	os.Exit(1)
}
