package robot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/fftai/gros-client-go/internal/mockrobot"
	"github.com/fftai/gros-client-go/pkg/motor"
	"github.com/fftai/gros-client-go/pkg/transport"
)

func startMock(t *testing.T, opts ...mockrobot.Option) *mockrobot.Server {
	t.Helper()
	srv := mockrobot.New(opts...)
	if err := srv.Start(); err != nil {
		t.Fatalf("start mock robot: %v", err)
	}
	t.Cleanup(func() { srv.Shutdown() })
	return srv
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func decodeData(t *testing.T, env transport.Envelope, v any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("marshal envelope data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal envelope data: %v", err)
	}
}

func TestControlPlaneFacade(t *testing.T) {
	srv := startMock(t)

	h := NewHuman(transport.WithHost(srv.Host()), transport.WithPort(srv.Port()))
	defer h.Close()

	ctx := context.Background()
	for name, call := range map[string]func() (*transport.Response, error){
		"start": func() (*transport.Response, error) { return h.Start(ctx) },
		"stop":  func() (*transport.Response, error) { return h.Stop(ctx) },
		"stand": func() (*transport.Response, error) { return h.Stand(ctx) },
		"mode":  func() (*transport.Response, error) { return h.SetMode(ctx, "walk") },
	} {
		resp, err := call()
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if !resp.OK() {
			t.Errorf("%s returned code %d", name, resp.Code)
		}
	}
}

func TestGetJointLimits(t *testing.T) {
	srv := startMock(t, mockrobot.WithLimits([]motor.JointLimit{
		{No: "1", Orientation: "left", MinAngle: -10, MaxAngle: 10, IP: "x"},
	}))

	h := NewHuman(transport.WithHost(srv.Host()), transport.WithPort(srv.Port()))
	defer h.Close()

	limits, err := h.GetJointLimits(context.Background())
	if err != nil {
		t.Fatalf("GetJointLimits failed: %v", err)
	}
	if len(limits) != 1 {
		t.Fatalf("got %d limits, want 1", len(limits))
	}
	if limits[0].No != "1" || limits[0].MaxAngle != 10 {
		t.Errorf("unexpected limit record: %+v", limits[0])
	}
}

func TestWalkClampsScalars(t *testing.T) {
	srv := startMock(t)

	h := NewHuman(transport.WithHost(srv.Host()), transport.WithPort(srv.Port()))
	defer h.Close()

	if err := h.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := h.Walk(100, 5); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(srv.Received()) == 1 }) {
		t.Fatal("walk command never reached the robot")
	}
	env := srv.Received()[0]
	if env.Command != "move" {
		t.Errorf("command = %q, want move", env.Command)
	}

	var data struct {
		Angle float64 `json:"angle"`
		Speed float64 `json:"speed"`
	}
	decodeData(t, env, &data)
	if data.Angle != WalkMaxAngle {
		t.Errorf("angle = %v, want clamped to %v", data.Angle, WalkMaxAngle)
	}
	if data.Speed != WalkMaxSpeed {
		t.Errorf("speed = %v, want clamped to %v", data.Speed, WalkMaxSpeed)
	}
}

func TestHandEndpoints(t *testing.T) {
	srv := startMock(t, mockrobot.WithLimits([]motor.JointLimit{
		{No: "3", Orientation: "right", MinAngle: -10, MaxAngle: 10, IP: "x"},
	}))

	h := NewHand(transport.WithHost(srv.Host()), transport.WithPort(srv.Port()))
	defer h.Close()

	ctx := context.Background()
	if _, err := h.EnableHand(ctx); err != nil {
		t.Fatalf("EnableHand failed: %v", err)
	}

	pvc, err := h.GetMotorPVC(ctx, "3", "right")
	if err != nil {
		t.Fatalf("GetMotorPVC failed: %v", err)
	}
	if pvc.No != "3" || pvc.Orientation != "right" {
		t.Errorf("pvc identity = %s/%s, want 3/right", pvc.No, pvc.Orientation)
	}

	if err := h.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := h.CheckMotorForFlag("3", "right"); err != nil {
		t.Fatalf("CheckMotorForFlag failed: %v", err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return len(srv.Received()) == 1 }) {
		t.Fatal("check_motor_for_flag never reached the robot")
	}
	if got := srv.Received()[0].Command; got != "check_motor_for_flag" {
		t.Errorf("command = %q, want check_motor_for_flag", got)
	}

	if !waitFor(t, 2*time.Second, func() bool { return h.Limits().Ready() }) {
		t.Fatal("limit cache never populated")
	}
	if err := h.MoveMotors([]motor.JointTarget{{No: "3", Orientation: "right", Angle: 30}}); err != nil {
		t.Fatalf("MoveMotors failed: %v", err)
	}
	if !waitFor(t, 2*time.Second, func() bool { return len(srv.Received()) == 2 }) {
		t.Fatal("move_joint never reached the robot")
	}
	env := srv.Received()[1]
	if env.Command != motor.MoveJointCommand {
		t.Errorf("command = %q, want %s", env.Command, motor.MoveJointCommand)
	}
	var data struct {
		Command []motor.JointTarget `json:"command"`
	}
	decodeData(t, env, &data)
	if len(data.Command) != 1 || data.Command[0].Angle != 10 {
		t.Errorf("dispatched batch = %+v, want one target clamped to 10", data.Command)
	}
}

// End-to-end: a joint batch dispatched before the limit table arrives must
// produce zero sends, then exactly one clamped move_joint once limits land.
func TestMoveJointsEndToEnd(t *testing.T) {
	srv := startMock(t,
		mockrobot.WithLimits([]motor.JointLimit{
			{No: "1", Orientation: "left", MinAngle: -10, MaxAngle: 10, IP: "x"},
		}),
		mockrobot.WithLimitDelay(50*time.Millisecond),
	)

	mclk := clock.NewMock()
	h := NewHuman(
		transport.WithHost(srv.Host()),
		transport.WithPort(srv.Port()),
		transport.WithClock(mclk),
	)
	defer h.Close()

	if err := h.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// Dispatch before the limit fetch has completed.
	if err := h.MoveJoints([]motor.JointTarget{{No: "1", Orientation: "left", Angle: 50}}); err != nil {
		t.Fatalf("MoveJoints failed: %v", err)
	}
	if got := len(srv.Received()); got != 0 {
		t.Fatalf("%d envelopes sent before the limit cache was populated", got)
	}

	if !waitFor(t, 2*time.Second, func() bool { return h.Limits().Ready() }) {
		t.Fatal("limit cache never populated")
	}
	if got := len(srv.Received()); got != 0 {
		t.Fatalf("%d envelopes sent before the readiness gate fired", got)
	}

	// Fire the readiness gate.
	mclk.Add(motor.DefaultGateInterval)

	if !waitFor(t, 2*time.Second, func() bool { return len(srv.Received()) == 1 }) {
		t.Fatalf("want exactly one move_joint send, got %d", len(srv.Received()))
	}
	env := srv.Received()[0]
	if env.Command != motor.MoveJointCommand {
		t.Errorf("command = %q, want %s", env.Command, motor.MoveJointCommand)
	}

	var data struct {
		Command []motor.JointTarget `json:"command"`
	}
	decodeData(t, env, &data)
	if len(data.Command) != 1 {
		t.Fatalf("batch size = %d, want 1", len(data.Command))
	}
	want := motor.JointTarget{No: "1", Orientation: "left", Angle: 10}
	if data.Command[0] != want {
		t.Errorf("joint entry = %+v, want %+v", data.Command[0], want)
	}

	// No duplicate sends afterwards.
	time.Sleep(50 * time.Millisecond)
	if got := len(srv.Received()); got != 1 {
		t.Errorf("got %d sends for one dispatch, want 1", got)
	}
}

func TestEventsLifecycle(t *testing.T) {
	srv := startMock(t)

	h := NewHuman(transport.WithHost(srv.Host()), transport.WithPort(srv.Port()))
	events := h.Events()

	if err := h.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Kind != transport.EventOpen {
			t.Errorf("first event = %v, want open", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no open event after Connect")
	}

	h.Close()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == transport.EventClose {
				return
			}
		case <-deadline:
			t.Fatal("no close event after Close")
		}
	}
}
