package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/robotalks/esc.go/pkg/config"
	fx "github.com/robotalks/esc.go/pkg/framework"
	"github.com/robotalks/esc.go/pkg/link"
	"github.com/robotalks/esc.go/pkg/motor"
)

var (
	count  = 10
	period = 200 * time.Millisecond
)

func init() {
	config.SetupFlags(nil)
	flag.IntVar(&count, "count", count, "Times to send a speed command.")
	flag.DurationVar(&period, "period", period, "Period between speed commands.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: esccmd [flags] speed HZ|stop|reset\n")
		flag.PrintDefaults()
	}
}

func parseCommand(args []string) (motor.Command, error) {
	if len(args) == 0 {
		return motor.Command{}, fmt.Errorf("command expected")
	}
	switch args[0] {
	case "speed":
		if len(args) < 2 {
			return motor.Command{}, fmt.Errorf("HZ required")
		}
		hz, err := strconv.ParseFloat(args[1], 32)
		if err != nil {
			return motor.Command{}, fmt.Errorf("invalid HZ: %w", err)
		}
		return motor.SpeedControl(float32(hz)), nil
	case "stop":
		return motor.Stop(), nil
	case "reset":
		return motor.Reset(), nil
	}
	return motor.Command{}, fmt.Errorf("unknown command %q", args[0])
}

// run sends cmd, or repeats a speed command and then stops, and closes the
// link before returning.
func run(conf *config.Config, cmd motor.Command) (err error) {
	l, err := link.Open(conf.Transport)
	if err != nil {
		return err
	}
	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("link", l))
	defer func() {
		runner.Cancel()
		runner.Wait()
		if closeErr := l.Close(); err == nil {
			err = closeErr
		}
	}()

	codec, node := motor.DefaultCodec, conf.NodeID()
	send := func(cmd motor.Command) error {
		if err := l.Send(codec.CommandFrame(node, cmd)); err != nil {
			return err
		}
		log.Printf("node %d: %s", node, cmd)
		return nil
	}

	if cmd.Code == motor.CodeSpeedControl {
		// the device stops the motor once speed commands stop coming
		ticker := time.NewTicker(period)
		defer ticker.Stop()
	loop:
		for i := 0; i < count; i++ {
			if err := send(cmd); err != nil {
				// still try to stop the motor
				send(motor.Stop())
				return err
			}
			select {
			case <-ticker.C:
			case <-runner.Context.Done():
				break loop
			}
		}
		cmd = motor.Stop()
	}
	return send(cmd)
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := config.MustNewConfig()
	cmd, err := parseCommand(flag.Args())
	if err != nil {
		flag.Usage()
		log.Fatalln(err)
	}
	if err := run(conf, cmd); err != nil {
		log.Fatalln(err)
	}
}
