package main

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"
	goredis "github.com/redis/go-redis/v9"

	"github.com/robotalks/esc.go/pkg/bridge/mqtt"
	"github.com/robotalks/esc.go/pkg/config"
	"github.com/robotalks/esc.go/pkg/control"
	fx "github.com/robotalks/esc.go/pkg/framework"
	"github.com/robotalks/esc.go/pkg/joystick"
	"github.com/robotalks/esc.go/pkg/link"
	"github.com/robotalks/esc.go/pkg/monitor"
	"github.com/robotalks/esc.go/pkg/motor"
	"github.com/robotalks/esc.go/pkg/store/redis"
)

var (
	speed        float64
	start        bool
	withJoystick bool
)

func init() {
	config.SetupFlags(nil)
	flag.Float64Var(&speed, "speed", speed, "Initial target speed in Hz.")
	flag.BoolVar(&start, "start", start, "Start sending the speed command immediately.")
	flag.BoolVar(&withJoystick, "joystick", withJoystick, "Control the motor with a joystick.")
	joystick.SetupFlags()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := config.MustNewConfig()
	l, err := link.Open(conf.Transport)
	if err != nil {
		log.Fatalln(err)
	}
	defer l.Close()

	ctl, err := control.New(l, conf.NodeID())
	if err != nil {
		log.Fatalln(err)
	}
	ctl.Interval = conf.Interval
	ctl.AllNodes = conf.AllNodes
	ctl.SetSpeed(float32(speed))

	runner := fx.NewRunner().HandleSignals()
	sinks := control.MultiSink{control.SinkFunc(func(ctx context.Context, rec motor.Telemetry) {
		glog.V(1).Info(rec)
	})}

	if conf.Monitor.Addr != "" {
		mon := monitor.New(l)
		mon.WindowSize = conf.Monitor.WindowSize
		sinks = append(sinks, mon)
		runner.Go(fx.NamedRun("monitor", &monitor.Server{Addr: conf.Monitor.Addr, Monitor: mon}))
	}

	if conf.Redis.Addr != "" {
		rec, err := redis.NewRecorder(runner.Context, &goredis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err != nil {
			log.Fatalln(err)
		}
		defer rec.Close()
		rec.Channel, rec.HistoryLen = conf.Redis.Channel, conf.Redis.HistoryLen
		sinks = append(sinks, rec)
	}

	if conf.MQTT.URL != "" {
		opts, prefix, err := mqtt.ClientOptionsFromURL(conf.MQTT.URL)
		if err != nil {
			log.Fatalln(err)
		}
		if opts.ClientID == "" {
			opts.SetClientID(conf.MQTT.ClientID)
		}
		bridge := mqtt.NewBridge(mqtt.NewQueue(opts, prefix), ctl)
		sinks = append(sinks, bridge)
		runner.Go(fx.NamedRun("mqtt", bridge))
	}

	if withJoystick {
		runner.Go(fx.NamedRun("joystick", joystick.NewConfig().NewThrottle(ctl)))
	}

	ctl.Sink = sinks
	if start {
		ctl.Start()
	}
	log.Printf("controlling node %d on %s", ctl.Node(), conf.Transport)
	runner.Go(fx.NamedRun("control", ctl))
	err = runner.WaitFirst()
	if stopErr := ctl.Stop(); stopErr != nil {
		glog.Warningf("stop: %v", stopErr)
	}
	if err != nil {
		log.Fatalln(err)
	}
}
