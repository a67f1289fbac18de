package main

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/esc.go/pkg/can"
	"github.com/robotalks/esc.go/pkg/config"
	"github.com/robotalks/esc.go/pkg/control"
	fx "github.com/robotalks/esc.go/pkg/framework"
	"github.com/robotalks/esc.go/pkg/link"
	"github.com/robotalks/esc.go/pkg/motor"
)

var onlyNode uint

func init() {
	config.SetupFlags(nil)
	flag.UintVar(&onlyNode, "only", onlyNode, "Only print telemetry of this node, 0 for all.")
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

	codec := motor.DefaultCodec
	l.SetHandler(can.HandleFrameFunc(func(ctx context.Context, f can.Frame) {
		rec, ok := codec.DecodeTelemetry(f)
		if !ok {
			glog.V(2).Infof("ignored %s", f)
			return
		}
		if onlyNode != 0 && uint(rec.Node) != onlyNode {
			return
		}
		log.Printf("node %d: fault %#04x, %.2f V, %g Hz",
			rec.Node, uint16(rec.FaultBits), rec.BusVoltage, control.DisplaySpeed(rec.Speed))
	}))

	if err := fx.NewRunner().HandleSignals().Go(fx.NamedRun("link", l)).Wait(); err != nil {
		log.Fatalln(err)
	}
}
