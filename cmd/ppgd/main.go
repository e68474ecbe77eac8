package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pulseloop/ppg"
	"github.com/pulseloop/ppg/lis2dw12"
	"github.com/pulseloop/ppg/max30101"
	"github.com/pulseloop/ppg/telemetry"
)

func main() {
	configPath := flag.String("config", "ppg.yaml", "configuration file")
	flag.Parse()

	cfg, err := ppg.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	sensor, err := max30101.New(cfg.Sensor.Bus, cfg.Sensor.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer sensor.Close()
	fmt.Printf("MAX30101 rev.%d detected\n", sensor.RevID())

	temp, err := sensor.Temperature()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("die temp = %02.2f C\n", temp)

	log.Println("calibrating LED levels")
	cal, err := ppg.Calibrate(sensor)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("calibrated: red=%d ir=%d green=%d\n", cal.Red, cal.IR, cal.Green)

	if err := cfg.Apply(sensor, cal); err != nil {
		log.Fatal(err)
	}

	// The accelerometer is optional; sampling runs without it.
	var motion ppg.MotionSource
	accel, err := lis2dw12.New(cfg.Motion.Bus, cfg.Motion.Addr)
	if err != nil {
		log.Printf("no motion sensor: %v", err)
	} else {
		defer accel.Close()
		motion = accel
	}

	var report ppg.Reporter
	if cfg.Telemetry.SerialPort != "" {
		serial, err := telemetry.NewSerial(cfg.Telemetry.SerialPort, cfg.Telemetry.BaudRate)
		if err != nil {
			log.Fatal(err)
		}
		defer serial.Close()
		report = serial
	} else {
		report = telemetry.NewWriter(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := ppg.NewScheduler(sensor, motion, report)
	sched.Vitals = ppg.NewVitals()

	log.Println("sampling")
	sched.Run(ctx)
	log.Printf("stopped after %d samples (%.1f Hz)", sched.Samples(), sched.Rate())
}
