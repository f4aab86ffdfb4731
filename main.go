package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Flags
var (
	redirect = flag.Bool("o", false,
		"write stdout and stderr to <input>.out and <input>.log")
	plotFile = flag.String("plot", "",
		"plot S(k, ω) to this file after an xrts run")
	compress = flag.Bool("z", false,
		"also store a zstd compressed copy of the xrts run log")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		`usage: %s [flags] beam <prop.h5>
       %s [flags] xrts <run.toml>
`, os.Args[0], os.Args[0])
	flag.PrintDefaults()
}

// runBeam derives the beam parameters of the propagation output in
// filename and writes their report to w
func runBeam(w io.Writer, filename string) error {
	b, err := PropToBeamParameters(filename)
	if err != nil {
		return err
	}
	fmt.Fprint(w, b)
	return nil
}

// runXRTS performs the calculation described by conf
func runXRTS(conf Config) error {
	p := conf.Params
	if conf.Prop != "" {
		b, err := PropToBeamParameters(conf.Prop)
		if err != nil {
			return err
		}
		p.PhotonEnergy = b.PhotonEnergy()
		p.SourceSpectrumFWHM = b.BandwidthEV()
		log.Printf("beam from %s: photon energy = %.4f eV, "+
			"bandwidth = %.4e eV\n", conf.Prop, p.PhotonEnergy,
			p.SourceSpectrumFWHM)
	}
	c, err := NewXRTSCalculator(p, conf.Input, conf.Output)
	if err != nil {
		return err
	}
	c.Compress = conf.Compress
	start := time.Now()
	if err := c.Backengine(); err != nil {
		return err
	}
	log.Printf("backengine took %.1f s\n", time.Since(start).Seconds())
	if err := c.SaveH5(); err != nil {
		return err
	}
	if conf.Plot != "" {
		if err := PlotSkw(conf.Plot, c.RunData()); err != nil {
			return err
		}
		log.Printf("plotted S(k, ω) to %s\n", conf.Plot)
	}
	return nil
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd, infile := args[0], args[1]
	if *redirect {
		if err := DupOutErr(infile); err != nil {
			log.Fatalf("redirecting output: %v\n", err)
		}
	}
	host, _ := os.Hostname()
	log.Printf("running %s on host: %s\n", cmd, host)
	switch cmd {
	case "beam":
		if err := runBeam(os.Stdout, infile); err != nil {
			log.Fatal(err)
		}
	case "xrts":
		conf, err := LoadConfig(infile)
		if err != nil {
			log.Fatal(err)
		}
		if *plotFile != "" {
			conf.Plot = *plotFile
		}
		if *compress {
			conf.Compress = true
		}
		if err := runXRTS(conf); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown command %q, aborting\n", cmd)
	}
}
