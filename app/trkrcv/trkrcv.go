/*------------------------------------------------------------------------------
* trkrcv.go : 1-bit software receiver console ap
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* options : trkrcv -k file -a file -f file [-x level][-o file][-m port][-l sec]
*
*           -k file   receiver options file
*           -a file   acquisition handoff file (yaml)
*           -f file   packed 1-bit sample file
*           -x level  debug trace level (0:off)
*           -o file   debug trace file ("": stdout)
*           -m port   port of /metrics endpoint (0:off)
*           -l sec    max length of samples to process (s) (0:all)
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package main

import (
	"flag"
	"fmt"
	"gnsssdr"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const PRGNAME = "trkrcv" /* program name */

/* help text -----------------------------------------------------------------*/
var help []string = []string{
	"",
	" usage: trkrcv -k file -a file -f file [option]...",
	"",
	" Track GPS L1CA and Galileo E1 signals in a packed 1-bit sample file and",
	" output position solutions to influxdb, prometheus and a sqlite3 log.",
	"",
	" -k file   receiver options file [defaults]",
	" -a file   acquisition handoff file (yaml)",
	" -f file   packed 1-bit sample file (8 samples per byte, lsb first)",
	" -x level  debug trace level (0:off) [0]",
	" -o file   debug trace file [stdout]",
	" -m port   port of /metrics endpoint (0:off) [0]",
	" -l sec    max length of samples to process (s) (0:all) [0]"}

func searchHelp(key string) string {
	for _, v := range help {
		if strings.Contains(v, key) {
			return v
		}
	}
	return "no surported augument"
}

/* show message --------------------------------------------------------------*/
func showmsg(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
}

/* receiver ------------------------------------------------------------------*/
type receiver struct {
	chs    []trkChannel
	solver *gnsssdr.Solver
	out    *solOutput
	fs     float64 /* sampling frequency (Hz) */
	solMs  int     /* solution interval (ms) */
	stop   chan struct{}
}

func newReceiver(chs []trkChannel, opt *gnsssdr.TrkOpt, out *solOutput) *receiver {
	rcv := &receiver{
		chs:    chs,
		solver: gnsssdr.NewSolver(),
		out:    out,
		fs:     opt.Fs,
		solMs:  int(opt.SolInterval*1000.0 + 0.5),
		stop:   make(chan struct{}),
	}
	if rcv.solMs <= 0 {
		rcv.solMs = 1000
	}
	for _, ch := range chs {
		rcv.solver.Register(ch)
	}
	return rcv
}

/* track one block of samples on all channels */
func (rcv *receiver) track(buff []uint8) {
	var wg sync.WaitGroup

	for _, ch := range rcv.chs {
		wg.Add(1)
		go func(ch trkChannel) {
			defer wg.Done()
			ch.Track(buff)
		}(ch)
	}
	wg.Wait()
}

/* solve position and output solution */
func (rcv *receiver) solve(ms int) {
	for _, ch := range rcv.chs {
		rcv.out.updateChannel(ch)
	}
	sol, err := rcv.solver.Solve()
	if err != nil {
		gnsssdr.Tracet(2, "solve: ms=%d err=%v\n", ms, err)
		rcv.out.write(nil, ms, time.Now())
	} else {
		gnsssdr.Tracet(3, "solve: ms=%d lat=%.7f lon=%.7f alt=%.2f tbias=%.9f ns=%d\n", ms,
			sol.Lat, sol.Lon, sol.Alt, sol.TBias, sol.Ns)
		showmsg("%8.3f s: %13.8f %13.8f %10.3f ns=%d\n", float64(ms)*1e-3, sol.Lat, sol.Lon, sol.Alt, sol.Ns)
		rcv.out.write(sol, ms, time.Now())
	}
	if err := rcv.out.push(); err != nil {
		gnsssdr.Trace(2, "%v\n", err)
	}
}

/* run receiver over the sample file -------------------------------------------
* args   : SampleFile *src  I   sample file
*          int    maxMs     I   max length of samples (ms) (0: all)
* return : number of blocks processed (ms)
*-----------------------------------------------------------------------------*/
func (rcv *receiver) run(src *SampleFile, maxMs int) int {
	blk := int(rcv.fs*1e-3 + 0.5)
	buff := make([]uint8, blk)
	ms := 0

	for pos := 0; pos+blk <= src.NumSamples(); pos += blk {
		select {
		case <-rcv.stop:
			return ms
		default:
		}
		src.Block(pos, buff)
		rcv.track(buff)
		ms++

		if ms%rcv.solMs == 0 {
			rcv.solve(ms)
		}
		if maxMs > 0 && ms >= maxMs {
			break
		}
	}
	return ms
}

func main() {
	var (
		optfile, handfile, sampfile, tracefile string
		trace, port                            int
		length                                 float64
		tbl                                    *gnsssdr.E1CodeTable
	)
	flag.StringVar(&optfile, "k", optfile, searchHelp("-k"))
	flag.StringVar(&handfile, "a", handfile, searchHelp("-a"))
	flag.StringVar(&sampfile, "f", sampfile, searchHelp("-f"))
	flag.IntVar(&trace, "x", trace, searchHelp("-x"))
	flag.StringVar(&tracefile, "o", tracefile, searchHelp("-o"))
	flag.IntVar(&port, "m", port, searchHelp("-m"))
	flag.Float64Var(&length, "l", length, searchHelp("-l"))

	flag.Parse()

	if flag.NFlag() < 1 || len(handfile) == 0 || len(sampfile) == 0 {
		for _, h := range help {
			fmt.Printf("%s\n", h)
		}
		return
	}

	/* load options file */
	gnsssdr.ResetTrkOpts()
	if len(optfile) > 0 && gnsssdr.LoadOpts(optfile, gnsssdr.TrkOpts) == 0 {
		fmt.Fprintf(os.Stderr, "no options file: %s. defaults used\n", optfile)
	}
	opt := gnsssdr.GetTrkOpts()
	if trace == 0 {
		trace = opt.TraceLevel
	}
	if len(tracefile) == 0 {
		tracefile = opt.Trace
	}
	if trace > 0 {
		gnsssdr.TraceOpen(tracefile)
		gnsssdr.TraceLevel(trace)
		defer gnsssdr.TraceClose()
	}

	h, err := loadHandoff(handfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", PRGNAME, err)
		os.Exit(1)
	}
	if len(opt.E1CodeFile) > 0 {
		if tbl, err = gnsssdr.LoadE1CodeFile(opt.E1CodeFile); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", PRGNAME, err)
			os.Exit(1)
		}
	}
	chs, err := newChannels(h, &opt, tbl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", PRGNAME, err)
		os.Exit(1)
	}
	src, err := OpenSampleFile(sampfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", PRGNAME, err)
		os.Exit(1)
	}
	defer src.Close()

	runId := uuid.NewString()
	out, err := newSolOutput(&opt, runId)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", PRGNAME, err)
		os.Exit(1)
	}
	defer out.close()

	if port > 0 {
		http.Handle("/metrics", promhttp.HandlerFor(out.registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil); err != nil {
				gnsssdr.Trace(1, "metrics server error: %v\n", err)
			}
		}()
	}
	rcv := newReceiver(chs, &opt, out)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		s := <-c
		gnsssdr.Trace(2, "signal: %v\n", s)
		close(rcv.stop)
	}()

	showmsg("%s: run=%s channels=%d samples=%d\n", PRGNAME, runId, len(chs), src.NumSamples())
	ms := rcv.run(src, int(length*1000.0))
	showmsg("%s: processed %.3f s\n", PRGNAME, float64(ms)*1e-3)
}
