/*------------------------------------------------------------------------------
* output.go : solution and channel status output to influxdb and prometheus
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* history : 2022/06/27 1.0  export solution to promethues and influxdb
*           2024/03/02 1.1  solution of the software receiver
*           2024/03/09 1.2  add sqlite3 solution log
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"gnsssdr"
	"strconv"
	"time"

	influxdb "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const JOBNAME = "gnsssdr_trkrcv" /* pushgateway job name */

type solOutput struct {
	runId    string
	registry *prometheus.Registry
	pos      *prometheus.GaugeVec /* latitude, longitude, height */
	tbias    prometheus.Gauge
	ns       prometheus.Gauge
	cn0      *prometheus.GaugeVec /* cn0 per channel */
	nsol     prometheus.Counter
	nfail    prometheus.Counter

	client   influxdb.Client /* nil: no influxdb output */
	writeAPI api.WriteAPI
	pushUrl  string /* "": no push */
	db       *solDb /* nil: no solution log */
}

func newSolOutput(opt *gnsssdr.TrkOpt, runId string) (*solOutput, error) {
	labels := prometheus.Labels{"run": runId}
	o := &solOutput{
		runId:    runId,
		registry: prometheus.NewRegistry(),
		pos: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gnsssdr_solution_position",
			Help:        "geodetic position of solution (deg,deg,m)",
			ConstLabels: labels,
		}, []string{"axis"}),
		tbias: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gnsssdr_solution_clock_bias_seconds",
			Help:        "receiver clock bias of solution",
			ConstLabels: labels,
		}),
		ns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gnsssdr_solution_channels",
			Help:        "number of channels used in solution",
			ConstLabels: labels,
		}),
		cn0: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gnsssdr_channel_cn0_dbhz",
			Help:        "carrier to noise density of tracking channel",
			ConstLabels: labels,
		}, []string{"sys", "prn"}),
		nsol: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gnsssdr_solutions_total",
			Help:        "number of solutions",
			ConstLabels: labels,
		}),
		nfail: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gnsssdr_solution_failures_total",
			Help:        "number of failed solutions",
			ConstLabels: labels,
		}),
		pushUrl: opt.PushUrl,
	}
	o.registry.MustRegister(o.pos, o.tbias, o.ns, o.cn0, o.nsol, o.nfail)

	if opt.SolDb != "" {
		db, err := openSolDb(opt.SolDb, runId)
		if err != nil {
			return nil, err
		}
		o.db = db
	}

	if opt.InfluxUrl != "" {
		o.client = influxdb.NewClient(opt.InfluxUrl, opt.InfluxToken)
		o.writeAPI = o.client.WriteAPI(opt.InfluxOrg, opt.InfluxBucket)
		go func(errs <-chan error) {
			for err := range errs {
				gnsssdr.Trace(2, "influxdb write error: %v\n", err)
			}
		}(o.writeAPI.Errors())
	}
	return o, nil
}

/* update channel status -----------------------------------------------------*/
func (o *solOutput) updateChannel(ch trkChannel) {
	o.cn0.WithLabelValues(sysName(ch.Sys()), strconv.Itoa(ch.Prn())).Set(ch.CN0())
}

/* output solution -------------------------------------------------------------
* args   : Solution *sol    I   solution (nil: solution failed)
*          int    ms        I   time of samples processed (ms)
*          time.Time t      I   solution time
* return : none
*-----------------------------------------------------------------------------*/
func (o *solOutput) write(sol *gnsssdr.Solution, ms int, t time.Time) {
	if sol == nil {
		o.nfail.Inc()
		return
	}
	o.nsol.Inc()
	o.pos.WithLabelValues("latitude").Set(sol.Lat)
	o.pos.WithLabelValues("longitude").Set(sol.Lon)
	o.pos.WithLabelValues("height").Set(sol.Alt)
	o.tbias.Set(sol.TBias)
	o.ns.Set(float64(sol.Ns))

	if o.db != nil {
		if err := o.db.write(sol, ms, t); err != nil {
			gnsssdr.Trace(2, "%v\n", err)
		}
	}
	if o.writeAPI == nil {
		return
	}
	p := influxdb.NewPointWithMeasurement("solution").
		AddTag("run", o.runId).
		AddField("latitude", sol.Lat).
		AddField("longitude", sol.Lon).
		AddField("height", sol.Alt).
		AddField("clock_bias", sol.TBias).
		AddField("ns", sol.Ns).
		AddField("gdop", sol.Gdop).
		SetTime(t)
	o.writeAPI.WritePoint(p)
}

/* push metrics to pushgateway -----------------------------------------------*/
func (o *solOutput) push() error {
	if o.pushUrl == "" {
		return nil
	}
	if err := push.New(o.pushUrl, JOBNAME).Gatherer(o.registry).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func (o *solOutput) close() {
	if o.db != nil {
		o.db.close()
	}
	if o.client == nil {
		return
	}
	o.writeAPI.Flush()
	o.client.Close()
}
