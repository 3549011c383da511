/*------------------------------------------------------------------------------
* solver_test.go : unit test of position solver
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* navigation source with fixed satellite position and clock */
type testSource struct {
	ready bool
	tx    float64
	dts   float64
	pos   [3]float64
}

func (s *testSource) ReadyToSolve() bool          { return s.ready }
func (s *testSource) TxTime() float64             { return s.tx }
func (s *testSource) ClockCorr(t float64) float64 { return s.dts }

func (s *testSource) SatPos(t float64) (x, y, z float64) {
	return s.pos[0], s.pos[1], s.pos[2]
}

/* channel returning a fixed source */
type testChannel struct {
	prn int
	src *testSource
}

func (ch *testChannel) Sys() int            { return SYS_GPS }
func (ch *testChannel) Prn() int            { return ch.prn }
func (ch *testChannel) Snapshot() NavSource { return ch.src }

/* sources seen from rr at time tarr, satellites around the zenith */
func testSources(rr [3]float64, tarr float64) []NavSource {
	lat, lon, _ := Ecef2Geo(rr[0], rr[1], rr[2])
	sinp, cosp := math.Sin(lat*D2R), math.Cos(lat*D2R)
	sinl, cosl := math.Sin(lon*D2R), math.Cos(lon*D2R)
	up := [3]float64{cosp * cosl, cosp * sinl, sinp}
	east := [3]float64{-sinl, cosl, 0.0}
	north := [3]float64{-sinp * cosl, -sinp * sinl, cosp}

	var srcs []NavSource
	for i, d := range [][2]float64{{0, 0}, {1, 0}, {-1, 0.2}, {0.3, 1}, {0.5, -1}, {-0.7, -0.6}} {
		var u [3]float64
		for k := 0; k < 3; k++ {
			u[k] = up[k] + d[0]*east[k] + d[1]*north[k]
		}
		m := math.Sqrt(u[0]*u[0] + u[1]*u[1] + u[2]*u[2])
		p := [3]float64{26560e3 * u[0] / m, 26560e3 * u[1] / m, 26560e3 * u[2] / m}

		/* travel time with earth rotation */
		tau := TRAVEL_T0
		for j := 0; j < 10; j++ {
			sint, cost := math.Sin(-tau*OMGE), math.Cos(-tau*OMGE)
			dx := p[0]*cost - p[1]*sint - rr[0]
			dy := p[0]*sint + p[1]*cost - rr[1]
			dz := p[2] - rr[2]
			tau = math.Sqrt(dx*dx+dy*dy+dz*dz) / CLIGHT
		}
		dts := 1e-5 * float64(i-3)
		srcs = append(srcs, &testSource{ready: true, tx: tarr - tau + dts, dts: dts, pos: p})
	}
	return srcs
}

/* SolvePos() */
func Test_solverutest1(t *testing.T) {
	assert := assert.New(t)
	var rr [3]float64
	rr[0], rr[1], rr[2] = Geo2Ecef(31.8, 130.4, 70.0)
	const tarr = 100000.0

	srcs := testSources(rr, tarr)
	sol, err := SolvePos(srcs)
	require.NoError(t, err)

	ttx := 0.0
	for _, src := range srcs {
		s := src.(*testSource)
		ttx += s.tx - s.dts
	}
	for k := 0; k < 3; k++ {
		assert.InDelta(rr[k], sol.Rr[k], 0.05)
	}
	assert.InDelta(ttx/float64(len(srcs))+TRAVEL_T0-tarr, sol.TBias, 1e-10)
	assert.InDelta(31.8, sol.Lat, 1e-7)
	assert.InDelta(130.4, sol.Lon, 1e-7)
	assert.InDelta(70.0, sol.Alt, 0.05)
	assert.Equal(6, sol.Ns)
	assert.LessOrEqual(sol.Iter, MAXITR)
	assert.Greater(sol.Gdop, sol.Pdop)
	assert.Greater(sol.Pdop, 0.0)
}

/* SolvePos() errors */
func Test_solverutest2(t *testing.T) {
	var rr [3]float64
	rr[0], rr[1], rr[2] = Geo2Ecef(-33.9, 151.2, 20.0)

	_, err := SolvePos(testSources(rr, 5000.0)[:3])
	assert.ErrorIs(t, err, ErrTooFewChannels)
	_, err = SolvePos(nil)
	assert.ErrorIs(t, err, ErrTooFewChannels)

	/* satellites on the z-axis leave x,y unobservable */
	var srcs []NavSource
	for _, z := range []float64{2.6e7, -2.6e7, 2.7e7, -2.7e7} {
		srcs = append(srcs, &testSource{ready: true, tx: 5000.0, pos: [3]float64{0.0, 0.0, z}})
	}
	_, err = SolvePos(srcs)
	assert.ErrorIs(t, err, ErrSingular)
}

/* Solver.Register(),Solver.Solve() */
func Test_solverutest3(t *testing.T) {
	assert := assert.New(t)
	var rr [3]float64
	rr[0], rr[1], rr[2] = Geo2Ecef(48.1, 11.6, 520.0)

	solver := NewSolver()
	_, err := solver.Solve()
	assert.ErrorIs(err, ErrTooFewChannels)

	for i, src := range testSources(rr, 200000.0) {
		solver.Register(&testChannel{prn: i + 1, src: src.(*testSource)})
	}
	solver.Register(&testChannel{prn: 20, src: &testSource{tx: 1.0, pos: [3]float64{1.0, 0.0, 0.0}}})
	assert.Equal(7, solver.NumChannels())

	sol, err := solver.Solve()
	require.NoError(t, err)
	assert.Equal(6, sol.Ns)
	for k := 0; k < 3; k++ {
		assert.InDelta(rr[k], sol.Rr[k], 0.05)
	}
}
