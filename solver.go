/*------------------------------------------------------------------------------
* solver.go : single point positioning from tracking channels
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] E.D.Kaplan, C.J.Hegarty, Understanding GPS/GNSS Principles and
*         Applications, 3rd edition, 2017, 11.2
*
* history : 2024/03/02 1.0  new
*           2024/06/08 1.1  add dop, use gonum for normal equation
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

const (
	MAXITR    = 20    /* max number of iteration for point pos */
	CONV_POS  = 1.0   /* position correction to stop iteration (m) */
	TRAVEL_T0 = 0.075 /* initial signal travel time (s) */
	MINSAT    = 4     /* min number of channels for a solution */
	NX        = 4     /* number of estimated states (x,y,z,clock) */
)

var (
	ErrTooFewChannels = errors.New("solver: too few channels ready")
	ErrNoConvergence  = errors.New("solver: iteration did not converge")
	ErrSingular       = errors.New("solver: singular normal matrix")
)

/* position solver polling registered channels */
type Solver struct {
	lock     sync.Mutex
	channels []Channel
}

func NewSolver() *Solver {
	return &Solver{}
}

/* register tracking channel -------------------------------------------------*/
func (s *Solver) Register(ch Channel) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.channels = append(s.channels, ch)
}

/* number of registered channels */
func (s *Solver) NumChannels() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.channels)
}

/* solve position --------------------------------------------------------------
* snapshot ready channels and estimate receiver position and clock bias
* args   : none
* return : solution or error (ErrTooFewChannels, ErrNoConvergence, ErrSingular)
*-----------------------------------------------------------------------------*/
func (s *Solver) Solve() (*Solution, error) {
	s.lock.Lock()
	var srcs []NavSource
	for _, ch := range s.channels {
		if src := ch.Snapshot(); src.ReadyToSolve() {
			srcs = append(srcs, src)
		}
	}
	s.lock.Unlock()

	return SolvePos(srcs)
}

/* solve position from navigation sources --------------------------------------
* weighted gauss-newton estimation of receiver position and clock bias
* args   : NavSource *srcs  I   ready navigation sources (snapshots)
* return : solution or error
* notes  : satellite positions are rotated by the earth rotation during signal
*          travel. clock bias is estimated in m internally.
*-----------------------------------------------------------------------------*/
func SolvePos(srcs []NavSource) (*Solution, error) {
	n := len(srcs)

	Trace(4, "solvepos: n=%d\n", n)

	if n < MINSAT {
		return nil, ErrTooFewChannels
	}
	ttx := make([]float64, n)
	rs := make([]float64, 3*n)
	w := make([]float64, n)
	tpc := 0.0

	for i, src := range srcs {
		ttx[i] = src.TxTime()
		ttx[i] -= src.ClockCorr(ttx[i])
		rs[3*i], rs[3*i+1], rs[3*i+2] = src.SatPos(ttx[i])
		w[i] = 1.0
		tpc += ttx[i]
	}
	tpc = tpc/float64(n) + TRAVEL_T0

	var (
		x         [NX]float64 /* x,y,z (m), clock bias (m) */
		JtW, N, Q mat.Dense
		JtWv, dx  mat.VecDense
	)
	H := mat.NewDense(n, NX, nil)
	v := mat.NewVecDense(n, nil)
	W := mat.NewDiagDense(n, w)

	for iter := 0; iter < MAXITR; iter++ {
		trx := tpc - x[3]/CLIGHT

		for j := 0; j < n; j++ {
			theta := (ttx[j] - trx) * OMGE
			sint, cost := math.Sin(theta), math.Cos(theta)
			xs := rs[3*j]*cost - rs[3*j+1]*sint
			ys := rs[3*j]*sint + rs[3*j+1]*cost
			zs := rs[3*j+2]

			e := [3]float64{x[0] - xs, x[1] - ys, x[2] - zs}
			r := math.Sqrt(e[0]*e[0] + e[1]*e[1] + e[2]*e[2])

			v.SetVec(j, CLIGHT*(trx-ttx[j])-r)
			H.SetRow(j, []float64{e[0] / r, e[1] / r, e[2] / r, 1.0})
		}
		/* dx=(H'*W*H)^-1*H'*W*v */
		JtW.Mul(H.T(), W)
		N.Mul(&JtW, H)
		if err := Q.Inverse(&N); err != nil {
			Trace(2, "solvepos: inverse error iter=%d err=%v\n", iter, err)
			return nil, ErrSingular
		}
		JtWv.MulVec(&JtW, v)
		dx.MulVec(&Q, &JtWv)

		for k := 0; k < NX; k++ {
			x[k] += dx.AtVec(k)
		}
		Trace(5, "solvepos: iter=%d dx=%.3f %.3f %.3f %.3f\n", iter, dx.AtVec(0), dx.AtVec(1),
			dx.AtVec(2), dx.AtVec(3))

		if math.Sqrt(dx.AtVec(0)*dx.AtVec(0)+dx.AtVec(1)*dx.AtVec(1)+dx.AtVec(2)*dx.AtVec(2)) < CONV_POS {
			sol := &Solution{
				TBias: x[3] / CLIGHT,
				Rr:    [3]float64{x[0], x[1], x[2]},
				Ns:    n,
				Iter:  iter + 1,
			}
			sol.Lat, sol.Lon, sol.Alt = Ecef2Geo(x[0], x[1], x[2])
			sol.Gdop, sol.Pdop = dops(H)

			Trace(3, "solvepos: lat=%.6f lon=%.6f alt=%.1f tbias=%.9f ns=%d iter=%d\n",
				sol.Lat, sol.Lon, sol.Alt, sol.TBias, n, iter+1)
			return sol, nil
		}
	}
	Trace(2, "solvepos: no convergence n=%d\n", n)
	return nil, ErrNoConvergence
}

/* geometric and position dop from design matrix */
func dops(H *mat.Dense) (gdop, pdop float64) {
	var HtH, Q mat.Dense

	HtH.Mul(H.T(), H)
	if err := Q.Inverse(&HtH); err != nil {
		return 0.0, 0.0
	}
	gdop = math.Sqrt(Q.At(0, 0) + Q.At(1, 1) + Q.At(2, 2) + Q.At(3, 3))
	pdop = math.Sqrt(Q.At(0, 0) + Q.At(1, 1) + Q.At(2, 2))
	return
}
