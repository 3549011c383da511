/*------------------------------------------------------------------------------
* trkcmn.go : tracking channel common functions
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] M.S.Sharawi, D.M.Akos, D.N.Aloi, GPS C/N0 estimation in the presence
*         of interference and limited quantization levels, IEEE Transactions
*         on Aerospace and Electronic Systems, 2007
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package gnsssdr

import "math"

/* 1-bit local oscillator indexed by carrier phase quadrant */
var (
	carr_sin = [4]uint8{1, 1, 0, 0}
	carr_cos = [4]uint8{1, 0, 0, 1}
)

/* correlate one chip: 1 -> +1, 0 -> -1 */
func corr(b uint8) int {
	return int(b&1)<<1 - 1
}

/* prompt correlator ring buffer for cn0 estimation */
type promptBuffer struct {
	i, q [PROMPT_LEN]float64
	idx  int /* next write position */
	n    int /* number of filled entries */
}

func (b *promptBuffer) push(i, q int) {
	b.i[b.idx] = float64(i)
	b.q[b.idx] = float64(q)
	b.idx = (b.idx + 1) % PROMPT_LEN
	if b.n < PROMPT_LEN {
		b.n++
	}
}

func (b *promptBuffer) full() bool {
	return b.n == PROMPT_LEN
}

/* entry pushed k epochs before the latest one (k=0: latest) */
func (b *promptBuffer) prev(k int) (i, q float64) {
	j := (b.idx - 1 - k + 2*PROMPT_LEN) % PROMPT_LEN
	return b.i[j], b.q[j]
}

func (b *promptBuffer) cn0(tint float64) float64 {
	return CN0SNV(b.i[:b.n], b.q[:b.n], tint)
}

/* cn0 estimation by signal-to-noise variance ----------------------------------
* args   : double *ib,*qb   I   prompt correlator outputs (I,Q)
*          double tint      I   coherent integration time (s)
* return : cn0 (dB-Hz), 0 for less than 2 entries, MAXCN0 with no noise
* notes  : see reference [1]
*-----------------------------------------------------------------------------*/
func CN0SNV(ib, qb []float64, tint float64) float64 {
	var sumi, sump float64
	n := len(ib)

	if n < 2 || len(qb) < n {
		return 0.0
	}
	for k := 0; k < n; k++ {
		sumi += math.Abs(ib[k])
		sump += ib[k]*ib[k] + qb[k]*qb[k]
	}
	psig := sumi / float64(n)
	psig *= psig
	ptot := sump / float64(n)
	if ptot-psig <= 0.0 {
		return MAXCN0
	}
	return 10.0*math.Log10(psig/(ptot-psig)) - 10.0*math.Log10(tint)
}

/* unwrap atan phase difference into +/-pi/2 */
func phaseUnwrap(x float64) float64 {
	if x > PI/2.0 {
		return x - PI
	}
	if x < -PI/2.0 {
		return x + PI
	}
	return x
}

/* code offset of an acquisition handoff in [0,n) chips */
func validCodeOff(off float64, n int) bool {
	return !math.IsNaN(off) && off >= 0.0 && off < float64(n)
}

/* very early, prompt and very late power window for bump-jump */
type powerWindow struct {
	ve, p, vl          [VEL_LEN]float64
	sumve, sump, sumvl float64
	idx, n             int
}

func (w *powerWindow) push(ve, p, vl float64) {
	w.sumve += ve - w.ve[w.idx]
	w.sump += p - w.p[w.idx]
	w.sumvl += vl - w.vl[w.idx]
	w.ve[w.idx], w.p[w.idx], w.vl[w.idx] = ve, p, vl
	w.idx = (w.idx + 1) % VEL_LEN
	if w.n < VEL_LEN {
		w.n++
	}
}

/* fixed capacity bit queue, O(1) push back and pop front */
type bitQueue struct {
	buf  []uint8
	head int
	n    int
}

func newBitQueue(size int) *bitQueue {
	return &bitQueue{buf: make([]uint8, size)}
}

/* push bit, the oldest bit is dropped when full */
func (q *bitQueue) push(b uint8) {
	if q.n == len(q.buf) {
		q.pop(1)
	}
	q.buf[(q.head+q.n)%len(q.buf)] = b & 1
	q.n++
}

func (q *bitQueue) pop(n int) {
	if n > q.n {
		n = q.n
	}
	q.head = (q.head + n) % len(q.buf)
	q.n -= n
}

func (q *bitQueue) at(i int) uint8 {
	return q.buf[(q.head+i)%len(q.buf)]
}

func (q *bitQueue) len() int {
	return q.n
}

func (q *bitQueue) full() bool {
	return q.n == len(q.buf)
}

func (q *bitQueue) reset() {
	q.head, q.n = 0, 0
}

/* match bits from position pos against pattern, inverted if inv=1 */
func (q *bitQueue) match(pos int, pattern []uint8, inv uint8) bool {
	for i, b := range pattern {
		if q.at(pos+i) != b^inv {
			return false
		}
	}
	return true
}
