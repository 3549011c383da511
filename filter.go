/*------------------------------------------------------------------------------
* filter.go : dll/pll/fll loop filters
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] E.D.Kaplan, C.J.Hegarty, Understanding GPS/GNSS Principles and
*         Applications, 3rd edition, 2017, table 8.23
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package gnsssdr

/* loop filter driven by a single discriminator */
type LoopFilter interface {
	Update(in, tint float64) float64
	SetBandwidth(bw float64)
}

/* loop filter driven by frequency and phase discriminators */
type AssistedLoopFilter interface {
	Update(fll, pll, tint float64) float64
	SetBandwidth(bwf, bwp float64)
}

/* new loop filter -------------------------------------------------------------
* args   : int    order     I   filter order (1,2,3)
*          double bw        I   noise bandwidth (Hz)
*          double acc0      I   initial value of the last accumulator
* return : loop filter (nil for unsupported order)
*-----------------------------------------------------------------------------*/
func NewLoopFilter(order int, bw, acc0 float64) LoopFilter {
	switch order {
	case 1:
		return NewFirstOrderFilter(bw)
	case 2:
		return NewSecondOrderFilter(bw, acc0)
	case 3:
		return NewThirdOrderFilter(bw, acc0)
	}
	return nil
}

type FirstOrderFilter struct {
	w0 float64 /* natural frequency */
}

func NewFirstOrderFilter(bw float64) *FirstOrderFilter {
	f := &FirstOrderFilter{}
	f.SetBandwidth(bw)
	return f
}

/* first order loop has no state, tint is unused */
func (f *FirstOrderFilter) Update(in, tint float64) float64 {
	return f.w0 * in
}

func (f *FirstOrderFilter) SetBandwidth(bw float64) {
	f.w0 = bw / 0.25
}

type SecondOrderFilter struct {
	w0  float64 /* natural frequency */
	w02 float64 /* squared natural frequency */
	a2  float64 /* coefficient */
	acc float64 /* accumulator */
}

func NewSecondOrderFilter(bw, acc0 float64) *SecondOrderFilter {
	f := &SecondOrderFilter{a2: 1.414, acc: acc0}
	f.SetBandwidth(bw)
	return f
}

func (f *SecondOrderFilter) Update(in, tint float64) float64 {
	acc := in*f.w02*tint + f.acc
	out := (acc+f.acc)*0.5 + f.a2*f.w0*in
	f.acc = acc
	return out
}

func (f *SecondOrderFilter) SetBandwidth(bw float64) {
	f.w0 = bw / 0.53
	f.w02 = f.w0 * f.w0
}

type ThirdOrderFilter struct {
	w0   float64 /* natural frequency */
	w02  float64 /* squared natural frequency */
	w03  float64 /* cubed natural frequency */
	a3   float64 /* coefficient */
	b3   float64 /* coefficient */
	acc1 float64 /* first accumulator */
	acc2 float64 /* second accumulator */
}

func NewThirdOrderFilter(bw, acc0 float64) *ThirdOrderFilter {
	f := &ThirdOrderFilter{a3: 1.1, b3: 2.4, acc2: acc0}
	f.SetBandwidth(bw)
	return f
}

func (f *ThirdOrderFilter) Update(in, tint float64) float64 {
	acc1 := in*f.w03*tint + f.acc1
	acc2 := ((acc1+f.acc1)*0.5+f.a3*f.w02*in)*tint + f.acc2
	out := (acc2+f.acc2)*0.5 + f.b3*f.w0*in
	f.acc1, f.acc2 = acc1, acc2
	return out
}

func (f *ThirdOrderFilter) SetBandwidth(bw float64) {
	f.w0 = bw / 0.7845
	f.w02 = f.w0 * f.w0
	f.w03 = f.w02 * f.w0
}

/* third order pll assisted by second order fll */
type FLLAssistedFilter struct {
	w0p  float64 /* pll natural frequency */
	w02p float64 /* pll squared natural frequency */
	w03p float64 /* pll cubed natural frequency */
	w0f  float64 /* fll natural frequency */
	w02f float64 /* fll squared natural frequency */
	a3   float64 /* coefficient */
	b3   float64 /* coefficient */
	a2   float64 /* coefficient */
	acc1 float64 /* first accumulator */
	acc2 float64 /* second accumulator */
}

func NewFLLAssistedFilter(bwf, bwp, acc0 float64) *FLLAssistedFilter {
	f := &FLLAssistedFilter{a3: 1.1, b3: 2.4, a2: 1.414, acc2: acc0}
	f.SetBandwidth(bwf, bwp)
	return f
}

func (f *FLLAssistedFilter) Update(fll, pll, tint float64) float64 {
	acc1 := pll*f.w03p*tint + fll*f.w02f*tint + f.acc1
	acc2 := ((acc1+f.acc1)*0.5+f.a3*f.w02p*pll+fll*f.a2*f.w0f)*tint + f.acc2
	out := (acc2+f.acc2)*0.5 + f.b3*f.w0p*pll
	f.acc1, f.acc2 = acc1, acc2
	return out
}

/* accumulators are not reset */
func (f *FLLAssistedFilter) SetBandwidth(bwf, bwp float64) {
	f.w0p = bwp / 0.7845
	f.w02p = f.w0p * f.w0p
	f.w03p = f.w02p * f.w0p
	f.w0f = bwf / 0.53
	f.w02f = f.w0f * f.w0f
}
