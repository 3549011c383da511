/*------------------------------------------------------------------------------
* filter_test.go : unit test of loop filters
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/* NewLoopFilter() */
func Test_filterutest1(t *testing.T) {
	assert := assert.New(t)

	assert.IsType(&FirstOrderFilter{}, NewLoopFilter(1, 10.0, 0.0))
	assert.IsType(&SecondOrderFilter{}, NewLoopFilter(2, 10.0, 0.0))
	assert.IsType(&ThirdOrderFilter{}, NewLoopFilter(3, 10.0, 0.0))
	assert.Nil(NewLoopFilter(0, 10.0, 0.0))
	assert.Nil(NewLoopFilter(4, 10.0, 0.0))
}

/* zero input holds the initial accumulator */
func Test_filterutest2(t *testing.T) {
	assert := assert.New(t)
	f2 := NewSecondOrderFilter(2.0, 1234.5)
	f3 := NewThirdOrderFilter(18.0, -500.0)
	fa := NewFLLAssistedFilter(35.0, 35.0, 250.0)

	for i := 0; i < 100; i++ {
		assert.Equal(1234.5, f2.Update(0.0, 0.001))
		assert.Equal(-500.0, f3.Update(0.0, 0.001))
		assert.Equal(250.0, fa.Update(0.0, 0.0, 0.004))
	}
	f2.SetBandwidth(10.0)
	fa.SetBandwidth(25.0, 25.0)
	assert.Equal(1234.5, f2.Update(0.0, 0.001))
	assert.Equal(250.0, fa.Update(0.0, 0.0, 0.004))
}

/* first and second order response to a step */
func Test_filterutest3(t *testing.T) {
	assert := assert.New(t)
	f1 := NewFirstOrderFilter(5.0)
	assert.InDelta(20.0*0.1, f1.Update(0.1, 0.001), 1e-12)

	f2 := NewSecondOrderFilter(5.3, 0.0)
	w0 := 5.3 / 0.53
	out := f2.Update(0.1, 0.001)
	assert.InDelta(0.1*w0*w0*0.001*0.5+1.414*w0*0.1, out, 1e-12)

	/* integrator ramps with constant error */
	prev := out
	for i := 0; i < 10; i++ {
		out = f2.Update(0.1, 0.001)
		assert.InDelta(0.1*w0*w0*0.001, out-prev, 1e-9)
		prev = out
	}
}

/* closed phase loop converges to a frequency offset */
func Test_filterutest4(t *testing.T) {
	const tint = 0.001
	for order := 2; order <= 3; order++ {
		f := NewLoopFilter(order, 20.0, 0.0)
		phase, freq, fout := 0.0, 25.0, 0.0 /* cycle, Hz, Hz */

		for i := 0; i < 5000; i++ {
			phase += (freq - fout) * tint
			fout = f.Update(phase, tint)
		}
		assert.InDelta(t, freq, fout, 0.01, "order=%d", order)
		assert.InDelta(t, 0.0, phase, 1e-3, "order=%d", order)
	}
}
