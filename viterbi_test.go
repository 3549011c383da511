/*------------------------------------------------------------------------------
* viterbi_test.go : unit test of convolutional code and viterbi decoder
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

/* random bits terminated by 6 tail bits */
func randBits(rng *rand.Rand, n int) []uint8 {
	data := make([]uint8, n)
	for i := 0; i < n-6; i++ {
		data[i] = uint8(rng.Intn(2))
	}
	return data
}

/* ConvEncode() */
func Test_vitutest1(t *testing.T) {
	assert := assert.New(t)

	/* impulse response: g1 = 1111001, g2 = 1011011 inverted */
	sym := ConvEncode([]uint8{1, 0, 0, 0, 0, 0, 0})
	assert.Equal([]uint8{
		1, 0, 1, 1, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0}, sym)

	/* all zero input gives g1=0, inverted g2=1 */
	sym = ConvEncode(make([]uint8, 4))
	assert.Equal([]uint8{0, 1, 0, 1, 0, 1, 0, 1}, sym)
}

/* ViterbiDecode() without errors */
func Test_vitutest2(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for k := 0; k < 20; k++ {
		data := randBits(rng, E1_PART_BITS)
		dec := make([]uint8, E1_PART_BITS)
		metric := ViterbiDecode(ConvEncode(data), dec)
		assert.Equal(t, uint32(0), metric)
		assert.Equal(t, data, dec)
	}
}

/* ViterbiDecode() with spaced symbol errors */
func Test_vitutest3(t *testing.T) {
	rng := rand.New(rand.NewSource(12))

	for k := 0; k < 20; k++ {
		data := randBits(rng, E1_PART_BITS)
		sym := ConvEncode(data)
		nerr := 0
		for i := rng.Intn(10); i < len(sym); i += 25 + rng.Intn(10) {
			sym[i] ^= 1
			nerr++
		}
		dec := make([]uint8, E1_PART_BITS)
		metric := ViterbiDecode(sym, dec)
		assert.Equal(t, data, dec)
		assert.Equal(t, uint32(nerr), metric)
	}
}

/* short output buffer */
func Test_vitutest4(t *testing.T) {
	data := []uint8{1, 1, 0, 1, 0, 0, 1, 0, 1, 1}
	dec := make([]uint8, 6)
	ViterbiDecode(ConvEncode(data), dec)
	assert.Equal(t, data[:6], dec)
}
