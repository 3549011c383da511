/*------------------------------------------------------------------------------
* code_test.go : unit test of spreading code generators
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* first 10 chips of L1CA code in octal (IS-GPS-200 table 3-Ia) */
var l1ca_first10 = [MAXPRN_GPS]int{
	01440, 01620, 01710, 01744, 01133, 01455, 01131, 01454,
	01626, 01504, 01642, 01750, 01764, 01772, 01775, 01776,
	01156, 01467, 01633, 01715, 01746, 01763, 01063, 01706,
	01743, 01761, 01770, 01774, 01127, 01453, 01625, 01712}

/* random E1 code and its hexadecimal notation */
func randE1Code(rng *rand.Rand) ([]uint8, string) {
	chips := make([]uint8, E1_CODE_LEN)
	var hex strings.Builder
	for i := 0; i < E1_CODE_LEN; i += 4 {
		v := 0
		for j := 0; j < 4; j++ {
			chips[i+j] = uint8(rng.Intn(2))
			v = v<<1 | int(chips[i+j])
		}
		fmt.Fprintf(&hex, "%X", v)
	}
	return chips, hex.String()
}

/* E1 code table text of prns and the codes in it */
func testE1Table(seed int64, prns ...int) (string, map[int][2][]uint8) {
	rng := rand.New(rand.NewSource(seed))
	codes := map[int][2][]uint8{}
	var text strings.Builder

	text.WriteString("# synthetic E1 codes\n\n")
	for _, prn := range prns {
		b, hb := randE1Code(rng)
		c, hc := randE1Code(rng)
		codes[prn] = [2][]uint8{b, c}
		fmt.Fprintf(&text, "E1B %d %s\n", prn, hb)
		fmt.Fprintf(&text, "e1c %d %s\n", prn, hc)
	}
	return text.String(), codes
}

/* NewCACode() */
func Test_codeutest1(t *testing.T) {
	assert := assert.New(t)

	for prn := 1; prn <= MAXPRN_GPS; prn++ {
		code, err := NewCACode(prn, 0)
		require.NoError(t, err)
		v := 0
		for i := 0; i < 10; i++ {
			v = v<<1 | int(code.Chip())
			code.ClockChip()
		}
		assert.Equal(l1ca_first10[prn-1], v, "prn=%d", prn)
	}
	_, err := NewCACode(0, 0)
	assert.Error(err)
	_, err = NewCACode(MAXPRN_GPS+1, 0)
	assert.Error(err)
	_, err = NewCACode(1, -1)
	assert.Error(err)
}

/* L1CA code period, balance and start chip */
func Test_codeutest2(t *testing.T) {
	assert := assert.New(t)
	code, _ := NewCACode(7, 0)

	chips := make([]uint8, 2*L1CA_CODE_LEN)
	ones := 0
	for i := range chips {
		assert.Equal(i%L1CA_CODE_LEN, code.Index())
		chips[i] = code.Chip()
		if i < L1CA_CODE_LEN {
			ones += int(chips[i])
		}
		code.ClockChip()
	}
	assert.Equal(chips[:L1CA_CODE_LEN], chips[L1CA_CODE_LEN:])
	assert.Equal(512, ones)

	start, _ := NewCACode(7, 1000)
	assert.Equal(1000, start.Index())
	assert.Equal(chips[1000], start.Chip())

	wrap, _ := NewCACode(7, L1CA_CODE_LEN+5)
	assert.Equal(5, wrap.Index())
	assert.Equal(chips[5], wrap.Chip())
}

/* LoadE1Codes(),NewE1Code() */
func Test_codeutest3(t *testing.T) {
	assert := assert.New(t)
	text, codes := testE1Table(1, 1, 11, MAXPRN_GAL)

	tbl, err := LoadE1Codes(strings.NewReader(text))
	require.NoError(t, err)
	for prn, c := range codes {
		assert.Equal(c[0], tbl.B[prn-1], "prn=%d", prn)
		assert.Equal(c[1], tbl.C[prn-1], "prn=%d", prn)
	}
	assert.Nil(tbl.B[1])

	code, err := NewE1Code(tbl, 11, E1_CODE_LEN+3)
	require.NoError(t, err)
	assert.Equal(3, code.Index())
	for i := 3; i < E1_CODE_LEN+10; i++ {
		assert.Equal(codes[11][1][i%E1_CODE_LEN], code.Chip())
		assert.Equal(codes[11][0][i%E1_CODE_LEN], code.DataChip())
		code.ClockChip()
	}
	assert.Equal(10, code.Index())

	_, err = NewE1Code(tbl, 2, 0)
	assert.Error(err)
	_, err = NewE1Code(nil, 1, 0)
	assert.Error(err)
	_, err = NewE1Code(tbl, MAXPRN_GAL+1, 0)
	assert.Error(err)
	_, err = NewE1Code(tbl, 11, -4)
	assert.Error(err)
}

/* E1 code table errors */
func Test_codeutest4(t *testing.T) {
	text, _ := testE1Table(2, 3)
	lines := strings.Split(text, "\n")
	short := "E1B 1 " + strings.Repeat("A", 1022)

	for _, bad := range []string{
		lines[2],                               /* E1B without E1C */
		strings.Replace(text, "E1B", "E5a", 1), /* unknown code */
		strings.Replace(text, "E1B 3", "E1B 51", 1),
		strings.Replace(text, "E1B 3 ", "E1B 3 Z", 1),
		short,
		"E1B 1",
	} {
		_, err := LoadE1Codes(strings.NewReader(bad))
		assert.Error(t, err)
	}
}

/* LoadE1CodeFile() */
func Test_codeutest5(t *testing.T) {
	text, codes := testE1Table(3, 5)
	file := filepath.Join(t.TempDir(), "e1codes.txt")
	require.NoError(t, os.WriteFile(file, []byte(text), 0644))

	tbl, err := LoadE1CodeFile(file)
	require.NoError(t, err)
	assert.Equal(t, codes[5][1], tbl.C[4])

	_, err = LoadE1CodeFile(filepath.Join(t.TempDir(), "none.txt"))
	assert.Error(t, err)
}
