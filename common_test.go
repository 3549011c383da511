/*------------------------------------------------------------------------------
* common_test.go : unit test of receiver common functions
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* GetBitU(),GetBits(),SetBitU() */
func Test_bitutest1(t *testing.T) {
	assert := assert.New(t)
	var buff [8]uint8

	SetBitU(buff[:], 3, 13, 0x1ABC)
	assert.Equal(uint32(0x1ABC), GetBitU(buff[:], 3, 13))
	assert.Equal(uint32(0), GetBitU(buff[:], 0, 3))

	SetBitU(buff[:], 20, 8, 0xF0)
	assert.Equal(int32(-16), GetBits(buff[:], 20, 8))
	assert.Equal(uint32(0x70), GetBitU(buff[:], 21, 7))
	assert.Equal(int32(0x0F), GetBits(buff[:], 16, 8))

	SetBitU(buff[:], 32, 32, 0x80000001)
	assert.Equal(int32(math.MinInt32+1), GetBits(buff[:], 32, 32))

	/* two component fields */
	SetBitU(buff[:], 0, 8, 0x12)
	SetBitU(buff[:], 40, 24, 0x345678)
	assert.Equal(uint32(0x12345678), getbitu2(buff[:], 0, 8, 40, 24))
}

/* PackBits() */
func Test_bitutest2(t *testing.T) {
	var buff [3]uint8

	PackBits(buff[:], 4, []uint8{1, 0, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1})
	assert.Equal(t, [3]uint8{0x0B, 0x3D, 0x00}, buff)
}

/* CRC24Q() */
func Test_crcutest1(t *testing.T) {
	msg := []uint8("123456789")
	assert.Equal(t, uint32(0xCDE703), CRC24Q(msg, len(msg)))
	assert.Equal(t, uint32(0), CRC24Q(msg, 0))
}

/* TimeFromEpoch() */
func Test_timeutest1(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(100.0, TimeFromEpoch(7300.0, 7200.0))
	assert.Equal(-100.0, TimeFromEpoch(7100.0, 7200.0))
	assert.Equal(200.0, TimeFromEpoch(100.0, 604700.0))
	assert.Equal(-200.0, TimeFromEpoch(604700.0, 100.0))
}

/* Ecef2Geo() */
func Test_coordutest1(t *testing.T) {
	assert := assert.New(t)

	lat, lon, h := Ecef2Geo(-3.5173197701e+06, 4.1316679161e+06, 3.3412651227e+06)
	assert.InDelta(3.1796021375e+01, lat, 1e-7)
	assert.InDelta(1.3040799917e+02, lon, 1e-7)
	assert.InDelta(6.8863206206e+01, h, 1e-4)

	lat, lon, h = Ecef2Geo(-3.5173197701e+06, 4.1316679161e+06, -3.3412651227e+06)
	assert.InDelta(-3.1796021375e+01, lat, 1e-7)
	assert.InDelta(1.3040799917e+02, lon, 1e-7)
	assert.InDelta(6.8863206206e+01, h, 1e-4)

	lat, _, h = Ecef2Geo(0.0, 0.0, 10000000.0)
	assert.InDelta(90.0, lat, 1e-9)
	assert.InDelta(10000000.0-RE_WGS84*math.Sqrt(1.0-E2_WGS84), h, 1e-3)

	lat, lon, h = Ecef2Geo(0.0, 10000000.0, 0.0)
	assert.InDelta(0.0, lat, 1e-9)
	assert.InDelta(90.0, lon, 1e-9)
	assert.InDelta(10000000.0-RE_WGS84, h, 1e-3)
}

/* Geo2Ecef() */
func Test_coordutest2(t *testing.T) {
	assert := assert.New(t)
	for lat := -85.0; lat <= 85.0; lat += 17.0 {
		for lon := -180.0; lon < 180.0; lon += 30.0 {
			for _, h := range []float64{-10.0, 0.0, 500.0, 20000.0} {
				x, y, z := Geo2Ecef(lat, lon, h)
				lati, loni, hi := Ecef2Geo(x, y, z)
				assert.InDelta(lat, lati, 1e-7)
				assert.InDelta(lon, loni, 1e-7)
				assert.InDelta(h, hi, 1e-3)
			}
		}
	}
}

/* TraceOpen(),Trace() */
func Test_traceutest1(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.trace")

	TraceOpen(file)
	TraceLevel(3)
	Trace(3, "trace level %d\n", 3)
	Trace(4, "not written\n")
	Tracet(2, "with tick\n")
	TraceClose()
	TraceLevel(0)

	buff, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(buff)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "3 trace level 3", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2 "))
	assert.True(t, strings.HasSuffix(lines[1], "with tick"))
}
