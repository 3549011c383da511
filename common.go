/*------------------------------------------------------------------------------
* common.go : receiver common functions
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] IS-GPS-200D, Navstar GPS Space Segment/Navigation User Interfaces,
*         7 March, 2006
*     [2] RTCA/DO-229C, Minimum operational performance standards for global
*         positioning system/wide area augmentation system airborne equipment,
*         November 28, 2001
*
* history : 2024/03/02 1.0  bit fields, crc, parity, geodesy and trace of the
*                           software receiver
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"fmt"
	"math"
	"math/bits"
	"os"
	"sync"
	"time"
)

const CRC24Q_POLY = 0x1864CFB /* crc-24q generator polynomial */

/* crc-24q table, one entry per leading byte */
var tbl_CRC24Q = func() (tbl [256]uint32) {
	for i := range tbl {
		crc := uint32(i) << 16
		for j := 0; j < 8; j++ {
			if crc <<= 1; crc&0x1000000 != 0 {
				crc ^= CRC24Q_POLY
			}
		}
		tbl[i] = crc & 0xFFFFFF
	}
	return
}()

/* extract unsigned/signed bits ------------------------------------------------
* args   : uint8_t *buff    I   byte data, msb first
*          int    pos       I   bit position from start of data (bits)
*          int    len       I   bit length (bits) (len<=32)
* return : extracted unsigned/signed bits
*-----------------------------------------------------------------------------*/
func GetBitU(buff []uint8, pos, len int) uint32 {
	var v uint32
	for i := pos; i < pos+len; i++ {
		v = v<<1 | uint32(buff[i/8]>>(7-i%8)&1)
	}
	return v
}

func GetBits(buff []uint8, pos, len int) int32 {
	v := GetBitU(buff, pos, len)
	if len <= 0 || len >= 32 {
		return int32(v)
	}
	return int32(v<<(32-len)) >> (32 - len)
}

/* fields split into msb and lsb parts */
func getbitu2(buff []uint8, p1, l1, p2, l2 int) uint32 {
	return GetBitU(buff, p1, l1)<<l2 | GetBitU(buff, p2, l2)
}

func getbits2(buff []uint8, p1, l1, p2, l2 int) int32 {
	return int32(getbitu2(buff, p1, l1, p2, l2))
}

/* set unsigned bits, msb first (len<=32) */
func SetBitU(buff []uint8, pos, len int, data uint32) {
	if len <= 0 || len > 32 {
		return
	}
	for i := 0; i < len; i++ {
		p := pos + i
		if data>>(len-1-i)&1 == 1 {
			buff[p/8] |= 0x80 >> (p % 8)
		} else {
			buff[p/8] &^= 0x80 >> (p % 8)
		}
	}
}

/* pack bits (one per byte) into byte data from bit position pos */
func PackBits(buff []uint8, pos int, src []uint8) {
	for i, b := range src {
		SetBitU(buff, pos+i, 1, uint32(b&1))
	}
}

/* crc-24q parity --------------------------------------------------------------
* args   : uint8_t *buff    I   data
*          int    len       I   data length (bytes)
* return : crc-24q parity
* notes  : see reference [2] A.4.3.3 Parity, also used by galileo i/nav
*-----------------------------------------------------------------------------*/
func CRC24Q(buff []uint8, len int) uint32 {
	var crc uint32
	for _, b := range buff[:len] {
		crc = crc<<8&0xFFFFFF ^ tbl_CRC24Q[crc>>16^uint32(b)]
	}
	return crc
}

/* decode navigation data word -------------------------------------------------
* check parity and strip it from a navigation data word
* args   : uint32_t word    I   D29*,D30* of previous word + D1-D30 (32 bits)
*          uint8_t *data    O   data bits D1-D24, polarity corrected (3 bytes)
*                               (nil: parity check only)
* return : status (1:ok,0:parity error)
* notes  : see reference [1] 20.3.5.2 user parity algorithm
*-----------------------------------------------------------------------------*/
func DecodeWord(word uint32, data []uint8) int {
	hamming := [6]uint32{0xBB1F3480, 0x5D8F9A40, 0xAEC7CD00, 0x5763E680, 0x6BB1F340, 0x8B7A89C0}
	var parity uint32

	Trace(5, "decodeword: word=%08x\n", word)

	if word&0x40000000 != 0 { /* D30*=1: data inverted */
		word ^= 0x3FFFFFC0
	}
	for _, h := range hamming {
		parity = parity<<1 | uint32(bits.OnesCount32(word&h)&1)
	}
	if parity != word&0x3F {
		return 0
	}
	if data != nil {
		data[0], data[1], data[2] = uint8(word>>22), uint8(word>>14), uint8(word>>6)
	}
	return 1
}

/* time difference from epoch with week rollover -------------------------------
* args   : double t         I   time of week (s)
*          double t_epoch   I   reference epoch (s)
* return : t-t_epoch wrapped into +/-302400 s
*-----------------------------------------------------------------------------*/
func TimeFromEpoch(t, t_epoch float64) float64 {
	t -= t_epoch
	if t > HWEEK_SEC {
		t -= WEEK_SEC
	} else if t < -HWEEK_SEC {
		t += WEEK_SEC
	}
	return t
}

/* transform ecef to geodetic position -----------------------------------------
* transform ecef position to geodetic position by iterating the footpoint
* args   : double x,y,z     I   ecef position (m)
* return : latitude (deg), longitude (deg), ellipsoidal height (m)
* notes  : WGS84, at most 100 iterations, 1 mm height convergence
*-----------------------------------------------------------------------------*/
func Ecef2Geo(x, y, z float64) (lat, lon, alt float64) {
	p := math.Sqrt(x*x + y*y)

	lon = 2.0 * math.Atan2(y, x+p)
	lat = math.Atan2(z, p*(1.0-E2_WGS84))
	for i := 0; i < 100; i++ {
		sinp := math.Sin(lat)
		N := RE_WGS84 / math.Sqrt(1.0-E2_WGS84*sinp*sinp)
		alt_new := p*math.Cos(lat) + (z+E2_WGS84*N*sinp)*sinp - N
		lat = math.Atan2(z+E2_WGS84*N*sinp, p)
		if math.Abs(alt_new-alt) < 1e-3 {
			alt = alt_new
			break
		}
		alt = alt_new
	}
	return lat * R2D, lon * R2D, alt
}

/* transform geodetic to ecef position -----------------------------------------
* args   : double lat,lon   I   latitude, longitude (deg)
*          double h         I   ellipsoidal height (m)
* return : ecef position (m)
*-----------------------------------------------------------------------------*/
func Geo2Ecef(lat, lon, h float64) (x, y, z float64) {
	sinp, cosp := math.Sin(lat*D2R), math.Cos(lat*D2R)
	sinl, cosl := math.Sin(lon*D2R), math.Cos(lon*D2R)
	v := RE_WGS84 / math.Sqrt(1.0-E2_WGS84*sinp*sinp)

	return (v + h) * cosp * cosl, (v + h) * cosp * sinl, (v*(1.0-E2_WGS84) + h) * sinp
}

/* debug trace ---------------------------------------------------------------*/
var tracer struct {
	sync.Mutex
	fp    *os.File
	level int
	tick  time.Time
}

/* open trace file ("": stdout) */
func TraceOpen(file string) {
	tracer.Lock()
	defer tracer.Unlock()

	tracer.fp = os.Stdout
	if file != "" {
		fp, err := os.Create(file)
		if err != nil {
			fmt.Printf("open trace file %s failed: %v\n", file, err)
			tracer.fp = nil
			return
		}
		tracer.fp = fp
	}
	tracer.tick = time.Now()
}

func TraceClose() {
	tracer.Lock()
	defer tracer.Unlock()

	if tracer.fp != nil && tracer.fp != os.Stdout {
		tracer.fp.Close()
	}
	tracer.fp = nil
}

func TraceLevel(level int) {
	tracer.Lock()
	tracer.level = level
	tracer.Unlock()
}

/* trace message at level, level<=1 also printed to stdout */
func Trace(level int, format string, v ...interface{}) {
	if level <= 1 {
		fmt.Printf(format, v...)
	}
	tracer.Lock()
	defer tracer.Unlock()
	if tracer.fp == nil || level > tracer.level {
		return
	}
	fmt.Fprintf(tracer.fp, "%d ", level)
	fmt.Fprintf(tracer.fp, format, v...)
}

/* trace message with seconds since TraceOpen */
func Tracet(level int, format string, v ...interface{}) {
	tracer.Lock()
	defer tracer.Unlock()
	if tracer.fp == nil || level > tracer.level {
		return
	}
	fmt.Fprintf(tracer.fp, "%d %9.3f: ", level, time.Since(tracer.tick).Seconds())
	fmt.Fprintf(tracer.fp, format, v...)
}
