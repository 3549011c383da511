/*------------------------------------------------------------------------------
* ephemeris.go : broadcast ephemeris decoding and satellite position/clock
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] IS-GPS-200D, Navstar GPS Space Segment/Navigation User Interfaces,
*         7 March, 2006, 20.3.3 and 20.3.4
*     [2] European GNSS (Galileo) Open Service Signal In Space Interface Control
*         Document, Issue 2.0, January 2021, 5.1 and 4.3.5
*
* history : 2022/05/31 1.0  new
*           2024/03/02 1.1  decode from tracked subframe/page bits
*-----------------------------------------------------------------------------*/
package gnsssdr

import "math"

/* broadcast ephemeris of a tracking channel */
type Ephemeris interface {
	Valid() bool
	SatPos(t float64) (x, y, z float64)
	ClockCorr(t float64) float64
}

type keplerOrbit struct { /* keplerian elements (scaled) */
	mu       float64 /* gravitational constant */
	Toe      float64 /* reference time of ephemeris (s in week) */
	RootA    float64 /* square root of semi-major axis (m^0.5) */
	E        float64 /* eccentricity */
	M0       float64 /* mean anomaly at reference time (rad) */
	Deln     float64 /* mean motion difference (rad/s) */
	Omg      float64 /* argument of perigee (rad) */
	I0       float64 /* inclination angle at reference time (rad) */
	OMG0     float64 /* longitude of ascending node (rad) */
	OMGd     float64 /* rate of right ascension (rad/s) */
	Idot     float64 /* rate of inclination angle (rad/s) */
	Cuc, Cus float64 /* argument of latitude correction (rad) */
	Crc, Crs float64 /* orbit radius correction (m) */
	Cic, Cis float64 /* inclination correction (rad) */
}

/* solve Kepler's equation -----------------------------------------------------
* solve E=M+e*sin(E) by fixed-point iteration
* args   : double M         I   mean anomaly (rad)
*          double e         I   eccentricity
* return : eccentric anomaly (rad)
*-----------------------------------------------------------------------------*/
func EccentricAnomaly(M, e float64) float64 {
	E := M
	for n := 0; n < MAX_ITER_KEPLER; n++ {
		Ek := M + e*math.Sin(E)
		if math.Abs(Ek-E) < RTOL_KEPLER {
			return Ek
		}
		E = Ek
	}
	Trace(2, "kepler iteration overflow: M=%.3f e=%.6f\n", M, e)
	return E
}

func (o *keplerOrbit) eccentricAnomaly(tk float64) float64 {
	A := o.RootA * o.RootA
	if A <= 0.0 {
		return 0.0
	}
	n := math.Sqrt(o.mu/(A*A*A)) + o.Deln
	return EccentricAnomaly(o.M0+n*tk, o.E)
}

/* satellite position by keplerian elements (ecef) */
func (o *keplerOrbit) satPos(t float64) (x, y, z float64) {
	A := o.RootA * o.RootA
	tk := TimeFromEpoch(t, o.Toe)
	E := o.eccentricAnomaly(tk)
	sinE, cosE := math.Sin(E), math.Cos(E)

	phi := math.Atan2(math.Sqrt(1.0-o.E*o.E)*sinE, cosE-o.E) + o.Omg
	sin2p, cos2p := math.Sin(2.0*phi), math.Cos(2.0*phi)
	u := phi + o.Cus*sin2p + o.Cuc*cos2p
	r := A*(1.0-o.E*cosE) + o.Crs*sin2p + o.Crc*cos2p
	i := o.I0 + o.Cis*sin2p + o.Cic*cos2p + o.Idot*tk
	O := o.OMG0 + (o.OMGd-OMGE)*tk - OMGE*o.Toe

	xk, yk := r*math.Cos(u), r*math.Sin(u)
	sinO, cosO, cosi := math.Sin(O), math.Cos(O), math.Cos(i)
	x = xk*cosO - yk*cosi*sinO
	y = xk*sinO + yk*cosi*cosO
	z = yk * math.Sin(i)
	return
}

/* relativistic clock correction (s) */
func (o *keplerOrbit) relCorr(t float64) float64 {
	E := o.eccentricAnomaly(TimeFromEpoch(t, o.Toe))
	return F_REL * o.E * o.RootA * math.Sin(E)
}

/* GPS L1CA ephemeris ----------------------------------------------------------*/
type EphL1CA struct {
	keplerOrbit
	Sva, Svh   int        /* sv accuracy (ura index), sv health */
	Toc        float64    /* clock reference time (s in week) */
	F0, F1, F2 float64    /* sv clock parameters (af0,af1,af2) */
	Tgd        float64    /* group delay parameter (s) */
	Alpha      [4]float64 /* klobuchar alpha (subframe 4 page 18) */
	Beta       [4]float64 /* klobuchar beta (subframe 4 page 18) */
	received   uint8      /* received subframes (bit n-1: subframe n) */
}

func NewEphL1CA() *EphL1CA {
	return &EphL1CA{keplerOrbit: keplerOrbit{mu: MU_GPS}}
}

/* process subframe ------------------------------------------------------------
* decode ephemeris from a polarity corrected subframe
* args   : uint8_t *buff    I   subframe bits (300 bits incl. parity, packed)
* return : subframe id (0: error)
*-----------------------------------------------------------------------------*/
func (eph *EphL1CA) ProcessSubframe(buff []uint8) int {
	id := int(GetBitU(buff, 49, 3))

	Trace(4, "ephl1ca process subframe: id=%d\n", id)

	switch id {
	case 1:
		eph.Sva = int(GetBitU(buff, 72, 4))
		eph.Svh = int(GetBitU(buff, 76, 6))
		eph.Tgd = float64(GetBits(buff, 196, 8)) * P2_31
		eph.Toc = float64(GetBitU(buff, 218, 16)) * 16.0
		eph.F2 = float64(GetBits(buff, 240, 8)) * P2_55
		eph.F1 = float64(GetBits(buff, 248, 16)) * P2_43
		eph.F0 = float64(GetBits(buff, 270, 22)) * P2_31
	case 2:
		eph.Crs = float64(GetBits(buff, 68, 16)) * P2_5
		eph.Deln = float64(GetBits(buff, 90, 16)) * P2_43 * PI
		eph.M0 = float64(getbits2(buff, 106, 8, 120, 24)) * P2_31 * PI
		eph.Cuc = float64(GetBits(buff, 150, 16)) * P2_29
		eph.E = float64(getbitu2(buff, 166, 8, 180, 24)) * P2_33
		eph.Cus = float64(GetBits(buff, 210, 16)) * P2_29
		eph.RootA = float64(getbitu2(buff, 226, 8, 240, 24)) * P2_19
		eph.Toe = float64(GetBitU(buff, 270, 16)) * 16.0
	case 3:
		eph.Cic = float64(GetBits(buff, 60, 16)) * P2_29
		eph.OMG0 = float64(getbits2(buff, 76, 8, 90, 24)) * P2_31 * PI
		eph.Cis = float64(GetBits(buff, 120, 16)) * P2_29
		eph.I0 = float64(getbits2(buff, 136, 8, 150, 24)) * P2_31 * PI
		eph.Crc = float64(GetBits(buff, 180, 16)) * P2_5
		eph.Omg = float64(getbits2(buff, 196, 8, 210, 24)) * P2_31 * PI
		eph.OMGd = float64(GetBits(buff, 240, 24)) * P2_43 * PI
		eph.Idot = float64(GetBits(buff, 278, 14)) * P2_43 * PI
	case 4:
		if GetBitU(buff, 62, 6) != 56 { /* page 18 */
			return id
		}
		for i, pos := range [8]int{68, 76, 90, 98, 106, 120, 128, 136} {
			v := float64(GetBits(buff, pos, 8))
			if i < 4 {
				eph.Alpha[i] = v * alphaScale[i]
			} else {
				eph.Beta[i-4] = v * betaScale[i-4]
			}
		}
	case 5:
		return id
	default:
		Trace(2, "ephl1ca: invalid subframe id=%d\n", id)
		return 0
	}
	eph.received |= 1 << (id - 1)
	return id
}

var (
	alphaScale = [4]float64{P2_30, P2_27, P2_24, P2_24}
	betaScale  = [4]float64{2048.0, 16384.0, 65536.0, 65536.0}
)

/* subframes 1-3 received */
func (eph *EphL1CA) Valid() bool {
	return eph.received&0x07 == 0x07
}

func (eph *EphL1CA) SatPos(t float64) (x, y, z float64) {
	return eph.satPos(t)
}

/* satellite clock correction (s), including relativity and tgd */
func (eph *EphL1CA) ClockCorr(t float64) float64 {
	dt := TimeFromEpoch(t, eph.Toc)
	return eph.F0 + eph.F1*dt + eph.F2*dt*dt + eph.relCorr(t) - eph.Tgd
}

/* Galileo E1B I/NAV ephemeris -------------------------------------------------*/
type EphE1B struct {
	keplerOrbit
	Toc        float64    /* clock reference time (s in week) */
	F0, F1, F2 float64    /* sv clock parameters (af0,af1,af2) */
	Bgd        float64    /* E1-E5b broadcast group delay (s) */
	Ai         [3]float64 /* NeQuick effective ionisation level ai0,ai1,ai2 */
	Svh        int        /* E1B signal health status */
	Dvs        int        /* E1B data validity status */
	A0G, A1G   float64    /* GST-GPS time offset and drift (s, s/s) */
	T0G        float64    /* GST-GPS reference time (s) */
	WN0G       int        /* GST-GPS reference week */
	Week       int        /* GST week */
	Tow        int        /* GST time of week (s) */
	TGST       uint32     /* GST seconds since GST epoch, advanced per page */
	timeValid  bool       /* GST received from word 0 or 5 */
	received   uint16     /* received words (bit n: word n) */
}

func NewEphE1B() *EphE1B {
	return &EphE1B{keplerOrbit: keplerOrbit{mu: MU_GAL}}
}

/* advance GST by one page part */
func (eph *EphE1B) IncTime() {
	eph.TGST = (eph.TGST + 1) % GST_ROLLOVER
}

func (eph *EphE1B) resyncTime() {
	eph.TGST = (uint32(eph.Week)*uint32(WEEK_SEC) + uint32(eph.Tow) + 2) % GST_ROLLOVER
	eph.timeValid = true
}

/* process I/NAV word ----------------------------------------------------------
* decode ephemeris from an I/NAV nominal page word
* args   : uint8_t *buff    I   word data (128 bits, packed)
*          int    page      I   word type
* return : word type (-1: not used)
*-----------------------------------------------------------------------------*/
func (eph *EphE1B) ProcessPage(buff []uint8, page int) int {
	Trace(4, "ephe1b process page: type=%d\n", page)

	switch page {
	case 0:
		if GetBitU(buff, 6, 2) != 2 { /* time field */
			return -1
		}
		eph.Week = int(GetBitU(buff, 96, 12))
		eph.Tow = int(GetBitU(buff, 108, 20))
		eph.resyncTime()
		return page
	case 1:
		eph.Toe = float64(GetBitU(buff, 16, 14)) * 60.0
		eph.M0 = float64(GetBits(buff, 30, 32)) * P2_31 * PI
		eph.E = float64(GetBitU(buff, 62, 32)) * P2_33
		eph.RootA = float64(GetBitU(buff, 94, 32)) * P2_19
	case 2:
		eph.OMG0 = float64(GetBits(buff, 16, 32)) * P2_31 * PI
		eph.I0 = float64(GetBits(buff, 48, 32)) * P2_31 * PI
		eph.Omg = float64(GetBits(buff, 80, 32)) * P2_31 * PI
		eph.Idot = float64(GetBits(buff, 112, 14)) * P2_43 * PI
	case 3:
		eph.OMGd = float64(GetBits(buff, 16, 24)) * P2_43 * PI
		eph.Deln = float64(GetBits(buff, 40, 16)) * P2_43 * PI
		eph.Cuc = float64(GetBits(buff, 56, 16)) * P2_29
		eph.Cus = float64(GetBits(buff, 72, 16)) * P2_29
		eph.Crc = float64(GetBits(buff, 88, 16)) * P2_5
		eph.Crs = float64(GetBits(buff, 104, 16)) * P2_5
	case 4:
		eph.Cic = float64(GetBits(buff, 22, 16)) * P2_29
		eph.Cis = float64(GetBits(buff, 38, 16)) * P2_29
		eph.Toc = float64(GetBitU(buff, 54, 14)) * 60.0
		eph.F0 = float64(GetBits(buff, 68, 31)) * P2_34
		eph.F1 = float64(GetBits(buff, 99, 21)) * P2_46
		eph.F2 = float64(GetBits(buff, 120, 6)) * P2_59
	case 5:
		eph.Ai[0] = float64(GetBitU(buff, 6, 11)) * 0.25
		eph.Ai[1] = float64(GetBits(buff, 17, 11)) * P2_8
		eph.Ai[2] = float64(GetBits(buff, 28, 14)) * P2_15
		eph.Bgd = float64(GetBits(buff, 57, 10)) * P2_32
		eph.Svh = int(GetBitU(buff, 69, 2))
		eph.Dvs = int(GetBitU(buff, 72, 1))
		eph.Week = int(GetBitU(buff, 73, 12))
		eph.Tow = int(GetBitU(buff, 85, 20))
		eph.resyncTime()
	case 10:
		eph.A0G = float64(GetBits(buff, 86, 16)) * P2_35
		eph.A1G = float64(GetBits(buff, 102, 12)) * P2_51
		eph.T0G = float64(GetBitU(buff, 114, 8)) * 3600.0
		eph.WN0G = int(GetBitU(buff, 122, 6))
	default:
		return -1
	}
	eph.received |= 1 << page
	return page
}

/* words 1-5 and 10 received and GST known */
func (eph *EphE1B) Valid() bool {
	const mask = 1<<1 | 1<<2 | 1<<3 | 1<<4 | 1<<5 | 1<<10
	return eph.received&mask == mask && eph.timeValid
}

func (eph *EphE1B) SatPos(t float64) (x, y, z float64) {
	return eph.satPos(t)
}

/* satellite clock correction (s), including relativity, bgd and GST-GPS offset */
func (eph *EphE1B) ClockCorr(t float64) float64 {
	dt := TimeFromEpoch(t, eph.Toc)
	dtsys := eph.A0G + eph.A1G*(float64(eph.Tow)-eph.T0G+float64((eph.Week-eph.WN0G)%64)*WEEK_SEC)
	return eph.F0 + eph.F1*dt + eph.F2*dt*dt + eph.relCorr(t) - eph.Bgd + dtsys
}

/* GST time of week (s) */
func (eph *EphE1B) TimeOfWeek() float64 {
	return float64(eph.TGST % uint32(WEEK_SEC))
}
