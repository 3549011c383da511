/*------------------------------------------------------------------------------
* types.go : constants and types of the 1-bit software receiver core
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* history : 2022/05/31 1.0  new
*           2024/03/02 1.1  add tracking channel and solver types
*-----------------------------------------------------------------------------*/
package gnsssdr

const (
	PI        float64 = 3.1415926535897932  /* pi */
	D2R               = (PI / 180.0)        /* deg to rad */
	R2D               = (180.0 / PI)        /* rad to deg */
	CLIGHT    float64 = 299792458.0         /* speed of light (m/s) */
	OMGE      float64 = 7.2921151467e-5     /* earth angular velocity (IS-GPS) (rad/s) */
	MU_GPS    float64 = 3.986005e14         /* gravitational constant (IS-GPS) */
	MU_GAL    float64 = 3.986004418e14      /* earth gravitational constant (Galileo) */
	F_REL     float64 = -4.442807633e-10    /* relativistic correction constant (s/m^0.5) */
	RE_WGS84  float64 = 6378137.0           /* earth semimajor axis (WGS84) (m) */
	E2_WGS84  float64 = 0.00669437999014132 /* earth first eccentricity squared (WGS84) */
	FREQ1     float64 = 1.57542e9           /* L1/E1 frequency (Hz) */
	CHIP_RATE float64 = 1.023e6             /* L1CA/E1 chipping rate (chip/s) */

	WEEK_SEC  = 604800.0 /* seconds of week */
	HWEEK_SEC = 302400.0 /* half week (s) */
)

const (
	L1CA_CODE_LEN = 1023 /* L1CA code length (chip) */
	E1_CODE_LEN   = 4092 /* E1B/E1C code length (chip) */
	E1_SEC_LEN    = 25   /* E1C secondary code length (chip) */
	MAXPRN_GPS    = 32   /* max prn of gps */
	MAXPRN_GAL    = 50   /* max prn of galileo */

	PROMPT_LEN = 100 /* prompt buffer length for cn0 estimation */
	VEL_LEN    = 10  /* very early/late power window (epoch) */

	L1CA_T = 0.001                            /* L1CA coherent integration time (s) */
	E1_T   = float64(E1_CODE_LEN) / CHIP_RATE /* E1 coherent integration time (s) */
	MAXCN0 = 99.0                             /* cn0 reported with no measurable noise (dB-Hz) */

	MAX_ITER_KEPLER = 1000  /* max number of iteration of Kepler */
	RTOL_KEPLER     = 1e-10 /* relative tolerance for Kepler equation */

	L1CA_DLLBW      = 2.0  /* L1CA dll bandwidth (Hz) */
	L1CA_PLLBW      = 50.0 /* L1CA pll bandwidth (Hz) */
	E1_DLLBW        = 2.0  /* E1 dll bandwidth (Hz) */
	E1_PLLBW        = 35.0 /* E1 pll bandwidth (Hz) */
	E1_FLLBW        = 35.0 /* E1 fll bandwidth (Hz) */
	E1_PLLBW_NARROW = 25.0 /* E1 pll/fll bandwidth above E1_PLLBW_CN0 (Hz) */

	BIT_SYNC_CN0 = 35.0 /* cn0 threshold to start bit sync (dB-Hz) */
	BIT_SYNC_MS  = 1000 /* bit sync window (epoch) */
	L1CA_BIT_MS  = 20   /* L1CA navigation bit length (epoch) */

	E1_FINE_CN0  = 35.0 /* cn0 threshold to narrow e-l spacing and start pilot sync (dB-Hz) */
	E1_PLLBW_CN0 = 27.0 /* cn0 threshold to narrow pll bandwidth (dB-Hz) */
	E1_FLL_CN0   = 30.0 /* cn0 below which the fll discriminator is used (dB-Hz) */
	E1_AID_CN0   = 30.0 /* cn0 above which carrier aiding is applied (dB-Hz) */
	BUMP_RATIO   = 1.5  /* very early/late to prompt power ratio of bump-jump */

	GST_ROLLOVER = 604800 * 4096 /* GST rollover (s), 4096 weeks */

	SYS_GPS = 0x01 /* navigation system: GPS */
	SYS_GAL = 0x08 /* navigation system: Galileo */
)

/* exact powers of two for broadcast parameter scaling */
const (
	P2_5  = 1.0 / (1 << 5)
	P2_8  = 1.0 / (1 << 8)
	P2_15 = 1.0 / (1 << 15)
	P2_19 = 1.0 / (1 << 19)
	P2_24 = 1.0 / (1 << 24)
	P2_27 = 1.0 / (1 << 27)
	P2_29 = 1.0 / (1 << 29)
	P2_30 = 1.0 / (1 << 30)
	P2_31 = 1.0 / (1 << 31)
	P2_32 = 1.0 / (1 << 32)
	P2_33 = 1.0 / (1 << 33)
	P2_34 = 1.0 / (1 << 34)
	P2_35 = 1.0 / (1 << 35)
	P2_43 = 1.0 / (1 << 43)
	P2_46 = 1.0 / (1 << 46)
	P2_51 = 1.0 / (1 << 51)
	P2_55 = 1.0 / (1 << 55)
	P2_59 = 1.0 / (1 << 59)
)

/* pilot (secondary code) tracking state of E1 channel */
type PilotState int

const (
	PILOT_NO_LOCK     PilotState = iota /* no pilot lock */
	PILOT_LOCK_NO_SEC                   /* pilot lock, secondary code not aligned */
	PILOT_LOCK_SEC                      /* pilot and secondary code lock */
)

func (s PilotState) String() string {
	switch s {
	case PILOT_LOCK_NO_SEC:
		return "lock-nosec"
	case PILOT_LOCK_SEC:
		return "lock-sec"
	}
	return "nolock"
}

type ChannelOpt struct { /* tracking channel options */
	Prn      int     /* satellite prn */
	Fs       float64 /* sampling frequency (Hz) */
	Fc       float64 /* intermediate frequency (Hz) */
	Doppler  float64 /* initial doppler from acquisition (Hz) */
	CodeOff  float64 /* initial code phase from acquisition (chip) */
	DllBw    float64 /* dll noise bandwidth (Hz) */
	PllBw    float64 /* pll noise bandwidth (Hz) */
	FllBw    float64 /* fll noise bandwidth (Hz) (E1) */
	PllOrder int     /* pll order (L1CA: 2 or 3) */
	BitCn0   float64 /* bit sync start threshold (dB-Hz) (L1CA) */
	BitMs    int     /* bit sync window (epoch) (L1CA) */
}

type Solution struct { /* position solution */
	Lat   float64    /* latitude (deg) */
	Lon   float64    /* longitude (deg) */
	Alt   float64    /* ellipsoidal height (m) */
	TBias float64    /* receiver clock bias (s) */
	Rr    [3]float64 /* receiver position ecef (m) */
	Ns    int        /* number of channels used */
	Iter  int        /* number of iterations */
	Gdop  float64    /* geometric dop */
	Pdop  float64    /* position dop */
}

/* capability set the solver needs from a channel */
type NavSource interface {
	ReadyToSolve() bool
	TxTime() float64
	ClockCorr(t float64) float64
	SatPos(t float64) (x, y, z float64)
}

/* tracking channel registered to the solver */
type Channel interface {
	Sys() int
	Prn() int
	Snapshot() NavSource
}

/* immutable copy of the channel state the solver reads */
type NavSnapshot struct {
	Sys   int       /* navigation system */
	Prn   int       /* satellite prn */
	Ready bool      /* ephemeris valid and transmit time known */
	Tx    float64   /* transmit time of the current epoch (s in week) */
	Eph   Ephemeris /* ephemeris copy */
}

func (s *NavSnapshot) ReadyToSolve() bool { return s.Ready }
func (s *NavSnapshot) TxTime() float64    { return s.Tx }

func (s *NavSnapshot) ClockCorr(t float64) float64 {
	return s.Eph.ClockCorr(t)
}

func (s *NavSnapshot) SatPos(t float64) (x, y, z float64) {
	return s.Eph.SatPos(t)
}
