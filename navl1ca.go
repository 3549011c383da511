/*------------------------------------------------------------------------------
* navl1ca.go : GPS L1CA navigation frame synchronization and decoding
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] IS-GPS-200D, Navstar GPS Space Segment/Navigation User Interfaces,
*         7 March, 2006, 20.3.2 and 20.3.5
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package gnsssdr

const (
	L1CA_FRAME_BITS = 300    /* subframe length (bits) */
	L1CA_WORD_BITS  = 30     /* word length (bits) */
	L1CA_TOW_MAX    = 100800 /* tow count rollover (6 s units) */
)

var l1ca_preamble = []uint8{1, 0, 0, 0, 1, 0, 1, 1}

/* check parity ----------------------------------------------------------------
* check parity of a navigation data word
* args   : uint8_t d29,d30  I   D29*,D30* of the previous word
*          uint32_t word    I   navigation data word (D1-D30 in lower 30 bits)
* return : status (1:ok,0:parity error)
*-----------------------------------------------------------------------------*/
func CheckParity(d29, d30 uint8, word uint32) int {
	return DecodeWord(uint32(d29&1)<<31|uint32(d30&1)<<30|word&0x3FFFFFFF, nil)
}

/* L1CA navigation decoder state */
type navL1CA struct {
	bits    *bitQueue                        /* D29*,D30* of previous word + subframe */
	frame   [(L1CA_FRAME_BITS + 7) / 8]uint8 /* polarity corrected subframe */
	lastTow int                              /* tow count of previous subframe */
	tow     int                              /* tow count of last subframe */
	valid   bool                             /* tow continuity ok */
	synced  bool                             /* at least one subframe decoded */
	nbit    int                              /* bits since end of last subframe */
}

func newNavL1CA() *navL1CA {
	return &navL1CA{bits: newBitQueue(L1CA_FRAME_BITS + 2), lastTow: -2}
}

/* add navigation bit ----------------------------------------------------------
* add a recovered bit and decode the subframe when the window is full
* args   : uint8_t bit      I   navigation bit (0/1)
*          EphL1CA *eph     IO  ephemeris
*          int    prn       I   satellite prn (for trace)
* return : subframe id decoded (0: no subframe)
*-----------------------------------------------------------------------------*/
func (nav *navL1CA) addBit(bit uint8, eph *EphL1CA, prn int) int {
	nav.bits.push(bit)
	nav.nbit++
	if !nav.bits.full() {
		return 0
	}
	if !nav.bits.match(2, l1ca_preamble, 0) && !nav.bits.match(2, l1ca_preamble, 1) {
		nav.bits.pop(1)
		return 0
	}
	if !nav.decodeFrame() {
		Trace(5, "navl1ca: parity error prn=%2d\n", prn)
		nav.bits.pop(1)
		return 0
	}
	tow := int(GetBitU(nav.frame[:], 30, 17))
	id := int(GetBitU(nav.frame[:], 49, 3))

	if tow == (nav.lastTow+1)%L1CA_TOW_MAX {
		nav.valid = true
	} else {
		if nav.valid {
			Trace(2, "navl1ca: tow discontinuity prn=%2d tow=%d last=%d\n", prn, tow, nav.lastTow)
		}
		nav.valid = false
	}
	nav.lastTow, nav.tow = tow, tow
	nav.synced = true

	Trace(3, "navl1ca: subframe prn=%2d id=%d tow=%d valid=%v\n", prn, id, tow*6, nav.valid)

	if nav.valid {
		eph.ProcessSubframe(nav.frame[:])
	}
	nav.bits.pop(L1CA_FRAME_BITS)
	nav.nbit = 0
	return id
}

/* check parity of ten words and extract the polarity corrected subframe */
func (nav *navL1CA) decodeFrame() bool {
	var data [3]uint8

	for w := 0; w < 10; w++ {
		var word uint32
		p := w * L1CA_WORD_BITS
		for i := 0; i < L1CA_WORD_BITS+2; i++ {
			word = word<<1 | uint32(nav.bits.at(p+i))
		}
		if DecodeWord(word, data[:]) == 0 {
			return false
		}
		for i := 0; i < 3; i++ {
			SetBitU(nav.frame[:], p+i*8, 8, uint32(data[i]))
		}
		SetBitU(nav.frame[:], p+24, 6, word&0x3F)
	}
	return true
}

/* transmit time of the current epoch start (s in week) */
func (nav *navL1CA) txTime(bitMs, chip int, codePhase float64) float64 {
	t := float64(nav.tow)*6.0 + float64(nav.nbit)*0.02 + float64(bitMs)*0.001 +
		(float64(chip)+codePhase)/CHIP_RATE
	for t >= WEEK_SEC {
		t -= WEEK_SEC
	}
	return t
}
