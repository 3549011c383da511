/*------------------------------------------------------------------------------
* nave1.go : Galileo E1B I/NAV page synchronization and decoding
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] European GNSS (Galileo) Open Service Signal In Space Interface Control
*         Document, Issue 2.0, January 2021, 4.3.2 and 4.1.4
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package gnsssdr

const (
	E1_PAGE_SYMS  = 250 /* page part length incl. sync (symbols) */
	E1_SYNC_LEN   = 10  /* sync pattern length (symbols) */
	E1_ILV_ROWS   = 8   /* interleaver rows */
	E1_ILV_COLS   = 30  /* interleaver columns */
	E1_CODED_SYMS = 240 /* coded symbols of a page part */
	E1_PART_BITS  = 120 /* decoded bits of a page part incl. tail */
	E1_WORD_BITS  = 128 /* word data length (bits) */
)

var e1_sync = []uint8{0, 1, 0, 1, 1, 0, 0, 0, 0, 0}

/* deinterleave page part ------------------------------------------------------
* restore transmission order of 8x30 block interleaved symbols
* args   : uint8_t *sym     I   interleaved symbols (240), written by columns
*          uint8_t inv      I   polarity (1: invert symbols)
*          uint8_t *out     O   deinterleaved symbols (240)
* return : none
*-----------------------------------------------------------------------------*/
func Deinterleave(sym []uint8, inv uint8, out []uint8) {
	for i := 0; i < E1_ILV_ROWS; i++ {
		for j := 0; j < E1_ILV_COLS; j++ {
			out[i+j*E1_ILV_ROWS] = sym[i*E1_ILV_COLS+j] ^ inv
		}
	}
}

/* galileo I/NAV crc -----------------------------------------------------------
* compute crc-24q of a nominal page
* args   : uint8_t *even    I   even page part (bits 0-113, one bit per byte)
*          uint8_t *odd     I   odd page part (bits 0-81, one bit per byte)
* return : crc-24q parity
* notes  : crc covers even/odd and page type of both parts, the 112 bits of
*          data of the even part, the 16 bits of data of the odd part and the
*          64 bits of reserved and ssp fields that follow them (196 bits)
*-----------------------------------------------------------------------------*/
func GalCRC(even, odd []uint8) uint32 {
	var buff [25]uint8

	/* 4 bits padding */
	PackBits(buff[:], 4, even[:114])
	PackBits(buff[:], 118, odd[:82])
	return CRC24Q(buff[:], 25)
}

/* E1B navigation decoder state */
type navE1 struct {
	syms     *bitQueue               /* received symbols */
	lastPage int                     /* word type of last even part (-1: none) */
	even     [E1_PART_BITS]uint8     /* last even page part */
	word     [E1_WORD_BITS / 8]uint8 /* word data (packed) */
	ilv      [E1_CODED_SYMS]uint8
	dec      [E1_PART_BITS]uint8
}

func newNavE1() *navE1 {
	return &navE1{syms: newBitQueue(E1_PAGE_SYMS), lastPage: -1}
}

/* add navigation symbol -------------------------------------------------------
* add a data channel symbol and decode the page part when the window is full
* args   : uint8_t sym      I   symbol (0/1)
*          EphE1B *eph      IO  ephemeris
*          int    prn       I   satellite prn (for trace)
* return : word type decoded (-1: no word)
*-----------------------------------------------------------------------------*/
func (nav *navE1) addSymbol(sym uint8, eph *EphE1B, prn int) int {
	var inv uint8

	nav.syms.push(sym)
	if !nav.syms.full() {
		return -1
	}
	if nav.syms.match(0, e1_sync, 0) {
		inv = 0
	} else if nav.syms.match(0, e1_sync, 1) {
		inv = 1
	} else {
		nav.syms.pop(1)
		return -1
	}
	var coded [E1_CODED_SYMS]uint8
	for i := range coded {
		coded[i] = nav.syms.at(E1_SYNC_LEN + i)
	}
	Deinterleave(coded[:], inv, nav.ilv[:])
	ViterbiDecode(nav.ilv[:], nav.dec[:])

	for _, b := range nav.dec[E1_PART_BITS-6:] { /* tail */
		if b != 0 {
			nav.syms.pop(1)
			return -1
		}
	}
	eph.IncTime()
	nav.syms.reset()

	ret := -1
	if nav.dec[0] == 0 { /* even */
		copy(nav.even[:], nav.dec[:])
		nav.lastPage = int(nav.dec[2])<<5 | int(nav.dec[3])<<4 | int(nav.dec[4])<<3 |
			int(nav.dec[5])<<2 | int(nav.dec[6])<<1 | int(nav.dec[7])
	} else if nav.lastPage >= 0 { /* odd */
		crc := uint32(0)
		for _, b := range nav.dec[82:106] {
			crc = crc<<1 | uint32(b)
		}
		if GalCRC(nav.even[:], nav.dec[:]) == crc {
			PackBits(nav.word[:], 0, nav.even[2:114])
			PackBits(nav.word[:], 112, nav.dec[2:18])
			ret = eph.ProcessPage(nav.word[:], nav.lastPage)
			Trace(3, "nave1: word prn=%2d type=%d tgst=%d\n", prn, nav.lastPage, eph.TGST)
		} else {
			Trace(2, "nave1: crc error prn=%2d type=%d\n", prn, nav.lastPage)
		}
	}
	return ret
}

/* symbols received since end of last page part */
func (nav *navE1) count() int {
	return nav.syms.len()
}
