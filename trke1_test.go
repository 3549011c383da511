/*------------------------------------------------------------------------------
* trke1_test.go : unit test of E1 tracking channel
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* 1-bit E1 signal generator at fs=16*chip rate, code aligned to sample 0:
* E1C pilot only, or hard limited E1B data + E1C pilot with data code set */
type e1Signal struct {
	rng   *rand.Rand
	pilot []uint8
	data  []uint8
	syms  []uint8 /* E1B symbols (one per code period) */
	phase float64
	rate  float64
	n     int
	noise float64
}

func (sig *e1Signal) next(buff []uint8) {
	for i := range buff {
		sig.phase += sig.rate
		if sig.phase >= 4.0 {
			sig.phase -= 4.0
		}
		chip := sig.n / 16
		boc := uint8(sig.n / 8 % 2)
		sec := e1_secondary[chip/E1_CODE_LEN%E1_SEC_LEN]
		s := carr_sin[int(sig.phase)] ^ sig.pilot[chip%E1_CODE_LEN] ^ boc ^ sec
		if sig.data != nil {
			sym := uint8(0)
			if k := chip / E1_CODE_LEN; k < len(sig.syms) {
				sym = sig.syms[k]
			}
			sd := carr_sin[int(sig.phase)] ^ sig.data[chip%E1_CODE_LEN] ^ boc ^ sym
			if sd != s && sig.rng.Intn(2) == 0 {
				s = sd
			}
		}
		if sig.rng.Float64() < sig.noise {
			s ^= 1
		}
		buff[i] = s
		sig.n++
	}
}

/* code table with E1B data and E1C pilot codes of prn */
func testE1CodeTable(t *testing.T, prn int) (*E1CodeTable, []uint8, []uint8) {
	text, codes := testE1Table(51, prn)
	tbl, err := LoadE1Codes(strings.NewReader(text))
	require.NoError(t, err)
	return tbl, codes[prn][0], codes[prn][1]
}

/* NewE1Channel() */
func Test_trke1utest1(t *testing.T) {
	assert := assert.New(t)
	tbl, _, _ := testE1CodeTable(t, 4)

	ch, err := NewE1Channel(ChannelOpt{Prn: 4, Fs: 16.368e6, Fc: 3.5e6, CodeOff: 4091.6}, tbl)
	require.NoError(t, err)
	assert.Equal(SYS_GAL, ch.Sys())
	assert.Equal(4, ch.Prn())
	assert.Equal(0, ch.code.Index())
	assert.InDelta(0.1, ch.codePhase, 1e-9)
	assert.Equal(0.25, ch.Spacing())
	assert.Equal(PILOT_NO_LOCK, ch.PilotState())
	assert.Equal(E1_FLLBW, ch.opt.FllBw)

	for _, bad := range []ChannelOpt{
		{Prn: 4, Fs: -1.0, Fc: 3.5e6},
		{Prn: 4, Fs: 16.368e6, Fc: 20e6},
		{Prn: 5, Fs: 16.368e6, Fc: 3.5e6},
		{Prn: 51, Fs: 16.368e6, Fc: 3.5e6},
		{Prn: 4, Fs: 16.368e6, Fc: 3.5e6, CodeOff: -5.3},
		{Prn: 4, Fs: 16.368e6, Fc: 3.5e6, CodeOff: E1_CODE_LEN + 0.2},
		{Prn: 4, Fs: 16.368e6, Fc: 3.5e6, CodeOff: math.Inf(-1)},
		{Prn: 4, Fs: 16.368e6, Fc: 3.5e6, Doppler: math.NaN()},
	} {
		_, err := NewE1Channel(bad, tbl)
		assert.Error(err, "opt=%+v", bad)
	}
	_, err = NewE1Channel(ChannelOpt{Prn: 4, Fs: 16.368e6, Fc: 3.5e6}, nil)
	assert.Error(err)
}

/* pilot tracking and secondary code lock */
func Test_trke1utest2(t *testing.T) {
	assert := assert.New(t)
	const fs, fc = 16.368e6, 3.5e6
	tbl, _, pilot := testE1CodeTable(t, 4)
	sig := &e1Signal{rng: rand.New(rand.NewSource(52)), pilot: pilot, rate: fc * 4.0 / fs, noise: 0.25}
	ch, err := NewE1Channel(ChannelOpt{Prn: 4, Fs: fs, Fc: fc}, tbl)
	require.NoError(t, err)

	buff := make([]uint8, 16*E1_CODE_LEN)
	for ep := 0; ep < 70; ep++ {
		sig.next(buff)
		ch.Track(buff)
		if ep == 20 {
			assert.Equal(PILOT_LOCK_NO_SEC, ch.PilotState())
			assert.Equal(1.0/12.0, ch.Spacing())
		}
	}
	assert.Equal(280, ch.MsElapsed())
	require.Equal(t, PILOT_LOCK_SEC, ch.PilotState())
	assert.Equal(uint8(1), ch.secPol)
	assert.Equal(0, ch.BumpJumps())
	assert.Greater(ch.CN0(), 45.0)
	assert.InDelta(0.0, ch.Doppler(), 2.0)

	/* secondary code wiped off: prompt stays positive */
	ip, qp := ch.Prompt()
	assert.Greater(ip, 20000)
	assert.Less(math.Abs(float64(qp)), 3000.0)

	src := ch.Snapshot()
	assert.False(src.ReadyToSolve())
}

/* bump-jump on a half chip late code */
func Test_trke1utest3(t *testing.T) {
	tbl, _, _ := testE1CodeTable(t, 4)
	ch, err := NewE1Channel(ChannelOpt{Prn: 4, Fs: 16.368e6, Fc: 3.5e6}, tbl)
	require.NoError(t, err)

	for i := 0; i < VEL_LEN; i++ {
		ch.vel.push(300.0, 100.0, 10.0)
	}
	phase := ch.codePhase
	ch.bumpJump()
	assert.Equal(t, 1, ch.bumps)
	assert.Equal(t, phase+0.5, ch.codePhase)
	assert.Equal(t, 0, ch.vel.n)

	/* no jump until the window is refilled */
	ch.vel.push(10.0, 100.0, 300.0)
	ch.bumpJump()
	assert.Equal(t, 1, ch.bumps)
	for i := 1; i < VEL_LEN; i++ {
		ch.vel.push(10.0, 100.0, 300.0)
	}
	ch.bumpJump()
	assert.Equal(t, 2, ch.BumpJumps())
	assert.Equal(t, phase, ch.codePhase)
}

/* E1B symbols to I/NAV words, ephemeris and solver readiness */
func Test_trke1utest4(t *testing.T) {
	if testing.Short() {
		t.Skip("long signal run")
	}
	assert := assert.New(t)
	const fs, fc = 16.368e6, 3.5e6
	const week, tow = 1234, 345600
	tbl, data, pilot := testE1CodeTable(t, 4)

	types := []int{1, 2, 3, 4, 5, 10}
	words := make([][]uint8, len(types))
	for i, typ := range types {
		words[i] = make([]uint8, E1_WORD_BITS/8)
		SetBitU(words[i], 0, 6, uint32(typ))
	}
	SetBitU(words[0], 16, 14, 5000)
	SetBitU(words[0], 94, 32, 2843080000)
	SetBitU(words[1], 16, 32, 1234567890)
	SetBitU(words[2], 104, 16, 321)
	SetBitU(words[3], 54, 14, 5000)
	SetBitU(words[4], 73, 12, week)
	SetBitU(words[4], 85, 20, tow)
	SetBitU(words[5], 122, 6, 42)

	syms := make([]uint8, 150) /* before pilot lock */
	for i := range syms {
		syms[i] = 1
	}
	for _, w := range words {
		even, odd := testPage(w)
		syms = append(syms, encodePart(even)...)
		syms = append(syms, encodePart(odd)...)
	}
	sig := &e1Signal{rng: rand.New(rand.NewSource(53)), pilot: pilot, data: data, syms: syms,
		rate: fc * 4.0 / fs, noise: 0.1}
	ch, err := NewE1Channel(ChannelOpt{Prn: 4, Fs: fs, Fc: fc}, tbl)
	require.NoError(t, err)

	buff := make([]uint8, 16*E1_CODE_LEN)
	for ep := 0; ep < len(syms)+10; ep++ {
		sig.next(buff)
		ch.Track(buff)
		if ep == len(syms)-E1_PAGE_SYMS {
			assert.Equal(PILOT_LOCK_SEC, ch.PilotState())
			assert.Equal(10, ch.nav.lastPage)
			assert.False(ch.eph.Valid())
			assert.False(ch.Snapshot().ReadyToSolve())
		}
	}
	assert.Equal(4*(len(syms)+10), ch.MsElapsed())
	assert.Equal(0, ch.BumpJumps())

	/* words with crc ok */
	require.True(t, ch.eph.Valid())
	assert.Equal(300000.0, ch.eph.Toe)
	assert.Equal(2843080000.0*P2_19, ch.eph.RootA)
	assert.Equal(1234567890.0*P2_31*PI, ch.eph.OMG0)
	assert.Equal(321.0*P2_5, ch.eph.Crs)
	assert.Equal(300000.0, ch.eph.Toc)
	assert.Equal(week, ch.eph.Week)
	assert.Equal(tow, ch.eph.Tow)
	assert.Equal(42, ch.eph.WN0G)

	/* gst from word 5, advanced by the parts of word 10 */
	assert.Equal(float64(tow+4), ch.eph.TimeOfWeek())
	assert.Equal(10, ch.nav.count())
	src := ch.Snapshot()
	assert.True(src.ReadyToSolve())
	assert.InDelta(float64(tow+4)+10.0/E1_PAGE_SYMS, src.TxTime(), 0.005)
}
