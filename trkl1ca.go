/*------------------------------------------------------------------------------
* trkl1ca.go : GPS L1CA tracking channel
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* history : 2024/03/02 1.0  new
*           2024/04/20 1.1  add bit synchronization and navigation decoding
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"fmt"
	"math"
	"sync"
)

/* L1CA tracking channel */
type L1CAChannel struct {
	lock sync.Mutex
	opt  ChannelOpt

	/* nco */
	codePhase, codeRate float64
	carrPhase, carrRate float64

	/* code generator and taps */
	code                *CACode
	codeE, codeP, codeL uint8

	/* correlators */
	ie, qe, ip, qp, il, ql int

	epochDone bool
	dll, pll  LoopFilter
	ms        int /* epochs elapsed */

	prompt  promptBuffer
	cn0     float64
	lastIp  int
	lastQp  int
	carrErr float64 /* carrier loop output (Hz) */
	codeErr float64 /* code loop output (chip/s) */

	/* bit synchronization */
	bitHist   [L1CA_BIT_MS]int
	bitCount  int /* epochs in the bit sync window */
	bitSynced bool
	bitOff    int /* bit edge (ms mod 20) */
	bitMs     int /* epochs integrated into the current bit */
	bitSum    int

	nav *navL1CA
	eph *EphL1CA
}

/* new L1CA tracking channel ---------------------------------------------------
* args   : ChannelOpt opt   I   channel options (prn, fs, fc, doppler, code
*                               offset, loop bandwidths, pll order)
* return : tracking channel or error
*-----------------------------------------------------------------------------*/
func NewL1CAChannel(opt ChannelOpt) (*L1CAChannel, error) {
	if opt.Fs <= 0.0 || opt.Fc < 0.0 || opt.Fc >= opt.Fs {
		return nil, fmt.Errorf("l1ca channel: invalid fs=%.0f fc=%.0f", opt.Fs, opt.Fc)
	}
	if !validCodeOff(opt.CodeOff, L1CA_CODE_LEN) || math.IsNaN(opt.Doppler) || math.IsInf(opt.Doppler, 0) {
		return nil, fmt.Errorf("l1ca channel: invalid doppler=%.1f codeoff=%.3f", opt.Doppler, opt.CodeOff)
	}
	if opt.BitMs <= 0 {
		opt.BitMs = BIT_SYNC_MS
	}
	if opt.BitCn0 <= 0.0 {
		opt.BitCn0 = BIT_SYNC_CN0
	}
	if opt.PllOrder == 0 {
		opt.PllOrder = 2
	}
	if opt.DllBw <= 0.0 {
		opt.DllBw = L1CA_DLLBW
	}
	if opt.PllBw <= 0.0 {
		opt.PllBw = L1CA_PLLBW
	}
	ch := &L1CAChannel{opt: opt, nav: newNavL1CA(), eph: NewEphL1CA()}

	ch.codePhase = opt.CodeOff - math.Floor(opt.CodeOff) + 0.5
	ch.codeRate = (CHIP_RATE + opt.Doppler*CHIP_RATE/FREQ1) / opt.Fs
	ch.carrRate = (opt.Fc + opt.Doppler) * 4.0 / opt.Fs

	start := int(opt.CodeOff)
	if ch.codePhase >= 1.0 {
		start++
		ch.codePhase -= 1.0
	}
	code, err := NewCACode(opt.Prn, start)
	if err != nil {
		return nil, err
	}
	ch.code = code
	ch.epochDone = code.Index() == 0

	ch.dll = NewSecondOrderFilter(opt.DllBw, opt.Doppler*CHIP_RATE/FREQ1)
	if ch.pll = NewLoopFilter(opt.PllOrder, opt.PllBw, opt.Doppler); ch.pll == nil {
		return nil, fmt.Errorf("l1ca channel: invalid pll order %d", opt.PllOrder)
	}
	Trace(3, "new l1ca channel: prn=%2d doppler=%.1f codeoff=%.3f\n", opt.Prn, opt.Doppler, opt.CodeOff)
	return ch, nil
}

/* track samples ---------------------------------------------------------------
* args   : uint8_t *samples I   1-bit samples (0/1, one per byte)
* return : none
*-----------------------------------------------------------------------------*/
func (ch *L1CAChannel) Track(samples []uint8) {
	ch.lock.Lock()
	defer ch.lock.Unlock()

	for _, s := range samples {
		ch.updateSample(s)

		if ch.code.Index() == 0 {
			if !ch.epochDone {
				ch.updateEpoch()
			}
		} else {
			ch.epochDone = false
		}
	}
}

func (ch *L1CAChannel) updateSample(s uint8) {
	phase := int(ch.carrPhase)
	loi, loq := carr_sin[phase], carr_cos[phase]

	ch.carrPhase += ch.carrRate
	if ch.carrPhase >= 4.0 {
		ch.carrPhase -= 4.0
	}
	if ch.codePhase >= 1.0 {
		ch.codeL = ch.codeP
		ch.code.ClockChip()
		ch.codeE = ch.code.Chip()
		ch.codePhase -= 1.0
	}
	if ch.codePhase >= 0.5 {
		ch.codeP = ch.codeE
	}
	ch.codePhase += ch.codeRate

	ch.ie += corr(s ^ loi ^ ch.codeE)
	ch.qe += corr(s ^ loq ^ ch.codeE)
	ch.ip += corr(s ^ loi ^ ch.codeP)
	ch.qp += corr(s ^ loq ^ ch.codeP)
	ch.il += corr(s ^ loi ^ ch.codeL)
	ch.ql += corr(s ^ loq ^ ch.codeL)
}

func (ch *L1CAChannel) updateEpoch() {
	ch.prompt.push(ch.ip, ch.qp)
	if ch.prompt.full() {
		ch.cn0 = ch.prompt.cn0(L1CA_T)
	} else {
		ch.cn0 = 0.0
	}

	/* costas discriminator */
	carrDisc := 0.0
	if ch.ip != 0 {
		carrDisc = math.Atan(float64(ch.qp)/float64(ch.ip)) / (2.0 * PI)
	}
	ch.carrErr = ch.pll.Update(carrDisc, L1CA_T)
	ch.carrRate = (ch.opt.Fc + ch.carrErr) * 4.0 / ch.opt.Fs

	/* normalized early minus late power discriminator */
	pe := math.Hypot(float64(ch.ie), float64(ch.qe))
	pl := math.Hypot(float64(ch.il), float64(ch.ql))
	codeDisc := 0.0
	if pe+pl > 0.0 {
		codeDisc = 0.5 * (pe - pl) / (pe + pl)
	}
	ch.codeErr = ch.dll.Update(codeDisc, L1CA_T)
	ch.codeRate = (CHIP_RATE + ch.codeErr) / ch.opt.Fs

	ch.updateBit()

	ch.lastIp, ch.lastQp = ch.ip, ch.qp
	ch.ie, ch.qe, ch.ip, ch.qp, ch.il, ch.ql = 0, 0, 0, 0, 0, 0
	ch.epochDone = true
	ch.ms++
}

/* bit synchronization by histogram of prompt sign transitions and bit
* recovery by integrating prompt over the bit */
func (ch *L1CAChannel) updateBit() {
	if ch.bitSynced {
		ch.bitSum += ch.ip
		ch.bitMs = (ch.bitMs + 1) % L1CA_BIT_MS
		if ch.bitMs == 0 {
			bit := uint8(0)
			if ch.bitSum > 0 {
				bit = 1
			}
			ch.bitSum = 0
			ch.nav.addBit(bit, ch.eph, ch.opt.Prn)
		}
		return
	}
	if ch.cn0 <= ch.opt.BitCn0 && ch.bitCount == 0 {
		return
	}
	if (ch.ip > 0) != (ch.lastIp > 0) {
		ch.bitHist[ch.ms%L1CA_BIT_MS]++
	}
	if ch.bitCount++; ch.bitCount < ch.opt.BitMs {
		return
	}
	off := 0
	for i := 1; i < L1CA_BIT_MS; i++ {
		if ch.bitHist[i] > ch.bitHist[off] {
			off = i
		}
	}
	ch.bitOff = off
	ch.bitSynced = true
	ch.bitMs = ((ch.ms-off)%L1CA_BIT_MS+L1CA_BIT_MS)%L1CA_BIT_MS + 1
	ch.bitMs %= L1CA_BIT_MS
	ch.bitSum = 0

	Trace(3, "l1ca bit sync: prn=%2d off=%d count=%d ms=%d\n", ch.opt.Prn, off, ch.bitHist[off], ch.ms)
}

/* accessors -----------------------------------------------------------------*/
func (ch *L1CAChannel) Sys() int { return SYS_GPS }
func (ch *L1CAChannel) Prn() int { return ch.opt.Prn }

func (ch *L1CAChannel) CN0() float64 {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.cn0
}

/* prompt correlator of the last epoch */
func (ch *L1CAChannel) Prompt() (ip, qp int) {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.lastIp, ch.lastQp
}

func (ch *L1CAChannel) BitSynced() bool {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.bitSynced
}

func (ch *L1CAChannel) BitOffset() int {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.bitOff
}

func (ch *L1CAChannel) MsElapsed() int {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.ms
}

/* carrier doppler (Hz) */
func (ch *L1CAChannel) Doppler() float64 {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.carrErr
}

/* subframe decoded with tow continuity */
func (ch *L1CAChannel) NavValid() bool {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.nav.valid
}

/* snapshot for the solver ---------------------------------------------------*/
func (ch *L1CAChannel) Snapshot() NavSource {
	ch.lock.Lock()
	defer ch.lock.Unlock()

	eph := *ch.eph
	return &NavSnapshot{
		Sys:   SYS_GPS,
		Prn:   ch.opt.Prn,
		Ready: ch.eph.Valid() && ch.nav.valid,
		Tx:    ch.nav.txTime(ch.bitMs, ch.code.Index(), ch.codePhase),
		Eph:   &eph,
	}
}
