/*------------------------------------------------------------------------------
* trke1.go : Galileo E1 tracking channel
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* references :
*     [1] European GNSS (Galileo) Open Service Signal In Space Interface Control
*         Document, Issue 2.0, January 2021, 2.3.3 and 3.5
*
* history : 2024/03/02 1.0  new
*           2024/05/11 1.1  add bump-jump and pilot secondary code lock
*-----------------------------------------------------------------------------*/
package gnsssdr

import (
	"fmt"
	"math"
	"sync"
)

/* E1 tracking channel: E1C pilot tracking and E1B data demodulation */
type E1Channel struct {
	lock sync.Mutex
	opt  ChannelOpt

	/* nco */
	codePhase, codeRate float64
	carrPhase, carrRate float64

	/* code generator, taps and subcarrier */
	code                  *E1Code
	codeVE, codeE, codeP  uint8
	codeL, codeVL, codePD uint8
	boc                   uint8

	/* pilot correlators */
	ive, qve, ie, qe, ip, qp, il, ql, ivl, qvl int

	/* data correlators */
	ipd, qpd int

	epochDone bool
	dll       LoopFilter
	pll       AssistedLoopFilter
	ms        int /* time elapsed (ms) */

	prompt  promptBuffer
	vel     powerWindow
	cn0     float64
	spacing float64 /* half early-late spacing (chip) */
	factor  float64 /* code discriminator gain */
	carrErr float64 /* carrier loop output (Hz) */
	codeErr float64 /* code loop output (chip/s) */
	lastIp  int
	lastQp  int
	bumps   int /* number of bump-jumps */

	/* pilot secondary code */
	pilot   PilotState
	secAcc  [E1_SEC_LEN]uint8
	secIdx  int
	secChip int
	secPol  uint8

	nav *navE1
	eph *EphE1B
}

/* new E1 tracking channel -----------------------------------------------------
* args   : ChannelOpt opt   I   channel options (prn, fs, fc, doppler, code
*                               offset, dll/pll/fll bandwidths)
*          E1CodeTable *tbl I   E1B/E1C code table
* return : tracking channel or error
*-----------------------------------------------------------------------------*/
func NewE1Channel(opt ChannelOpt, tbl *E1CodeTable) (*E1Channel, error) {
	if opt.Fs <= 0.0 || opt.Fc < 0.0 || opt.Fc >= opt.Fs {
		return nil, fmt.Errorf("e1 channel: invalid fs=%.0f fc=%.0f", opt.Fs, opt.Fc)
	}
	if !validCodeOff(opt.CodeOff, E1_CODE_LEN) || math.IsNaN(opt.Doppler) || math.IsInf(opt.Doppler, 0) {
		return nil, fmt.Errorf("e1 channel: invalid doppler=%.1f codeoff=%.3f", opt.Doppler, opt.CodeOff)
	}
	if opt.DllBw <= 0.0 {
		opt.DllBw = E1_DLLBW
	}
	if opt.PllBw <= 0.0 {
		opt.PllBw = E1_PLLBW
	}
	if opt.FllBw <= 0.0 {
		opt.FllBw = E1_FLLBW
	}
	ch := &E1Channel{opt: opt, spacing: 0.25, factor: 1.0, nav: newNavE1(), eph: NewEphE1B()}

	ch.codePhase = opt.CodeOff - math.Floor(opt.CodeOff) + 0.5
	ch.codeRate = (CHIP_RATE + opt.Doppler*CHIP_RATE/FREQ1) / opt.Fs
	ch.carrRate = (opt.Fc + opt.Doppler) * 4.0 / opt.Fs

	start := int(opt.CodeOff)
	if ch.codePhase >= 1.0 {
		start++
		ch.codePhase -= 1.0
	}
	code, err := NewE1Code(tbl, opt.Prn, start)
	if err != nil {
		return nil, err
	}
	ch.code = code
	ch.epochDone = code.Index() == 0

	ch.dll = NewSecondOrderFilter(opt.DllBw, opt.Doppler*CHIP_RATE/FREQ1)
	ch.pll = NewFLLAssistedFilter(opt.FllBw, opt.PllBw, opt.Doppler)

	Trace(3, "new e1 channel: prn=%2d doppler=%.1f codeoff=%.3f\n", opt.Prn, opt.Doppler, opt.CodeOff)
	return ch, nil
}

/* track samples ---------------------------------------------------------------
* args   : uint8_t *samples I   1-bit samples (0/1, one per byte)
* return : none
*-----------------------------------------------------------------------------*/
func (ch *E1Channel) Track(samples []uint8) {
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

func (ch *E1Channel) updateSample(s uint8) {
	ch.carrPhase += ch.carrRate
	if ch.carrPhase >= 4.0 {
		ch.carrPhase -= 4.0
	}
	if ch.codePhase >= 0.5-ch.spacing {
		ch.codeE = ch.codeVE
	}
	if ch.codePhase >= 0.5 {
		ch.codeP = ch.codeE
		ch.codePD = ch.code.DataChip()
		ch.boc = 0
	}
	if ch.codePhase >= 0.5+ch.spacing {
		ch.codeL = ch.codeP
	}
	if ch.codePhase >= 1.0 {
		ch.codeVL = ch.codeL
		ch.code.ClockChip()
		ch.codeVE = ch.code.Chip()
		ch.codePhase -= 1.0
		ch.boc = 1
	}
	ch.codePhase += ch.codeRate

	phase := int(ch.carrPhase)
	loi, loq := carr_sin[phase], carr_cos[phase]

	w := s ^ ch.boc
	if ch.pilot == PILOT_LOCK_SEC {
		w ^= e1_secondary[ch.secChip] ^ ch.secPol
	}
	ch.ive += corr(w ^ loi ^ ch.codeVE)
	ch.qve += corr(w ^ loq ^ ch.codeVE)
	ch.ie += corr(w ^ loi ^ ch.codeE)
	ch.qe += corr(w ^ loq ^ ch.codeE)
	ch.ip += corr(w ^ loi ^ ch.codeP)
	ch.qp += corr(w ^ loq ^ ch.codeP)
	ch.il += corr(w ^ loi ^ ch.codeL)
	ch.ql += corr(w ^ loq ^ ch.codeL)
	ch.ivl += corr(w ^ loi ^ ch.codeVL)
	ch.qvl += corr(w ^ loq ^ ch.codeVL)

	ch.ipd += corr(s ^ loi ^ ch.codePD ^ ch.boc)
	ch.qpd += corr(s ^ loq ^ ch.codePD ^ ch.boc)
}

func (ch *E1Channel) updateEpoch() {
	ch.prompt.push(ch.ip, ch.qp)
	ch.cn0 = ch.prompt.cn0(E1_T)

	/* e-l spacing and pll bandwidth by cn0 */
	if ch.cn0 <= E1_FINE_CN0 {
		ch.spacing, ch.factor = 0.25, 1.0
	} else {
		ch.spacing, ch.factor = 1.0/12.0, 1.0
	}
	if ch.cn0 >= E1_PLLBW_CN0 {
		ch.pll.SetBandwidth(E1_PLLBW_NARROW, E1_PLLBW_NARROW)
	} else {
		ch.pll.SetBandwidth(ch.opt.FllBw, ch.opt.PllBw)
	}
	ch.updatePilot()

	ch.vel.push(math.Hypot(float64(ch.ive), float64(ch.qve)),
		math.Hypot(float64(ch.ip), float64(ch.qp)),
		math.Hypot(float64(ch.ivl), float64(ch.qvl)))

	/* pll discriminator: atan2 with secondary code wiped off, costas otherwise */
	carrDisc := 0.0
	if ch.ip != 0 {
		if ch.pilot == PILOT_LOCK_SEC {
			carrDisc = math.Atan2(float64(ch.qp), float64(ch.ip)) / (2.0 * PI)
		} else {
			carrDisc = math.Atan(float64(ch.qp)/float64(ch.ip)) / (2.0 * PI)
		}
	}
	/* fll discriminator on weak signal */
	fllDisc := 0.0
	if ip1, qp1 := ch.prompt.prev(1); ch.cn0 < E1_FLL_CN0 && ch.ip != 0 && ip1 != 0.0 {
		fllDisc = math.Atan(float64(ch.qp)/float64(ch.ip)) - math.Atan(qp1/ip1)
	}
	fllDisc = phaseUnwrap(fllDisc) / (2.0 * PI * E1_T)

	ch.carrErr = ch.pll.Update(fllDisc, carrDisc, E1_T)
	ch.carrRate = (ch.opt.Fc + ch.carrErr) * 4.0 / ch.opt.Fs

	/* normalized dot product discriminator */
	codeDisc := 0.0
	num := float64((ch.ie-ch.il)*ch.ip + (ch.qe-ch.ql)*ch.qp)
	if den := float64((ch.ie+ch.il)*ch.ip + (ch.qe+ch.ql)*ch.qp); den != 0.0 {
		codeDisc = ch.factor * num / den
	}
	ch.codeErr = ch.dll.Update(codeDisc, E1_T)
	ch.codeRate = (CHIP_RATE + ch.codeErr) / ch.opt.Fs

	/* carrier aiding */
	if ch.cn0 > E1_AID_CN0 {
		ch.codeRate += ch.carrErr * CHIP_RATE / FREQ1 / ch.opt.Fs
	}
	ch.bumpJump()

	sym := uint8(0)
	if ch.ipd > 0 {
		sym = 1
	}
	ch.nav.addSymbol(sym, ch.eph, ch.opt.Prn)

	ch.lastIp, ch.lastQp = ch.ip, ch.qp
	ch.ive, ch.qve, ch.ie, ch.qe, ch.ip, ch.qp = 0, 0, 0, 0, 0, 0
	ch.il, ch.ql, ch.ivl, ch.qvl, ch.ipd, ch.qpd = 0, 0, 0, 0, 0, 0
	ch.epochDone = true
	ch.ms += 4
	ch.secChip = (ch.secChip + 1) % E1_SEC_LEN
}

/* pilot secondary code synchronization */
func (ch *E1Channel) updatePilot() {
	if ch.cn0 >= E1_FINE_CN0 && ch.pilot == PILOT_NO_LOCK {
		ch.pilot = PILOT_LOCK_NO_SEC
		Trace(3, "e1 pilot lock: prn=%2d ms=%d\n", ch.opt.Prn, ch.ms)
	}
	if ch.pilot != PILOT_LOCK_NO_SEC {
		return
	}
	bit := uint8(0)
	if ch.ip > 0 {
		bit = 1
	}
	if ch.secIdx < E1_SEC_LEN {
		ch.secAcc[ch.secIdx] = bit
		ch.secIdx++
		return
	}
	if ch.secAcc == e1_secondary || ch.secAcc == e1_secondary_inv {
		ch.secPol = 0
		if ch.secAcc == e1_secondary {
			ch.secPol = 1
		}
		ch.pilot = PILOT_LOCK_SEC
		ch.secChip = 0
		if e1_secondary[0]^ch.secPol == 1 { /* wipe off the current epoch */
			ch.ive, ch.qve, ch.ie, ch.qe, ch.ip, ch.qp = -ch.ive, -ch.qve, -ch.ie, -ch.qe, -ch.ip, -ch.qp
			ch.il, ch.ql, ch.ivl, ch.qvl = -ch.il, -ch.ql, -ch.ivl, -ch.qvl
		}
		Trace(3, "e1 secondary code lock: prn=%2d pol=%d ms=%d\n", ch.opt.Prn, ch.secPol, ch.ms)
		return
	}
	copy(ch.secAcc[:], ch.secAcc[1:])
	ch.secAcc[E1_SEC_LEN-1] = bit
}

/* half chip slip detection by very early/late power */
func (ch *E1Channel) bumpJump() {
	if ch.vel.n < VEL_LEN {
		return
	}
	if ch.vel.sumve > BUMP_RATIO*ch.vel.sump {
		ch.codePhase += 0.5
	} else if ch.vel.sumvl > BUMP_RATIO*ch.vel.sump {
		ch.codePhase -= 0.5
	} else {
		return
	}
	ch.vel.n = 0
	ch.bumps++
	Trace(3, "e1 bump-jump: prn=%2d ms=%d\n", ch.opt.Prn, ch.ms)
}

/* accessors -----------------------------------------------------------------*/
func (ch *E1Channel) Sys() int { return SYS_GAL }
func (ch *E1Channel) Prn() int { return ch.opt.Prn }

func (ch *E1Channel) CN0() float64 {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.cn0
}

/* pilot prompt correlator of the last epoch */
func (ch *E1Channel) Prompt() (ip, qp int) {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.lastIp, ch.lastQp
}

func (ch *E1Channel) PilotState() PilotState {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.pilot
}

func (ch *E1Channel) MsElapsed() int {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.ms
}

/* carrier doppler (Hz) */
func (ch *E1Channel) Doppler() float64 {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.carrErr
}

/* half early-late spacing (chip) */
func (ch *E1Channel) Spacing() float64 {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.spacing
}

func (ch *E1Channel) BumpJumps() int {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	return ch.bumps
}

/* snapshot for the solver ---------------------------------------------------*/
func (ch *E1Channel) Snapshot() NavSource {
	ch.lock.Lock()
	defer ch.lock.Unlock()

	eph := *ch.eph
	tx := eph.TimeOfWeek() + float64(ch.nav.count())/float64(E1_PAGE_SYMS) +
		(float64(ch.code.Index())+ch.codePhase)/CHIP_RATE
	return &NavSnapshot{
		Sys:   SYS_GAL,
		Prn:   ch.opt.Prn,
		Ready: ch.eph.Valid(),
		Tx:    tx,
		Eph:   &eph,
	}
}
