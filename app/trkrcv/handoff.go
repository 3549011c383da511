/*------------------------------------------------------------------------------
* handoff.go : acquisition handoff of the receiver
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* history : 2024/03/02 1.0  new
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"gnsssdr"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type HandoffEntry struct { /* acquired signal */
	System    string  `yaml:"system"`     /* gps or gal */
	Prn       int     `yaml:"prn"`        /* satellite prn */
	Doppler   float64 `yaml:"doppler"`    /* doppler (Hz) */
	CodePhase float64 `yaml:"code_phase"` /* code phase (chip) */
}

type Handoff struct {
	Channels []HandoffEntry `yaml:"channels"`
}

/* tracking channel driven by the receiver loop */
type trkChannel interface {
	gnsssdr.Channel
	Track(samples []uint8)
	CN0() float64
}

func loadHandoff(path string) (*Handoff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read handoff: %w", err)
	}
	return parseHandoff(data)
}

func parseHandoff(data []byte) (*Handoff, error) {
	var h Handoff
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse handoff: %w", err)
	}
	if len(h.Channels) == 0 {
		return nil, fmt.Errorf("parse handoff: no channels")
	}
	for i := range h.Channels {
		e := &h.Channels[i]
		e.System = strings.ToLower(e.System)
		codeLen := 0
		switch e.System {
		case "gps":
			if e.Prn < 1 || e.Prn > gnsssdr.MAXPRN_GPS {
				return nil, fmt.Errorf("parse handoff: channel %d: invalid gps prn %d", i, e.Prn)
			}
			codeLen = gnsssdr.L1CA_CODE_LEN
		case "gal":
			if e.Prn < 1 || e.Prn > gnsssdr.MAXPRN_GAL {
				return nil, fmt.Errorf("parse handoff: channel %d: invalid gal prn %d", i, e.Prn)
			}
			codeLen = gnsssdr.E1_CODE_LEN
		default:
			return nil, fmt.Errorf("parse handoff: channel %d: unknown system %q", i, e.System)
		}
		if math.IsNaN(e.CodePhase) || e.CodePhase < 0.0 || e.CodePhase >= float64(codeLen) {
			return nil, fmt.Errorf("parse handoff: channel %d: code phase %g out of [0,%d)", i, e.CodePhase, codeLen)
		}
		if math.IsNaN(e.Doppler) || math.IsInf(e.Doppler, 0) {
			return nil, fmt.Errorf("parse handoff: channel %d: invalid doppler %g", i, e.Doppler)
		}
	}
	return &h, nil
}

/* create tracking channels of the handoff, tbl is needed only for gal */
func newChannels(h *Handoff, opt *gnsssdr.TrkOpt, tbl *gnsssdr.E1CodeTable) ([]trkChannel, error) {
	var chs []trkChannel

	for _, e := range h.Channels {
		switch e.System {
		case "gps":
			ch, err := gnsssdr.NewL1CAChannel(opt.L1CAChannelOpt(e.Prn, e.Doppler, e.CodePhase))
			if err != nil {
				return nil, err
			}
			chs = append(chs, ch)
		case "gal":
			ch, err := gnsssdr.NewE1Channel(opt.E1ChannelOpt(e.Prn, e.Doppler, e.CodePhase), tbl)
			if err != nil {
				return nil, err
			}
			chs = append(chs, ch)
		}
	}
	return chs, nil
}

func sysName(sys int) string {
	if sys == gnsssdr.SYS_GAL {
		return "gal"
	}
	return "gps"
}
