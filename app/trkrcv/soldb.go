/*------------------------------------------------------------------------------
* soldb.go : solution log to sql database
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
* history : 2022/07/05 1.0  write observation data to clickhouse
*           2024/03/09 1.1  solution log of the software receiver to sqlite3
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"gnsssdr"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const solSchema = `CREATE TABLE IF NOT EXISTS solution (
	run      TEXT NOT NULL,
	time     DATETIME NOT NULL,
	ms       INTEGER NOT NULL,
	lat      REAL NOT NULL,
	lon      REAL NOT NULL,
	alt      REAL NOT NULL,
	x        REAL NOT NULL,
	y        REAL NOT NULL,
	z        REAL NOT NULL,
	tbias    REAL NOT NULL,
	ns       INTEGER NOT NULL,
	gdop     REAL NOT NULL,
	pdop     REAL NOT NULL
)`

const solInsert = `INSERT INTO solution (run, time, ms, lat, lon, alt, x, y, z, tbias, ns, gdop, pdop)
	VALUES (:run, :time, :ms, :lat, :lon, :alt, :x, :y, :z, :tbias, :ns, :gdop, :pdop)`

type solRecord struct { /* row of solution table */
	Run   string    `db:"run"`
	Time  time.Time `db:"time"`
	Ms    int       `db:"ms"`
	Lat   float64   `db:"lat"`
	Lon   float64   `db:"lon"`
	Alt   float64   `db:"alt"`
	X     float64   `db:"x"`
	Y     float64   `db:"y"`
	Z     float64   `db:"z"`
	TBias float64   `db:"tbias"`
	Ns    int       `db:"ns"`
	Gdop  float64   `db:"gdop"`
	Pdop  float64   `db:"pdop"`
}

type solDb struct {
	db    *sqlx.DB
	runId string
}

/* open solution log -----------------------------------------------------------
* args   : string file      I   sqlite3 database file
*          string runId     I   run id
* return : solution log, error
*-----------------------------------------------------------------------------*/
func openSolDb(file, runId string) (*solDb, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, fmt.Errorf("open solution db %s: %w", file, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(solSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create solution table: %w", err)
	}
	return &solDb{db: db, runId: runId}, nil
}

func (s *solDb) write(sol *gnsssdr.Solution, ms int, t time.Time) error {
	rec := solRecord{
		Run: s.runId, Time: t.UTC(), Ms: ms,
		Lat: sol.Lat, Lon: sol.Lon, Alt: sol.Alt,
		X: sol.Rr[0], Y: sol.Rr[1], Z: sol.Rr[2],
		TBias: sol.TBias, Ns: sol.Ns, Gdop: sol.Gdop, Pdop: sol.Pdop,
	}
	if _, err := s.db.NamedExec(solInsert, &rec); err != nil {
		return fmt.Errorf("insert solution: %w", err)
	}
	return nil
}

/* solutions of the run in time order */
func (s *solDb) solutions() ([]solRecord, error) {
	var recs []solRecord
	if err := s.db.Select(&recs, "SELECT * FROM solution WHERE run = ? ORDER BY ms", s.runId); err != nil {
		return nil, fmt.Errorf("select solutions: %w", err)
	}
	return recs, nil
}

func (s *solDb) close() error {
	return s.db.Close()
}
