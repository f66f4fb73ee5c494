package store

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed cast.yaml
var castYAML []byte

// Contestant is one member of the season's cast.
type Contestant struct {
	ID           int64  `json:"id" yaml:"-"`
	Position     int    `json:"position" yaml:"-"`
	Name         string `json:"name" yaml:"name"`
	Age          int    `json:"age" yaml:"age"`
	Gender       string `json:"gender" yaml:"gender"`
	Hometown     string `json:"hometown" yaml:"hometown"`
	Country      string `json:"country" yaml:"country"`
	Status       string `json:"status" yaml:"status"`
	TapOutReason string `json:"tap_out_reason" yaml:"reason"`
	Ref          string `json:"ref" yaml:"ref"`
	Image        string `json:"image" yaml:"image"`
}

// LoadCast parses the embedded roster.
func LoadCast() ([]Contestant, error) {
	var cast []Contestant
	if err := yaml.Unmarshal(castYAML, &cast); err != nil {
		return nil, fmt.Errorf("parse cast: %w", err)
	}
	for i := range cast {
		cast[i].Position = i
	}
	return cast, nil
}

// seedContestants fills an empty contestants table from the embedded roster.
func (db *DB) seedContestants() error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM contestants`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	cast, err := LoadCast()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	q := db.Q(`INSERT INTO contestants (position, name, age, gender, hometown, country, status, tap_out_reason, ref, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, c := range cast {
		if _, err := tx.Exec(q, c.Position, c.Name, c.Age, c.Gender, c.Hometown, c.Country,
			c.Status, c.TapOutReason, c.Ref, c.Image); err != nil {
			return fmt.Errorf("seed %s: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

// ListContestants returns the cast in seeded order.
func (db *DB) ListContestants() ([]Contestant, error) {
	rows, err := db.Query(`SELECT id, position, name, age, gender, hometown, country, status, tap_out_reason, ref, image
		FROM contestants ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cast []Contestant
	for rows.Next() {
		var c Contestant
		if err := rows.Scan(&c.ID, &c.Position, &c.Name, &c.Age, &c.Gender, &c.Hometown, &c.Country,
			&c.Status, &c.TapOutReason, &c.Ref, &c.Image); err != nil {
			return nil, err
		}
		cast = append(cast, c)
	}
	return cast, rows.Err()
}
