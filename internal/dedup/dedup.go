// Package dedup computes transaction fingerprints and separates new
// transactions from ones the store already holds.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/parsererror"
)

// FingerprintFunc derives the fingerprint of a parsed transaction.
type FingerprintFunc func(models.RawTransaction) models.Fingerprint

// Fingerprint hashes account number, date, description and amount. The
// balance is left out so reprints on overlapping statements still match.
func Fingerprint(tx models.RawTransaction) models.Fingerprint {
	data := strings.Join([]string{
		tx.AccountNumber,
		dateutils.ToISODate(tx.Date),
		strings.Join(strings.Fields(tx.Description), " "),
		tx.Amount.StringFixed(2),
	}, "|")
	sum := sha256.Sum256([]byte(data))
	return models.Fingerprint(hex.EncodeToString(sum[:]))
}

// Candidate is a parsed transaction with its fingerprint.
type Candidate struct {
	Raw         models.RawTransaction
	Fingerprint models.Fingerprint
}

// Result is the outcome of Partition.
type Result struct {
	New        []Candidate
	Known      []Candidate
	Collisions []parsererror.FingerprintCollision
}

// Deduplicator partitions parsed transactions. It never writes anything.
type Deduplicator struct {
	fingerprint FingerprintFunc
}

// New creates a Deduplicator. A nil fn uses Fingerprint.
func New(fn FingerprintFunc) *Deduplicator {
	if fn == nil {
		fn = Fingerprint
	}
	return &Deduplicator{fingerprint: fn}
}

// Fingerprint applies the configured fingerprint function.
func (d *Deduplicator) Fingerprint(tx models.RawTransaction) models.Fingerprint {
	return d.fingerprint(tx)
}

// Partition splits txs into new and already-known transactions, preserving
// order. A fingerprint is accepted into New at most once. A repeat inside the
// batch with a different running balance is reported as a collision.
func (d *Deduplicator) Partition(txs []models.RawTransaction, known map[models.Fingerprint]struct{}) Result {
	var res Result
	accepted := make(map[models.Fingerprint]models.RawTransaction, len(txs))

	for _, tx := range txs {
		c := Candidate{Raw: tx, Fingerprint: d.fingerprint(tx)}

		if _, ok := known[c.Fingerprint]; ok {
			res.Known = append(res.Known, c)
			continue
		}
		if first, ok := accepted[c.Fingerprint]; ok {
			if distinct(first, tx) {
				res.Collisions = append(res.Collisions, parsererror.FingerprintCollision{
					Fingerprint: string(c.Fingerprint),
					First:       describe(first),
					Second:      describe(tx),
				})
			}
			res.Known = append(res.Known, c)
			continue
		}

		accepted[c.Fingerprint] = tx
		res.New = append(res.New, c)
	}
	return res
}

// distinct reports whether two transactions sharing a fingerprint are
// evidently different records.
func distinct(a, b models.RawTransaction) bool {
	if a.AccountNumber != b.AccountNumber || !a.Date.Equal(b.Date) || !a.Amount.Equal(b.Amount) {
		return true
	}
	if strings.Join(strings.Fields(a.Description), " ") != strings.Join(strings.Fields(b.Description), " ") {
		return true
	}
	return a.Balance != nil && b.Balance != nil && !a.Balance.Equal(*b.Balance)
}

func describe(tx models.RawTransaction) string {
	s := dateutils.ToISODate(tx.Date) + " " + tx.Description + " " + tx.Amount.StringFixed(2)
	if tx.Balance != nil {
		s += " (balance " + tx.Balance.StringFixed(2) + ")"
	}
	return s
}
