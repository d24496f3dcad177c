package store

import (
	"errors"
	"sort"
	"strings"
)

const rankAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func rankDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'z':
		return 10 + int(c-'a'), true
	default:
		return 0, false
	}
}

// RankBetween returns a lexicographic rank strictly between a and b.
// a may be empty (no lower bound) and b may be empty (no upper bound).
// Ranks are lowercase base36 strings compared bytewise.
func RankBetween(a, b string) (string, error) {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a != "" && b != "" && a >= b {
		return "", errors.New("RankBetween requires a < b")
	}

	prefix := make([]byte, 0, 8)
	for i := 0; i < 256; i++ {
		lo, hi := 0, len(rankAlphabet)-1
		if i < len(a) {
			d, ok := rankDigit(a[i])
			if !ok {
				return "", errors.New("invalid rank character in a")
			}
			lo = d
		}
		if i < len(b) {
			d, ok := rankDigit(b[i])
			if !ok {
				return "", errors.New("invalid rank character in b")
			}
			hi = d
		}
		if lo == hi {
			prefix = append(prefix, rankAlphabet[lo])
			continue
		}
		if hi-lo > 1 {
			r := string(append(prefix, rankAlphabet[lo+(hi-lo)/2]))
			if (a != "" && r <= a) || (b != "" && r >= b) {
				return "", errors.New("no space between ranks")
			}
			return r, nil
		}
		// Adjacent digits: any extension of a stays below b.
		r := a + "0"
		if b != "" && r >= b {
			return "", errors.New("no space between ranks")
		}
		return r, nil
	}
	return "", errors.New("unable to compute rank between")
}

func RankAfter(a string) (string, error) { return RankBetween(a, "") }
func RankInitial() (string, error)       { return RankBetween("", "") }

// SequentialRanks returns n strictly increasing fixed-width ranks, used when a
// whole sibling group is rewritten at once.
func SequentialRanks(n int) []string {
	width := 1
	for span := len(rankAlphabet); span <= n; span *= len(rankAlphabet) {
		width++
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		v := i + 1
		buf := make([]byte, width)
		for j := width - 1; j >= 0; j-- {
			buf[j] = rankAlphabet[v%len(rankAlphabet)]
			v /= len(rankAlphabet)
		}
		out[i] = string(buf)
	}
	return out
}

type taskRow struct {
	id        string
	parentID  string
	rank      string
	title     string
	completed bool
	createdMs int64
}

// sortRows orders siblings by rank, then creation time, then id.
func sortRows(rows []taskRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.createdMs != b.createdMs {
			return a.createdMs < b.createdMs
		}
		return a.id < b.id
	})
}
