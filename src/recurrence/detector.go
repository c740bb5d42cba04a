package recurrence

import (
	"math"
	"sort"

	"github.com/agext/levenshtein"

	"tresorier-server/src/models"
)

type Frequency string

const (
	Weekly     Frequency = "weekly"
	Biweekly   Frequency = "biweekly"
	Monthly    Frequency = "monthly"
	Bimonthly  Frequency = "bimonthly"
	Quarterly  Frequency = "quarterly"
	Semiannual Frequency = "semiannual"
	Annual     Frequency = "annual"
	Unknown    Frequency = "unknown"
)

type Options struct {
	// SimilarityThreshold is the minimum label similarity for a
	// transaction to join an existing group.
	SimilarityThreshold float64
	// AmountTolerance is the relative band around the group's mean
	// absolute amount every member must stay within.
	AmountTolerance float64
}

func DefaultOptions() Options {
	return Options{SimilarityThreshold: 0.8, AmountTolerance: 0.3}
}

// Group is a detected recurring payment: similar labels, steady amounts,
// regular spacing.
type Group struct {
	Key           string               `json:"-"`
	Label         string               `json:"label"`
	Day           int                  `json:"day"`
	CategoryID    *int                 `json:"category_id"`
	AverageAmount float64              `json:"average_amount"`
	LastDate      models.Date          `json:"last_date"`
	Frequency     Frequency            `json:"frequency"`
	Transactions  []models.Transaction `json:"transactions"`
}

type cluster struct {
	key     string
	members []models.Transaction
}

// Detect groups transactions into recurring payments. Each transaction
// joins the first existing cluster whose key is similar enough to its
// normalized label, otherwise it opens a new one. Clusters with fewer
// than two members, or with any amount outside the tolerance band around
// the cluster mean, are discarded. Groups come back ordered by day of
// month.
func Detect(txns []models.Transaction, opts Options) []Group {
	var clusters []*cluster
	for _, tx := range txns {
		key := NormalizeKey(tx.Label)
		if key == "" {
			continue
		}
		placed := false
		for _, c := range clusters {
			if levenshtein.Match(key, c.key, nil) >= opts.SimilarityThreshold {
				c.members = append(c.members, tx)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, &cluster{key: key, members: []models.Transaction{tx}})
		}
	}

	var groups []Group
	for _, c := range clusters {
		g, ok := buildGroup(c, opts)
		if ok {
			groups = append(groups, g)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Day < groups[j].Day })
	return groups
}

func buildGroup(c *cluster, opts Options) (Group, bool) {
	if len(c.members) < 2 {
		return Group{}, false
	}

	sort.SliceStable(c.members, func(i, j int) bool {
		if !c.members[i].Date.Equal(c.members[j].Date.Time) {
			return c.members[i].Date.Before(c.members[j].Date.Time)
		}
		return c.members[i].ID < c.members[j].ID
	})

	var sum, absSum float64
	for _, tx := range c.members {
		sum += tx.Amount
		absSum += math.Abs(tx.Amount)
	}
	mean := sum / float64(len(c.members))
	absMean := absSum / float64(len(c.members))

	low := absMean * (1 - opts.AmountTolerance)
	high := absMean * (1 + opts.AmountTolerance)
	for _, tx := range c.members {
		abs := math.Abs(tx.Amount)
		if abs < low || abs > high {
			return Group{}, false
		}
	}

	first := c.members[0]
	last := c.members[len(c.members)-1]
	g := Group{
		Key:           c.key,
		Label:         first.Label,
		Day:           first.Date.Day(),
		CategoryID:    first.CategoryID,
		AverageAmount: mean,
		LastDate:      last.Date,
		Frequency:     classify(c.members),
		Transactions:  c.members,
	}
	return g, true
}

// classify buckets the mean gap between consecutive occurrences into a
// named frequency.
func classify(members []models.Transaction) Frequency {
	var total float64
	for i := 1; i < len(members); i++ {
		total += members[i].Date.Sub(members[i-1].Date.Time).Hours() / 24
	}
	gap := total / float64(len(members)-1)

	switch {
	case gap < 10:
		return Weekly
	case gap < 20:
		return Biweekly
	case gap < 40:
		return Monthly
	case gap < 70:
		return Bimonthly
	case gap < 100:
		return Quarterly
	case gap < 200:
		return Semiannual
	case gap < 400:
		return Annual
	default:
		return Unknown
	}
}
