package ingest

import (
	"slices"
	"strings"

	"github.com/etnz/reconcile"
)

// DefaultThreshold is the similarity from which two grouping keys are taken
// for the same counterparty.
const DefaultThreshold = 0.75

// Partition builds the initial grouping of records by counterparty.
//
// The counterparty of a record is its Counterparty field or, if empty, the
// name extracted from its description. Records with no counterparty go to
// the unassigned pool. Names are grouped by reconcile.GroupingKey; a key
// seen for the first time joins the first known key whose Similarity
// reaches threshold. The group is named after the first name seen, and
// every name seen becomes a variant.
//
// Groups are ordered by decreasing absolute balance.
func Partition(records []reconcile.Record, threshold float64) reconcile.Partition {
	type bucket struct {
		name     string
		variants []string
		records  []reconcile.Record
	}
	var (
		p       reconcile.Partition
		buckets []*bucket
		keys    []string // in discovery order
		byKey   = make(map[string]*bucket)
	)
	for _, rec := range records {
		name := counterpartyOf(rec)
		if name == NoCounterparty {
			p.Unassigned = append(p.Unassigned, rec)
			continue
		}
		if rec.Counterparty == "" {
			rec.Counterparty = name
		}
		key := reconcile.GroupingKey(name)
		b, ok := byKey[key]
		if !ok {
			for _, k := range keys {
				if reconcile.Similarity(key, k) >= threshold {
					b = byKey[k]
					break
				}
			}
			if b == nil {
				b = &bucket{name: name}
				buckets = append(buckets, b)
			}
			byKey[key] = b
			keys = append(keys, key)
		}
		b.records = append(b.records, rec)
		if !slices.Contains(b.variants, name) {
			b.variants = append(b.variants, name)
		}
	}

	slices.SortStableFunc(buckets, func(a, b *bucket) int {
		return reconcile.Aggregate(b.records).Balance.Abs().Cmp(reconcile.Aggregate(a.records).Balance.Abs())
	})
	for _, b := range buckets {
		p.Groups = append(p.Groups, reconcile.PartitionGroup{
			Name:     b.name,
			Variants: b.variants,
			Records:  b.records,
		})
	}
	return p
}

func counterpartyOf(rec reconcile.Record) string {
	if strings.TrimSpace(rec.Counterparty) != "" {
		return cleanName(rec.Counterparty)
	}
	return ExtractCounterparty(rec.Description)
}
