// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"cmp"
	"fmt"
	"slices"
)

// SortRecords orders records the way the remote store lists them:
// transactions newest date first, everything else by id. Records without a
// date sort last.
func SortRecords(c Collection, records []Record) {
	field := c.OrderField()
	slices.SortStableFunc(records, func(a, b Record) int {
		if field != "" {
			av, bv := orderKey(a.Payload[field]), orderKey(b.Payload[field])
			switch {
			case av == "" && bv != "":
				return 1
			case av != "" && bv == "":
				return -1
			case av != bv:
				return cmp.Compare(bv, av)
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func orderKey(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
