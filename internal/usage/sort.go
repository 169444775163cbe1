package usage

import (
	"sort"

	"github.com/winfind/winfind/internal/models"
)

func sortTop(rows []models.UsageRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].LastSelected.After(rows[j].LastSelected)
	})
}
